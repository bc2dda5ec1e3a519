// Package duckduckgo provides the "web_search" tool, backed by the free
// DuckDuckGo Instant Answer API. No API key is needed. The API returns
// abstracts, instant answers, definitions and related topics, not a full
// list of web results; pair it with the webfetch tool to read a page.
package duckduckgo
