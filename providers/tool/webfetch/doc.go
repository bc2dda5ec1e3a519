// Package webfetch provides a tool that downloads a web page and returns its
// content converted from HTML to Markdown, so an agent can read pages without
// spending context on markup.
package webfetch
