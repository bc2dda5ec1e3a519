package webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/stategraph/providers/tool"
)

const (
	// DefaultTimeout bounds a single fetch when the caller does not set one.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "stategraph-webfetch/1.0"
	// MaxBodySize caps the downloaded body.
	MaxBodySize = 10 * 1024 * 1024
	// DefaultMaxChars caps the Markdown returned to the model.
	DefaultMaxChars = 20000
)

// Input is the model-supplied argument set.
type Input struct {
	URL            string `json:"url" jsonschema:"description=Page URL; a missing scheme defaults to https"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" jsonschema:"description=Request timeout in seconds"`
	MaxChars       int    `json:"max_chars,omitempty" jsonschema:"description=Maximum number of Markdown characters to return"`
}

// Output is the fetched page.
type Output struct {
	URL       string `json:"url"`
	Markdown  string `json:"markdown"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Fetcher downloads pages with a configurable HTTP client.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(fetcher *Fetcher) {
		fetcher.client = client
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(userAgent string) Option {
	return func(fetcher *Fetcher) {
		fetcher.userAgent = userAgent
	}
}

// NewFetcher creates a Fetcher that follows at most ten redirects.
func NewFetcher(opts ...Option) *Fetcher {
	fetcher := &Fetcher{
		client: &http.Client{
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (>10)")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher
}

// NewWebFetchTool returns the "webfetch" tool.
func NewWebFetchTool(opts ...Option) *tool.Typed[Input, Output] {
	return tool.MustNewTool("webfetch", NewFetcher(opts...).Fetch,
		tool.WithDescription("Fetches a web page and returns its content as Markdown together with the final URL after redirects"))
}

// Fetch downloads input.URL and converts the body to Markdown. Non-200
// statuses, oversized bodies and conversion failures are errors.
func (fetcher *Fetcher) Fetch(ctx context.Context, input Input) (Output, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return Output{}, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	timeout := DefaultTimeout
	if input.TimeoutSeconds > 0 {
		timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", fetcher.userAgent)
	request.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	response, err := fetcher.client.Do(request)
	if err != nil {
		return Output{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %s", response.Status)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, MaxBodySize+1))
	if err != nil {
		return Output{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Output{}, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return Output{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	maxChars := input.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	output := Output{URL: response.Request.URL.String(), Markdown: markdown}
	if runes := []rune(markdown); len(runes) > maxChars {
		output.Markdown = string(runes[:maxChars])
		output.Truncated = true
	}
	return output, nil
}
