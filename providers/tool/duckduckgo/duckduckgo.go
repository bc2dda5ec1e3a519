package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leofalp/stategraph/providers/tool"
)

const (
	// DefaultBaseURL is the Instant Answer endpoint.
	DefaultBaseURL = "https://api.duckduckgo.com/"
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "stategraph-duckduckgo/1.0"

	maxRelatedTopics = 5
	noResults        = "No results found for this query."
)

// Input is the model-supplied argument set.
type Input struct {
	Query string `json:"query" jsonschema:"description=The search query to look up on DuckDuckGo,required"`
}

// Topic is one related topic.
type Topic struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Output is the condensed answer returned to the model.
type Output struct {
	Query       string  `json:"query"`
	Heading     string  `json:"heading,omitempty"`
	Summary     string  `json:"summary"`
	AbstractURL string  `json:"abstract_url,omitempty"`
	Related     []Topic `json:"related,omitempty"`
}

// apiResponse is the subset of the Instant Answer payload the tool reads.
type apiResponse struct {
	Heading       string          `json:"Heading"`
	AbstractText  string          `json:"AbstractText"`
	AbstractURL   string          `json:"AbstractURL"`
	Answer        json.RawMessage `json:"Answer"`
	Definition    string          `json:"Definition"`
	RelatedTopics []relatedTopic  `json:"RelatedTopics"`
}

// relatedTopic is either a topic or, when Name is set, a named group of them.
type relatedTopic struct {
	Text     string         `json:"Text"`
	FirstURL string         `json:"FirstURL"`
	Name     string         `json:"Name"`
	Topics   []relatedTopic `json:"Topics"`
}

// Searcher queries the Instant Answer API.
type Searcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(searcher *Searcher) {
		searcher.client = client
	}
}

// WithBaseURL points the Searcher at another endpoint, typically a test server.
func WithBaseURL(baseURL string) Option {
	return func(searcher *Searcher) {
		searcher.baseURL = baseURL
	}
}

// NewSearcher creates a Searcher.
func NewSearcher(opts ...Option) *Searcher {
	searcher := &Searcher{
		client:    http.DefaultClient,
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(searcher)
	}
	return searcher
}

// NewSearchTool returns the "web_search" tool.
func NewSearchTool(opts ...Option) *tool.Typed[Input, Output] {
	return tool.MustNewTool("web_search", NewSearcher(opts...).Search,
		tool.WithDescription("Searches the web with DuckDuckGo. Returns instant answers, abstracts, definitions and related topics for a query."))
}

// Search runs one query. An empty query and any non-200 status are errors;
// a query without results is not.
func (searcher *Searcher) Search(ctx context.Context, input Input) (Output, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return Output{}, fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("no_html", "1")
	params.Add("skip_disambig", "1")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, searcher.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Output{}, fmt.Errorf("error creating request: %w", err)
	}
	request.Header.Set("User-Agent", searcher.userAgent)

	response, err := searcher.client.Do(request)
	if err != nil {
		return Output{}, fmt.Errorf("error making request: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %d", response.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return Output{}, fmt.Errorf("error parsing response: %w", err)
	}

	return summarize(query, payload), nil
}

func summarize(query string, payload apiResponse) Output {
	output := Output{
		Query:       query,
		Heading:     payload.Heading,
		AbstractURL: payload.AbstractURL,
	}

	var sections []string
	if payload.AbstractText != "" {
		sections = append(sections, "Abstract: "+payload.AbstractText)
	}
	if answer := answerText(payload.Answer); answer != "" {
		sections = append(sections, "Answer: "+answer)
	}
	if payload.Definition != "" {
		sections = append(sections, "Definition: "+payload.Definition)
	}

	output.Related = flattenTopics(payload.RelatedTopics, maxRelatedTopics)

	output.Summary = strings.Join(sections, "\n\n")
	if output.Summary == "" && len(output.Related) == 0 {
		output.Summary = noResults
	}
	return output
}

// answerText reads Answer, which the API sends either as a string or as an
// object for interactive answers. Objects are ignored.
func answerText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ""
	}
	return text
}

func flattenTopics(topics []relatedTopic, limit int) []Topic {
	var flat []Topic
	var walk func([]relatedTopic)
	walk = func(topics []relatedTopic) {
		for _, topic := range topics {
			if len(flat) >= limit {
				return
			}
			if topic.Name != "" || len(topic.Topics) > 0 {
				walk(topic.Topics)
				continue
			}
			if topic.Text != "" {
				flat = append(flat, Topic{Text: topic.Text, URL: topic.FirstURL})
			}
		}
	}
	walk(topics)
	return flat
}
