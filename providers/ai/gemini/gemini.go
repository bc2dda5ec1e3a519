package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/leofalp/stategraph/internal/utils"
	"github.com/leofalp/stategraph/providers/ai"
	"github.com/leofalp/stategraph/providers/observability"
)

const (
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.0-flash-lite"
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("gemini: no API key (set GEMINI_API_KEY or GOOGLE_API_KEY)")

// Client calls the Gemini generateContent endpoint. It is immutable:
// BindTools returns a copy.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	temperature *float64
	maxTokens   *int
	tools       []ai.ToolDescription
}

var _ ai.ToolCallingModel = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key, overriding the environment.
func WithAPIKey(apiKey string) Option {
	return func(client *Client) { client.apiKey = apiKey }
}

// WithModel selects the model, e.g. "gemini-2.0-flash".
func WithModel(model string) Option {
	return func(client *Client) {
		if model != "" {
			client.model = model
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(client *Client) { client.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) { client.httpClient = httpClient }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(client *Client) { client.temperature = utils.Ptr(temperature) }
}

// WithMaxOutputTokens caps the reply length.
func WithMaxOutputTokens(tokens int) Option {
	return func(client *Client) {
		if tokens > 0 {
			client.maxTokens = utils.Ptr(tokens)
		}
	}
}

// New creates a client. Without WithAPIKey, the key is read from
// GEMINI_API_KEY, then GOOGLE_API_KEY. GEMINI_API_BASE_URL overrides the
// default endpoint.
func New(opts ...Option) (*Client, error) {
	client := &Client{
		apiKey:     firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		baseURL:    firstNonEmpty(os.Getenv("GEMINI_API_BASE_URL"), defaultBaseURL),
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return client, nil
}

// Model returns the configured model name.
func (client *Client) Model() string { return client.model }

// BindTools returns a copy of the client that declares tools on every request.
func (client *Client) BindTools(tools ...ai.ToolDescription) ai.ChatModel {
	bound := *client
	bound.tools = slices.Clone(tools)
	return &bound
}

// Invoke sends messages to generateContent and returns the first candidate.
func (client *Client) Invoke(ctx context.Context, messages []ai.Message) (*ai.Response, error) {
	attrs := []observability.Attribute{
		observability.String(observability.AttrLLMProvider, providerName),
		observability.String(observability.AttrLLMModel, client.model),
	}

	var span observability.Span
	observer := observability.ObserverFromContext(ctx)
	if observer != nil {
		ctx, span = observer.StartSpan(ctx, observability.SpanLLMRequest, attrs...)
		defer span.End()
		observer.Counter(observability.MetricLLMRequestCount).Add(ctx, 1, attrs...)
		observer.Trace(ctx, "Gemini provider preparing request",
			append(attrs,
				observability.String(observability.AttrLLMEndpoint, client.baseURL),
				observability.Int(observability.AttrRequestMessagesCount, len(messages)),
				observability.Int(observability.AttrRequestToolsCount, len(client.tools)),
			)...)
	}

	response, err := client.generate(ctx, messages)

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
		} else {
			span.SetAttributes(
				observability.String(observability.AttrLLMFinishReason, response.FinishReason),
				observability.Int(observability.AttrLLMToolCalls, len(response.ToolCalls)),
			)
			if response.Usage != nil {
				span.SetAttributes(
					observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
					observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
					observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
				)
			}
			span.SetStatus(observability.StatusOK, "")
		}
	}
	return response, err
}

func (client *Client) generate(ctx context.Context, messages []ai.Message) (*ai.Response, error) {
	var config *generationConfig
	if client.temperature != nil || client.maxTokens != nil {
		config = &generationConfig{Temperature: client.temperature, MaxOutputTokens: client.maxTokens}
	}

	request, err := requestToGemini(messages, client.tools, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}
	if len(request.Contents) == 0 {
		return nil, errors.New("gemini: conversation has no user or model turns")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", client.baseURL, client.model)
	response, err := utils.DoPostSync[generateContentResponse](ctx, client.httpClient, url,
		map[string]string{"x-goog-api-key": client.apiKey}, request)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	result, err := geminiToGeneric(*response, client.model)
	if err != nil {
		return nil, fmt.Errorf("gemini: decode function call arguments: %w", err)
	}
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
