package langchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/leofalp/stategraph/core/parse"
	"github.com/leofalp/stategraph/providers/ai"
	"github.com/leofalp/stategraph/providers/observability"
)

const providerName = "langchaingo"

// Model wraps an llms.Model. Call options given to New are applied to every
// request; bound tools are added with llms.WithTools.
type Model struct {
	llm       llms.Model
	name      string
	callOpts  []llms.CallOption
	toolDefs  []llms.Tool
	toolCount int
}

var _ ai.ToolCallingModel = (*Model)(nil)

// New adapts llm.
func New(llm llms.Model, opts ...llms.CallOption) *Model {
	return &Model{llm: llm, callOpts: slices.Clone(opts)}
}

// NewGoogleAI creates a Gemini-backed model through langchaingo's googleai
// client.
func NewGoogleAI(ctx context.Context, apiKey, modelName string, opts ...llms.CallOption) (*Model, error) {
	if apiKey == "" {
		return nil, errors.New("langchain: googleai requires an API key")
	}

	clientOpts := []googleai.Option{googleai.WithAPIKey(apiKey)}
	if modelName != "" {
		clientOpts = append(clientOpts, googleai.WithDefaultModel(modelName))
	}

	client, err := googleai.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("langchain: create googleai client: %w", err)
	}

	model := New(client, opts...)
	model.name = modelName
	return model, nil
}

// BindTools returns a copy of the model that advertises tools.
func (model *Model) BindTools(tools ...ai.ToolDescription) ai.ChatModel {
	bound := *model
	bound.callOpts = slices.Clone(model.callOpts)
	bound.toolDefs = toLangchainTools(tools)
	bound.toolCount = len(tools)
	return &bound
}

// Invoke converts messages, calls GenerateContent and returns the first choice.
func (model *Model) Invoke(ctx context.Context, messages []ai.Message) (*ai.Response, error) {
	content, err := toMessageContent(messages)
	if err != nil {
		return nil, fmt.Errorf("langchain: %w", err)
	}

	callOpts := slices.Clone(model.callOpts)
	if len(model.toolDefs) > 0 {
		callOpts = append(callOpts, llms.WithTools(model.toolDefs))
	}

	var span observability.Span
	observer := observability.ObserverFromContext(ctx)
	if observer != nil {
		ctx, span = observer.StartSpan(ctx, observability.SpanLLMRequest,
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMModel, model.name),
		)
		defer span.End()
		observer.Counter(observability.MetricLLMRequestCount).Add(ctx, 1,
			observability.String(observability.AttrLLMProvider, providerName))
		observer.Trace(ctx, "langchaingo request",
			observability.Int(observability.AttrRequestMessagesCount, len(content)),
			observability.Int(observability.AttrRequestToolsCount, model.toolCount),
		)
	}

	response, err := model.llm.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
		}
		return nil, fmt.Errorf("langchain: generate content: %w", err)
	}

	result, err := fromContentResponse(response, model.name)
	if err != nil {
		return nil, fmt.Errorf("langchain: %w", err)
	}
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMFinishReason, result.FinishReason),
			observability.Int(observability.AttrLLMToolCalls, len(result.ToolCalls)),
		)
		span.SetStatus(observability.StatusOK, "")
	}
	return result, nil
}

func toLangchainTools(tools []ai.ToolDescription) []llms.Tool {
	if len(tools) == 0 {
		return nil
	}
	converted := make([]llms.Tool, 0, len(tools))
	for _, description := range tools {
		definition := &llms.FunctionDefinition{
			Name:        description.Name,
			Description: description.Description,
		}
		if description.Parameters != nil {
			definition.Parameters = description.Parameters
		}
		converted = append(converted, llms.Tool{Type: "function", Function: definition})
	}
	return converted
}

func toMessageContent(messages []ai.Message) ([]llms.MessageContent, error) {
	converted := make([]llms.MessageContent, 0, len(messages))
	for _, message := range messages {
		switch message.Role {
		case ai.RoleSystem:
			converted = append(converted, llms.TextParts(llms.ChatMessageTypeSystem, message.Content))

		case ai.RoleHuman:
			converted = append(converted, llms.TextParts(llms.ChatMessageTypeHuman, message.Content))

		case ai.RoleAI:
			content := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if message.Content != "" {
				content.Parts = append(content.Parts, llms.TextPart(message.Content))
			}
			for _, call := range message.ToolCalls {
				arguments, err := json.Marshal(call.Arguments)
				if err != nil {
					return nil, fmt.Errorf("encode arguments of %q: %w", call.Name, err)
				}
				content.Parts = append(content.Parts, llms.ToolCall{
					ID:   call.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      call.Name,
						Arguments: string(arguments),
					},
				})
			}
			converted = append(converted, content)

		case ai.RoleTool:
			converted = append(converted, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: message.ToolCallID,
					Name:       message.Name,
					Content:    message.Content,
				}},
			})

		default:
			return nil, fmt.Errorf("unsupported message role %q", message.Role)
		}
	}
	return converted, nil
}

func fromContentResponse(response *llms.ContentResponse, model string) (*ai.Response, error) {
	if response == nil || len(response.Choices) == 0 {
		return nil, errors.New("empty response")
	}

	choice := response.Choices[0]
	result := &ai.Response{
		ID:           uuid.NewString(),
		Model:        model,
		Content:      choice.Content,
		FinishReason: choice.StopReason,
		Usage:        usageFrom(choice.GenerationInfo),
	}

	for _, call := range choice.ToolCalls {
		if call.FunctionCall == nil {
			continue
		}
		arguments, err := parse.ParseArguments(call.FunctionCall.Arguments)
		if err != nil {
			return nil, fmt.Errorf("arguments of %q: %w", call.FunctionCall.Name, err)
		}
		id := call.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		result.ToolCalls = append(result.ToolCalls, ai.ToolCall{
			ID:        id,
			Name:      call.FunctionCall.Name,
			Arguments: arguments,
		})
	}

	if len(result.ToolCalls) > 0 && (result.FinishReason == "" || result.FinishReason == "stop") {
		result.FinishReason = "tool_calls"
	}
	if result.FinishReason == "" {
		result.FinishReason = "stop"
	}
	return result, nil
}

// usageFrom reads token counts from GenerationInfo. Backends disagree on the
// key names.
func usageFrom(info map[string]any) *ai.Usage {
	if len(info) == 0 {
		return nil
	}
	usage := &ai.Usage{
		PromptTokens:     intFrom(info, "PromptTokens", "input_tokens", "InputTokens"),
		CompletionTokens: intFrom(info, "CompletionTokens", "output_tokens", "OutputTokens"),
		TotalTokens:      intFrom(info, "TotalTokens", "total_tokens"),
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	if usage.TotalTokens == 0 {
		return nil
	}
	return usage
}

func intFrom(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch value := info[key].(type) {
		case int:
			return value
		case int32:
			return int(value)
		case int64:
			return int(value)
		case float64:
			return int(value)
		}
	}
	return 0
}
