package gemini

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/stategraph/providers/ai"
)

// requestToGemini converts a conversation and the bound tools into a
// generateContent request. System messages are merged into the system
// instruction, in order.
func requestToGemini(messages []ai.Message, tools []ai.ToolDescription, config *generationConfig) (generateContentRequest, error) {
	request := generateContentRequest{GenerationConfig: config}

	var systemParts []part
	for _, message := range messages {
		switch message.Role {
		case ai.RoleSystem:
			systemParts = append(systemParts, part{Text: message.Content})

		case ai.RoleHuman:
			request.Contents = append(request.Contents, content{Role: "user", Parts: []part{{Text: message.Content}}})

		case ai.RoleAI:
			modelContent := content{Role: "model"}
			if message.Content != "" {
				modelContent.Parts = append(modelContent.Parts, part{Text: message.Content})
			}
			for _, call := range message.ToolCalls {
				args, err := json.Marshal(call.Arguments)
				if err != nil {
					return generateContentRequest{}, err
				}
				modelContent.Parts = append(modelContent.Parts, part{
					FunctionCall: &functionCall{ID: call.ID, Name: call.Name, Args: args},
				})
			}
			if len(modelContent.Parts) > 0 {
				request.Contents = append(request.Contents, modelContent)
			}

		case ai.RoleTool:
			// functionResponse.response must be a JSON object
			request.Contents = append(request.Contents, content{
				Role: "user",
				Parts: []part{{
					FunctionResponse: &functionResponse{
						ID:       message.ToolCallID,
						Name:     message.Name,
						Response: toolResponsePayload(message.Content),
					},
				}},
			})
		}
	}

	if len(systemParts) > 0 {
		request.SystemInstruction = &systemInstruction{Parts: systemParts}
	}

	if len(tools) > 0 {
		declarations := make([]functionDeclaration, 0, len(tools))
		for _, description := range tools {
			declaration := functionDeclaration{Name: description.Name, Description: description.Description}
			if description.Parameters != nil {
				parameters, err := json.Marshal(description.Parameters)
				if err != nil {
					return generateContentRequest{}, err
				}
				declaration.Parameters = parameters
			}
			declarations = append(declarations, declaration)
		}
		request.Tools = []tool{{FunctionDeclarations: declarations}}
	}

	return request, nil
}

// toolResponsePayload wraps tool output that is not a JSON object.
func toolResponsePayload(output string) json.RawMessage {
	trimmed := strings.TrimSpace(output)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	wrapped, _ := json.Marshal(map[string]string{"output": output})
	return wrapped
}

// geminiToGeneric converts the first candidate of a response. Thought parts
// are dropped and calls without an id receive a generated one.
func geminiToGeneric(response generateContentResponse, model string) (*ai.Response, error) {
	result := &ai.Response{ID: response.ResponseID, Model: response.ModelVersion}
	if result.Model == "" {
		result.Model = model
	}
	if result.ID == "" {
		result.ID = "gemini-" + uuid.NewString()
	}

	if response.UsageMetadata != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     response.UsageMetadata.PromptTokenCount,
			CompletionTokens: response.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      response.UsageMetadata.TotalTokenCount,
		}
	}

	if len(response.Candidates) == 0 {
		result.FinishReason = "error"
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			result.FinishReason = "content_filter"
		}
		return result, nil
	}

	candidate := response.Candidates[0]
	result.FinishReason = mapFinishReason(candidate.FinishReason)

	if candidate.Content != nil {
		var textParts []string
		for _, candidatePart := range candidate.Content.Parts {
			if candidatePart.Text != "" && !candidatePart.Thought {
				textParts = append(textParts, candidatePart.Text)
			}
			if candidatePart.FunctionCall == nil {
				continue
			}

			arguments := map[string]any{}
			if len(candidatePart.FunctionCall.Args) > 0 && string(candidatePart.FunctionCall.Args) != "null" {
				if err := json.Unmarshal(candidatePart.FunctionCall.Args, &arguments); err != nil {
					return nil, err
				}
			}
			id := candidatePart.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			result.ToolCalls = append(result.ToolCalls, ai.ToolCall{
				ID:        id,
				Name:      candidatePart.FunctionCall.Name,
				Arguments: arguments,
			})
		}
		result.Content = strings.Join(textParts, "\n")
	}

	if len(result.ToolCalls) > 0 && result.FinishReason == "stop" {
		result.FinishReason = "tool_calls"
	}
	return result, nil
}

func mapFinishReason(geminiReason string) string {
	switch geminiReason {
	case "MAX_TOKENS":
		return "length"
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT":
		return "content_filter"
	default:
		return "stop"
	}
}
