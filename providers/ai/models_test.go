package ai

import (
	"context"
	"strings"
	"testing"
)

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		role    Role
	}{
		{"human", HumanMessage("hi"), RoleHuman},
		{"system", SystemMessage("be brief"), RoleSystem},
		{"ai", AIMessage("hello"), RoleAI},
		{"tool", ToolMessage("call-1", "Addition Tool", "6"), RoleTool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.message.Role != tt.role {
				t.Errorf("Role = %q, want %q", tt.message.Role, tt.role)
			}
		})
	}

	toolMessage := ToolMessage("call-1", "Addition Tool", "6")
	if toolMessage.ToolCallID != "call-1" || toolMessage.Name != "Addition Tool" {
		t.Errorf("tool message = %+v", toolMessage)
	}
}

func TestResponseMessage(t *testing.T) {
	response := &Response{
		Content:   "",
		ToolCalls: []ToolCall{{ID: "1", Name: "Addition Tool", Arguments: map[string]any{"a": 2.0}}},
	}
	message := response.Message()
	if message.Role != RoleAI || !message.HasToolCalls() {
		t.Errorf("message = %+v", message)
	}
	if AIMessage("done").HasToolCalls() {
		t.Error("plain ai message should not report tool calls")
	}
}

func TestLastMessage(t *testing.T) {
	if _, ok := LastMessage(nil); ok {
		t.Error("LastMessage(nil) should report false")
	}
	last, ok := LastMessage([]Message{HumanMessage("a"), AIMessage("b")})
	if !ok || last.Content != "b" {
		t.Errorf("LastMessage() = %+v, %v", last, ok)
	}
}

func TestToolResultToJSON(t *testing.T) {
	encoded, err := NewToolResultError(ToolErrorNotFound, `tool "Subtraction" not found`).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(encoded, `"success":false`) || !strings.Contains(encoded, `"error":"tool_not_found"`) {
		t.Errorf("ToJSON() = %s", encoded)
	}
}

func TestChatModelFunc(t *testing.T) {
	var model ChatModel = ChatModelFunc(func(_ context.Context, messages []Message) (*Response, error) {
		return &Response{Content: "echo: " + messages[0].Content}, nil
	})
	response, err := model.Invoke(context.Background(), []Message{HumanMessage("ping")})
	if err != nil || response.Content != "echo: ping" {
		t.Errorf("Invoke() = %+v, %v", response, err)
	}
}
