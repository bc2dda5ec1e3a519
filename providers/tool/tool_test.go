package tool

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/leofalp/stategraph/providers/ai"
)

type addInput struct {
	A float64 `json:"a" jsonschema:"description=First number"`
	B float64 `json:"b" jsonschema:"description=Second number"`
}

type sumOutput struct {
	Sum float64 `json:"sum"`
}

func newAdder(t *testing.T) *Typed[addInput, sumOutput] {
	t.Helper()
	adder, err := NewTool("addition_tool", func(_ context.Context, input addInput) (sumOutput, error) {
		return sumOutput{Sum: input.A + input.B}, nil
	}, WithDescription("when given 2 numbers add them"))
	if err != nil {
		t.Fatalf("NewTool() error = %v", err)
	}
	return adder
}

func newFailing(t *testing.T, name string) *Typed[struct{}, string] {
	t.Helper()
	failing, err := NewTool(name, func(_ context.Context, _ struct{}) (string, error) {
		return "", errors.New("upstream unavailable")
	})
	if err != nil {
		t.Fatalf("NewTool() error = %v", err)
	}
	return failing
}

// fakeBinder records the tools bound to it.
type fakeBinder struct {
	bound []ai.ToolDescription
}

func (binder *fakeBinder) Invoke(_ context.Context, _ []ai.Message) (*ai.Response, error) {
	return &ai.Response{}, nil
}

func (binder *fakeBinder) BindTools(tools ...ai.ToolDescription) ai.ChatModel {
	return &fakeBinder{bound: tools}
}

func TestNewTool_Info(t *testing.T) {
	info := newAdder(t).Info()
	if info.Name != "addition_tool" || info.Description != "when given 2 numbers add them" {
		t.Errorf("Info() = %+v", info)
	}
	if info.Parameters == nil || !slices.Equal(info.Parameters.Required, []string{"a", "b"}) {
		t.Errorf("Parameters = %+v", info.Parameters)
	}
}

func TestNewTool_InvalidConstruction(t *testing.T) {
	if _, err := NewTool("", func(_ context.Context, _ struct{}) (string, error) { return "", nil }); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := NewTool[struct{}, string]("nil", nil); err == nil {
		t.Error("expected error for nil function")
	}
}

func TestTyped_Invoke(t *testing.T) {
	adder := newAdder(t)

	result, err := adder.Invoke(context.Background(), map[string]any{"a": 2.0, "b": 4.0})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result != `{"sum":6}` {
		t.Errorf("Invoke() = %s", result)
	}

	if _, err := adder.Invoke(context.Background(), map[string]any{"a": 2.0}); err == nil || !strings.Contains(err.Error(), `missing required argument "b"`) {
		t.Errorf("Invoke() missing argument error = %v", err)
	}
}

func TestTyped_StringOutputIsVerbatim(t *testing.T) {
	echo := MustNewTool("echo", func(_ context.Context, input struct {
		Text string `json:"text"`
	}) (string, error) {
		return input.Text, nil
	})
	result, err := echo.Invoke(context.Background(), map[string]any{"text": "plain"})
	if err != nil || result != "plain" {
		t.Errorf("Invoke() = %q, %v", result, err)
	}
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry(newAdder(t), newFailing(t, "Addition_Tool")); err == nil {
		t.Error("expected duplicate name error")
	}
	if _, err := NewRegistry(nil); err == nil {
		t.Error("expected nil tool error")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	registry, err := NewRegistry(newAdder(t), newFailing(t, "flaky"))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if _, ok := registry.Get("addition_tool"); !ok {
		t.Error("exact lookup failed")
	}
	if _, ok := registry.Get("ADDITION_TOOL"); !ok {
		t.Error("case-insensitive lookup failed")
	}
	if !slices.Equal(registry.Names(), []string{"addition_tool", "flaky"}) {
		t.Errorf("Names() = %v", registry.Names())
	}
	if descriptions := registry.Descriptions(); len(descriptions) != 2 || descriptions[1].Name != "flaky" {
		t.Errorf("Descriptions() = %+v", descriptions)
	}
}

func TestRegistry_Invoke(t *testing.T) {
	registry, err := NewRegistry(newAdder(t), newFailing(t, "flaky"))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	ctx := context.Background()

	result, err := registry.Invoke(ctx, ai.ToolCall{ID: "1", Name: "addition_tool", Arguments: map[string]any{"a": 1.0, "b": 2.0}})
	if err != nil || result != `{"sum":3}` {
		t.Errorf("Invoke() = %q, %v", result, err)
	}

	_, err = registry.Invoke(ctx, ai.ToolCall{ID: "2", Name: "subtraction"})
	var notFound *ToolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ToolNotFoundError", err)
	}
	if notFound.Name != "subtraction" || !strings.Contains(err.Error(), "addition_tool, flaky") {
		t.Errorf("not found error = %v", err)
	}

	_, err = registry.Invoke(ctx, ai.ToolCall{ID: "3", Name: "flaky"})
	var execution *ToolExecutionError
	if !errors.As(err, &execution) {
		t.Fatalf("error = %v, want *ToolExecutionError", err)
	}
	if execution.CallID != "3" || execution.Unwrap().Error() != "upstream unavailable" {
		t.Errorf("execution error = %+v", execution)
	}
}

func TestToolNotFoundError_EmptyRegistry(t *testing.T) {
	err := &ToolNotFoundError{Name: "anything"}
	if !strings.Contains(err.Error(), "no tools are registered") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBind(t *testing.T) {
	registry, err := NewRegistry(newAdder(t))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	binder := &fakeBinder{}

	bound, ok := Bind(binder, registry).(*fakeBinder)
	if !ok {
		t.Fatal("Bind() should return the bound model")
	}
	if len(bound.bound) != 1 || bound.bound[0].Name != "addition_tool" {
		t.Errorf("bound tools = %+v", bound.bound)
	}
	if len(binder.bound) != 0 {
		t.Error("BindTools must not mutate the original model")
	}

	empty, _ := NewRegistry()
	if Bind(binder, empty) != binder {
		t.Error("binding an empty registry should return the model unchanged")
	}
}
