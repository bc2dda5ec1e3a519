package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leofalp/stategraph/core/parse"
	"github.com/leofalp/stategraph/internal/jsonschema"
	"github.com/leofalp/stategraph/internal/utils"
	"github.com/leofalp/stategraph/providers/ai"
	"github.com/leofalp/stategraph/providers/observability"
)

// Tool is a named capability with a JSON argument schema.
type Tool interface {
	// Info returns the name, description and argument schema advertised to models.
	Info() ai.ToolDescription

	// Invoke runs the tool with structured arguments and returns its textual result.
	Invoke(ctx context.Context, arguments map[string]any) (string, error)
}

// Typed is a Tool backed by a function over concrete input and output types.
type Typed[I, O any] struct {
	name        string
	description string
	parameters  *jsonschema.Schema
	function    func(ctx context.Context, input I) (O, error)
}

var _ Tool = (*Typed[struct{}, string])(nil)

type typedOptions struct {
	description string
}

// Option configures a tool created with NewTool.
type Option func(*typedOptions)

// WithDescription sets the description shown to the model.
func WithDescription(description string) Option {
	return func(options *typedOptions) {
		options.description = description
	}
}

// NewTool wraps function as a Tool. The argument schema is derived from I,
// which should be a struct with json tags.
//
// Example:
//
//	type AddInput struct {
//	    A float64 `json:"a"`
//	    B float64 `json:"b"`
//	}
//	adder, err := tool.NewTool("addition_tool", func(ctx context.Context, in AddInput) (float64, error) {
//	    return in.A + in.B, nil
//	}, tool.WithDescription("when given 2 numbers add them"))
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), opts ...Option) (*Typed[I, O], error) {
	if name == "" {
		return nil, fmt.Errorf("tool name must not be empty")
	}
	if function == nil {
		return nil, fmt.Errorf("tool %q: function must not be nil", name)
	}

	options := &typedOptions{}
	for _, opt := range opts {
		opt(options)
	}

	parameters, err := jsonschema.GenerateJSONSchema[I]()
	if err != nil {
		return nil, fmt.Errorf("tool %q: failed to derive argument schema: %w", name, err)
	}

	return &Typed[I, O]{
		name:        name,
		description: options.description,
		parameters:  parameters,
		function:    function,
	}, nil
}

// MustNewTool is like NewTool but panics on error. Use it for package-level tools.
func MustNewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), opts ...Option) *Typed[I, O] {
	typed, err := NewTool(name, function, opts...)
	if err != nil {
		panic(err)
	}
	return typed
}

// Info returns the tool's description for model binding.
func (typed *Typed[I, O]) Info() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        typed.name,
		Description: typed.description,
		Parameters:  typed.parameters,
	}
}

// Invoke validates arguments against the schema, decodes them into I and
// calls the function. String outputs are returned verbatim, anything else is
// JSON encoded.
func (typed *Typed[I, O]) Invoke(ctx context.Context, arguments map[string]any) (string, error) {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent("tool.execution.start",
			observability.String(observability.AttrToolName, typed.name),
			observability.String(observability.AttrToolInput, utils.JSONToString(arguments)),
		)
	}
	start := time.Now()

	if err := jsonschema.Validate(typed.parameters, arguments); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	input, err := parse.DecodeArguments[I](arguments)
	if err != nil {
		return "", err
	}

	output, err := typed.function(ctx, input)
	if err != nil {
		return "", err
	}

	var result string
	if text, isString := any(output).(string); isString {
		result = text
	} else {
		encoded, err := json.Marshal(output)
		if err != nil {
			return "", fmt.Errorf("failed to encode output: %w", err)
		}
		result = string(encoded)
	}

	if span != nil {
		span.AddEvent("tool.execution.end",
			observability.String(observability.AttrToolOutput, utils.TruncateString(result, 200)),
			observability.Duration(observability.AttrDuration, time.Since(start)),
		)
	}
	return result, nil
}
