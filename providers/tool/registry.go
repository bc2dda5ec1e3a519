package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/leofalp/stategraph/providers/ai"
)

// Registry is an immutable, ordered set of tools addressed by name. Lookups
// try the exact name first and fall back to a case-insensitive match.
type Registry struct {
	tools   map[string]Tool
	folded  map[string]Tool
	ordered []string
}

// NewRegistry builds a registry. Duplicate names, including names that differ
// only by case, are rejected.
func NewRegistry(tools ...Tool) (*Registry, error) {
	registry := &Registry{
		tools:   make(map[string]Tool, len(tools)),
		folded:  make(map[string]Tool, len(tools)),
		ordered: make([]string, 0, len(tools)),
	}

	for _, registered := range tools {
		if registered == nil {
			return nil, fmt.Errorf("tool must not be nil")
		}
		name := registered.Info().Name
		if name == "" {
			return nil, fmt.Errorf("tool name must not be empty")
		}
		folded := strings.ToLower(name)
		if _, exists := registry.folded[folded]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		registry.tools[name] = registered
		registry.folded[folded] = registered
		registry.ordered = append(registry.ordered, name)
	}

	return registry, nil
}

// Get returns the tool registered under name.
func (registry *Registry) Get(name string) (Tool, bool) {
	if registered, exists := registry.tools[name]; exists {
		return registered, true
	}
	registered, exists := registry.folded[strings.ToLower(name)]
	return registered, exists
}

// Names returns tool names in registration order.
func (registry *Registry) Names() []string {
	return append([]string(nil), registry.ordered...)
}

// Len returns the number of registered tools.
func (registry *Registry) Len() int {
	return len(registry.ordered)
}

// Descriptions returns the model-facing descriptions in registration order.
func (registry *Registry) Descriptions() []ai.ToolDescription {
	descriptions := make([]ai.ToolDescription, 0, len(registry.ordered))
	for _, name := range registry.ordered {
		descriptions = append(descriptions, registry.tools[name].Info())
	}
	return descriptions
}

// Invoke dispatches call to the named tool. It returns *ToolNotFoundError
// when the name is unknown and *ToolExecutionError when the tool fails.
func (registry *Registry) Invoke(ctx context.Context, call ai.ToolCall) (string, error) {
	registered, exists := registry.Get(call.Name)
	if !exists {
		return "", &ToolNotFoundError{Name: call.Name, Available: registry.Names()}
	}

	arguments := call.Arguments
	if arguments == nil {
		arguments = map[string]any{}
	}

	result, err := registered.Invoke(ctx, arguments)
	if err != nil {
		return "", &ToolExecutionError{Name: registered.Info().Name, CallID: call.ID, Err: err}
	}
	return result, nil
}

// Bind advertises every tool in registry to model.
func Bind(model ai.ToolCallingModel, registry *Registry) ai.ChatModel {
	if registry == nil || registry.Len() == 0 {
		return model
	}
	return model.BindTools(registry.Descriptions()...)
}
