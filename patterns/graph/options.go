package graph

import (
	"context"

	"github.com/leofalp/stategraph/providers/observability"
)

// Option configures a StateGraph.
type Option func(*graphConfig)

type graphConfig struct {
	name           string
	stateShape     *Shape
	inputShape     *Shape
	outputShape    *Shape
	recursionLimit int
	observer       observability.Provider
	stepHooks      []StepHook
}

// Step describes one executed node, after its update was merged.
type Step struct {
	RunID  string
	Index  int
	Node   string
	Update Update
	State  State
}

// StepHook observes executed steps. Hooks run synchronously on the run's
// goroutine and must not block.
type StepHook func(ctx context.Context, step Step)

// WithName names the graph in errors and telemetry.
func WithName(name string) Option {
	return func(config *graphConfig) {
		config.name = name
	}
}

// WithStateShape declares the overall state shape. Updates to undeclared keys
// are rejected and field reducers apply.
func WithStateShape(shape *Shape) Option {
	return func(config *graphConfig) {
		config.stateShape = shape
	}
}

// WithInputShape restricts the keys accepted by Invoke. When no overall shape
// is declared, the overall shape becomes the union of input and output shapes.
func WithInputShape(shape *Shape) Option {
	return func(config *graphConfig) {
		config.inputShape = shape
	}
}

// WithOutputShape projects the final State onto shape.
func WithOutputShape(shape *Shape) Option {
	return func(config *graphConfig) {
		config.outputShape = shape
	}
}

// WithRecursionLimit bounds the number of node executions per run. Zero, the
// default, means unbounded.
//
// Example:
//
//	graph.NewStateGraph(graph.WithRecursionLimit(25))
func WithRecursionLimit(limit int) Option {
	return func(config *graphConfig) {
		config.recursionLimit = limit
	}
}

// WithObserver enables tracing, metrics and logging for every run. Without
// it, a provider found in the run's context is used.
func WithObserver(provider observability.Provider) Option {
	return func(config *graphConfig) {
		config.observer = provider
	}
}

// WithStepHook registers a hook called after each step.
func WithStepHook(hook StepHook) Option {
	return func(config *graphConfig) {
		if hook != nil {
			config.stepHooks = append(config.stepHooks, hook)
		}
	}
}
