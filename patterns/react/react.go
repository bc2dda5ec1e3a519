package react

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/stategraph/patterns/graph"
	"github.com/leofalp/stategraph/providers/ai"
	"github.com/leofalp/stategraph/providers/observability"
	"github.com/leofalp/stategraph/providers/tool"
)

// State field names.
const (
	FieldMessages    = "messages"
	FieldFinalAnswer = "final_answer"
)

// Node names and routing labels of the agent graph.
const (
	NodeAgent    = "agent"
	NodeTools    = "tools"
	NodeFinalize = "finalize"

	OutcomeUseTool      = "use_tool"
	OutcomeDirectAnswer = "direct_answer"
)

// DefaultMaxSteps bounds the number of node executions of one run.
const DefaultMaxSteps = 25

// Shape returns the agent state shape: an append-only conversation and a
// nullable final answer.
func Shape() *graph.Shape {
	return graph.NewShape("react",
		graph.Messages(FieldMessages).WithReducer(graph.AppendReducer[ai.Message]()),
		graph.String(FieldFinalAnswer).AsNullable(),
	)
}

type agentConfig struct {
	name         string
	systemPrompt string
	maxSteps     int
	observer     observability.Provider
	stepHooks    []graph.StepHook
}

// Option configures NewAgent.
type Option func(*agentConfig)

// WithSystemPrompt prepends a system message to every model call. The
// prompt is not stored in the conversation.
func WithSystemPrompt(prompt string) Option {
	return func(config *agentConfig) {
		config.systemPrompt = prompt
	}
}

// WithMaxSteps sets the recursion limit. Values below 1 keep the default.
func WithMaxSteps(steps int) Option {
	return func(config *agentConfig) {
		if steps > 0 {
			config.maxSteps = steps
		}
	}
}

// WithName names the agent graph in errors and telemetry.
func WithName(name string) Option {
	return func(config *agentConfig) {
		config.name = name
	}
}

// WithObserver enables tracing, metrics and logging.
func WithObserver(provider observability.Provider) Option {
	return func(config *agentConfig) {
		config.observer = provider
	}
}

// WithStepHook registers a hook called after each step.
func WithStepHook(hook graph.StepHook) Option {
	return func(config *agentConfig) {
		config.stepHooks = append(config.stepHooks, hook)
	}
}

// NewAgent compiles the ReAct graph around model. The registry tools are
// bound to the model once; a nil registry means no tools.
func NewAgent(model ai.ToolCallingModel, registry *tool.Registry, opts ...Option) (*graph.CompiledGraph, error) {
	if model == nil {
		return nil, errors.New("react: model must not be nil")
	}
	if registry == nil {
		registry, _ = tool.NewRegistry()
	}

	config := &agentConfig{name: "react", maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(config)
	}

	graphOptions := []graph.Option{
		graph.WithName(config.name),
		graph.WithStateShape(Shape()),
		graph.WithRecursionLimit(config.maxSteps),
	}
	if config.observer != nil {
		graphOptions = append(graphOptions, graph.WithObserver(config.observer))
	}
	for _, hook := range config.stepHooks {
		graphOptions = append(graphOptions, graph.WithStepHook(hook))
	}

	return graph.NewStateGraph(graphOptions...).
		AddNode(NodeAgent, AgentNode(tool.Bind(model, registry), config.systemPrompt)).
		AddNode(NodeTools, ToolNode(registry)).
		AddNodeFunc(NodeFinalize, finalize).
		AddEdge(graph.Start, NodeAgent).
		AddConditionalEdges(NodeAgent, RouteToolCalls, map[string]string{
			OutcomeUseTool:      NodeTools,
			OutcomeDirectAnswer: NodeFinalize,
		}).
		AddEdge(NodeTools, NodeAgent).
		AddEdge(NodeFinalize, graph.End).
		Compile()
}

// Ask runs agent on a single human prompt and returns the final answer.
func Ask(ctx context.Context, agent *graph.CompiledGraph, prompt string) (string, error) {
	final, err := agent.Invoke(ctx, map[string]any{
		FieldMessages: []ai.Message{ai.HumanMessage(prompt)},
	})
	if err != nil {
		return "", err
	}
	return final.String(FieldFinalAnswer), nil
}

// Messages returns the conversation stored in state.
func Messages(state graph.State) []ai.Message {
	messages, _ := graph.Value[[]ai.Message](state, FieldMessages)
	return messages
}

// AgentNode calls model with the conversation and appends its reply.
func AgentNode(model ai.ChatModel, systemPrompt string) graph.Node {
	return graph.NodeFunc(func(ctx context.Context, state graph.State) (graph.Update, error) {
		conversation := Messages(state)
		request := conversation
		if systemPrompt != "" {
			request = append([]ai.Message{ai.SystemMessage(systemPrompt)}, conversation...)
		}

		response, err := model.Invoke(ctx, request)
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}
		if response == nil {
			return nil, errors.New("model call: empty response")
		}

		if provider := observability.ObserverFromContext(ctx); provider != nil {
			provider.Debug(ctx, "agent reply received",
				observability.Int(observability.AttrRequestMessagesCount, len(request)),
				observability.Int(observability.AttrLLMToolCalls, len(response.ToolCalls)),
				observability.String(observability.AttrLLMFinishReason, response.FinishReason),
			)
		}

		return graph.Update{FieldMessages: []ai.Message{response.Message()}}, nil
	})
}

// RouteToolCalls returns OutcomeUseTool when the last message requests tools
// and OutcomeDirectAnswer otherwise.
func RouteToolCalls(state graph.State) string {
	last, ok := ai.LastMessage(Messages(state))
	if ok && last.Role == ai.RoleAI && last.HasToolCalls() {
		return OutcomeUseTool
	}
	return OutcomeDirectAnswer
}

func finalize(ctx context.Context, state graph.State) (graph.Update, error) {
	messages := Messages(state)
	for position := len(messages) - 1; position >= 0; position-- {
		if messages[position].Role == ai.RoleAI {
			return graph.Update{FieldFinalAnswer: messages[position].Content}, nil
		}
	}
	return graph.Update{FieldFinalAnswer: nil}, nil
}
