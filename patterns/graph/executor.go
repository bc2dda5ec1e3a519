package graph

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// CompiledGraph is the immutable, executable form of a StateGraph. It is safe
// for concurrent use; each run owns its State.
type CompiledGraph struct {
	config      *graphConfig
	nodes       map[string]Node
	nodeOrder   []string
	transitions map[string]transition
}

// RunResult describes a completed run.
type RunResult struct {
	RunID string
	// Path lists the executed nodes in order, without Start and End.
	Path []string
	// Steps is len(Path).
	Steps int
	// State is the final State projected onto the output shape.
	State State
}

// Name returns the configured graph name.
func (graph *CompiledGraph) Name() string { return graph.config.name }

// Nodes returns the registered node names in registration order.
func (graph *CompiledGraph) Nodes() []string { return slices.Clone(graph.nodeOrder) }

// StateShape returns the overall state shape, or nil when the graph is untyped.
func (graph *CompiledGraph) StateShape() *Shape { return graph.config.stateShape }

// InputShape returns the input shape, falling back to the overall shape.
func (graph *CompiledGraph) InputShape() *Shape {
	if graph.config.inputShape != nil {
		return graph.config.inputShape
	}
	return graph.config.stateShape
}

// OutputShape returns the output shape, falling back to the overall shape.
func (graph *CompiledGraph) OutputShape() *Shape {
	if graph.config.outputShape != nil {
		return graph.config.outputShape
	}
	return graph.config.stateShape
}

// Invoke runs the graph on input and returns the final State.
func (graph *CompiledGraph) Invoke(ctx context.Context, input map[string]any) (State, error) {
	result, err := graph.Run(ctx, input)
	if err != nil {
		return State{}, err
	}
	return result.State, nil
}

// Run executes the graph from Start until End is reached.
//
// The input keys must be declared by the input shape (or the overall shape).
// Each step executes one node, merges its update and picks the next node.
// Any failure aborts the run: no partial State is returned.
//
// Errors:
//   - *InvalidUpdateError: invalid input or node update
//   - *NodeError: a node returned an error
//   - *UnknownOutcomeError: a router returned an undeclared label
//   - *RecursionLimitError: the step limit was exceeded
//   - ctx.Err(): the context was cancelled between steps
func (graph *CompiledGraph) Run(ctx context.Context, input map[string]any) (*RunResult, error) {
	runID := uuid.New().String()
	ctx, run := graph.startRun(ctx, runID)

	result, err := graph.run(ctx, run, runID, input)
	run.finish(ctx, result, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (graph *CompiledGraph) run(ctx context.Context, run *runObserver, runID string, input map[string]any) (*RunResult, error) {
	state, err := graph.initialState(input)
	if err != nil {
		return nil, err
	}

	current, err := graph.next(Start, state)
	if err != nil {
		return nil, err
	}

	var path []string
	visits := make(map[string]int, len(graph.nodes))

	for current != End {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		step := len(path) + 1
		if graph.config.recursionLimit > 0 && step > graph.config.recursionLimit {
			return nil, &RecursionLimitError{Limit: graph.config.recursionLimit, Node: current}
		}

		visits[current]++
		if visits[current] > 1 {
			run.revisit(ctx, current, visits[current])
		}

		nodeCtx, nodeSpan := run.startNode(ctx, current, step)
		started := time.Now()
		update, err := graph.nodes[current].Execute(nodeCtx, state)
		if err != nil {
			nodeErr := &NodeError{Node: current, Step: step, Err: err}
			nodeSpan.fail(nodeCtx, nodeErr, time.Since(started))
			return nil, nodeErr
		}

		merged, err := Merge(state, update, graph.config.stateShape)
		if err != nil {
			if invalid, ok := err.(*InvalidUpdateError); ok {
				invalid.Node = current
			}
			nodeSpan.fail(nodeCtx, err, time.Since(started))
			return nil, err
		}
		state = merged
		path = append(path, current)

		following, err := graph.next(current, state)
		if err != nil {
			nodeSpan.fail(nodeCtx, err, time.Since(started))
			return nil, err
		}
		nodeSpan.succeed(nodeCtx, following, time.Since(started))

		graph.notify(ctx, Step{RunID: runID, Index: step, Node: current, Update: update, State: state})
		current = following
	}

	if shape := graph.config.outputShape; shape != nil {
		state = state.Project(shape)
	}

	return &RunResult{
		RunID: runID,
		Path:  path,
		Steps: len(path),
		State: state,
	}, nil
}

func (graph *CompiledGraph) initialState(input map[string]any) (State, error) {
	shape := graph.InputShape()
	state, err := Merge(State{}, Update(input), shape)
	if err != nil {
		if invalid, ok := err.(*InvalidUpdateError); ok {
			invalid.Node = Start
		}
		return State{}, err
	}
	if shape != graph.config.stateShape && graph.config.stateShape != nil {
		// Re-order under the overall shape so later merges keep a stable order.
		return Merge(State{}, Update(state.Map()), graph.config.stateShape)
	}
	return state, nil
}

// next resolves the transition leaving from, after from's update was merged.
func (graph *CompiledGraph) next(from string, state State) (string, error) {
	outgoing, exists := graph.transitions[from]
	if !exists {
		return "", fmt.Errorf("node %q has no outgoing transition", from)
	}
	if outgoing.conditional == nil {
		return outgoing.fixed, nil
	}

	label := outgoing.conditional.router(state)
	destination, declared := outgoing.conditional.outcomes[label]
	if !declared {
		return "", &UnknownOutcomeError{
			Node:    from,
			Outcome: label,
			Known:   slices.Clone(outgoing.conditional.labels),
		}
	}
	return destination, nil
}

func (graph *CompiledGraph) notify(ctx context.Context, step Step) {
	for _, hook := range graph.config.stepHooks {
		hook(ctx, step)
	}
}
