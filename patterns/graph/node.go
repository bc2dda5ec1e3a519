package graph

import (
	"context"
	"maps"
	"slices"
)

const (
	// Start is the virtual entry marker. Exactly one edge must leave it.
	Start = "__start__"
	// End is the virtual exit marker. Reaching it completes a run.
	End = "__end__"
)

// Node is one processing step. It receives the current State and returns the
// partial Update to merge into it. Returning an error aborts the run.
type Node interface {
	Execute(ctx context.Context, state State) (Update, error)
}

// NodeFunc adapts a function to the Node interface.
type NodeFunc func(ctx context.Context, state State) (Update, error)

// Execute calls the underlying function.
func (nodeFunc NodeFunc) Execute(ctx context.Context, state State) (Update, error) {
	return nodeFunc(ctx, state)
}

// Router picks an outcome label from the State produced by the node it
// follows. It should be a pure function of the State.
type Router func(state State) string

type fixedEdge struct {
	from string
	to   string
}

type conditionalEdge struct {
	from     string
	router   Router
	outcomes map[string]string
	labels   []string
}

func newConditionalEdge(from string, router Router, outcomes map[string]string) *conditionalEdge {
	copied := maps.Clone(outcomes)
	return &conditionalEdge{
		from:     from,
		router:   router,
		outcomes: copied,
		labels:   slices.Sorted(maps.Keys(copied)),
	}
}

// transition is the compiled outgoing edge of one node.
type transition struct {
	fixed       string
	conditional *conditionalEdge
}
