package graph

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// StateGraph declares nodes and edges. Methods return the builder for
// chaining; registration problems are accumulated, available from Err, and
// reported together by Compile.
//
// Example:
//
//	compiled, err := graph.NewStateGraph(graph.WithStateShape(shape)).
//	    AddNode("agent", agentNode).
//	    AddNode("tools", toolNode).
//	    AddEdge(graph.Start, "agent").
//	    AddConditionalEdges("agent", routeToolCalls, map[string]string{
//	        "use_tool":      "tools",
//	        "direct_answer": graph.End,
//	    }).
//	    AddEdge("tools", "agent").
//	    Compile()
type StateGraph struct {
	config *graphConfig

	nodes     map[string]Node
	nodeOrder []string

	fixedEdges       []fixedEdge
	conditionalEdges []*conditionalEdge

	buildErrors []error
	compiled    bool
}

// NewStateGraph creates an empty builder.
func NewStateGraph(opts ...Option) *StateGraph {
	config := &graphConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return &StateGraph{
		config: config,
		nodes:  make(map[string]Node),
	}
}

// AddNode registers node under name. Reusing a name records a
// *DuplicateNodeError; Start and End record ErrReservedName.
func (builder *StateGraph) AddNode(name string, node Node) *StateGraph {
	if builder.frozen("AddNode", name) {
		return builder
	}

	switch {
	case name == "":
		builder.buildErrors = append(builder.buildErrors, errors.New("node name must not be empty"))
	case name == Start || name == End:
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("node %q: %w", name, ErrReservedName))
	case node == nil:
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("node %q must not be nil", name))
	default:
		if _, exists := builder.nodes[name]; exists {
			builder.buildErrors = append(builder.buildErrors, &DuplicateNodeError{Node: name})
			return builder
		}
		builder.nodes[name] = node
		builder.nodeOrder = append(builder.nodeOrder, name)
	}
	return builder
}

// AddNodeFunc registers a function as a node.
func (builder *StateGraph) AddNodeFunc(name string, fn func(ctx context.Context, state State) (Update, error)) *StateGraph {
	if fn == nil {
		return builder.AddNode(name, nil)
	}
	return builder.AddNode(name, NodeFunc(fn))
}

// AddEdge declares an unconditional transition. from may be Start and to may
// be End. Endpoints are resolved by Compile, so nodes may be added later.
func (builder *StateGraph) AddEdge(from, to string) *StateGraph {
	if builder.frozen("AddEdge", from+" -> "+to) {
		return builder
	}
	if from == "" || to == "" {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("edge endpoints must not be empty (from=%q, to=%q)", from, to))
		return builder
	}
	builder.fixedEdges = append(builder.fixedEdges, fixedEdge{from: from, to: to})
	return builder
}

// AddConditionalEdges routes from a node with router: the label it returns
// is looked up in outcomes to find the next node (or End). A label absent
// from outcomes fails the run with *UnknownOutcomeError.
func (builder *StateGraph) AddConditionalEdges(from string, router Router, outcomes map[string]string) *StateGraph {
	if builder.frozen("AddConditionalEdges", from) {
		return builder
	}
	switch {
	case from == "":
		builder.buildErrors = append(builder.buildErrors, errors.New("conditional edge source must not be empty"))
	case router == nil:
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("conditional edge from %q has a nil router", from))
	case len(outcomes) == 0:
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("conditional edge from %q declares no outcomes", from))
	default:
		builder.conditionalEdges = append(builder.conditionalEdges, newConditionalEdge(from, router, outcomes))
	}
	return builder
}

// Err returns the registration problems recorded so far, joined.
func (builder *StateGraph) Err() error {
	return errors.Join(builder.buildErrors...)
}

func (builder *StateGraph) frozen(operation, subject string) bool {
	if !builder.compiled {
		return false
	}
	builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%s(%s): %w", operation, subject, ErrGraphFrozen))
	return true
}

// Compile validates the declaration and returns an immutable CompiledGraph.
// All problems are returned in one *GraphValidationError:
//   - registration errors (duplicate, reserved or empty names)
//   - edges referencing unregistered nodes (*UnknownNodeError)
//   - Start without exactly one outgoing edge
//   - nodes with more than one outgoing edge declaration, or with both
//     fixed and conditional edges
//   - registered nodes unreachable from Start (*UnreachableNodeError)
//   - reachable nodes without an outgoing edge
//   - input or output fields missing from the overall state shape
func (builder *StateGraph) Compile() (*CompiledGraph, error) {
	problems := append([]error(nil), builder.buildErrors...)

	stateShape := builder.config.stateShape
	if stateShape == nil && (builder.config.inputShape != nil || builder.config.outputShape != nil) {
		stateShape = unionShape(builder.config.name, builder.config.inputShape, builder.config.outputShape)
	}
	if stateShape != nil {
		if missing := stateShape.Missing(builder.config.inputShape); len(missing) > 0 {
			problems = append(problems, fmt.Errorf("state shape %q lacks input fields %v", stateShape.Name(), missing))
		}
		if missing := stateShape.Missing(builder.config.outputShape); len(missing) > 0 {
			problems = append(problems, fmt.Errorf("state shape %q lacks output fields %v", stateShape.Name(), missing))
		}
	}

	fixedBySource := make(map[string][]string)
	for _, graphEdge := range builder.fixedEdges {
		label := graphEdge.from + " -> " + graphEdge.to
		problems = append(problems, builder.checkSource(graphEdge.from, label)...)
		problems = append(problems, builder.checkDestination(graphEdge.to, label)...)
		fixedBySource[graphEdge.from] = append(fixedBySource[graphEdge.from], graphEdge.to)
	}

	conditionalBySource := make(map[string][]*conditionalEdge)
	for _, graphEdge := range builder.conditionalEdges {
		problems = append(problems, builder.checkSource(graphEdge.from, graphEdge.from+" -> ?")...)
		for _, label := range graphEdge.labels {
			destination := graphEdge.outcomes[label]
			problems = append(problems, builder.checkDestination(destination, fmt.Sprintf("%s -[%s]-> %s", graphEdge.from, label, destination))...)
		}
		conditionalBySource[graphEdge.from] = append(conditionalBySource[graphEdge.from], graphEdge)
	}

	for _, source := range append([]string{Start}, builder.nodeOrder...) {
		fixedCount := len(fixedBySource[source])
		conditionalCount := len(conditionalBySource[source])
		switch {
		case fixedCount > 0 && conditionalCount > 0:
			problems = append(problems, fmt.Errorf("node %q has both fixed and conditional outgoing edges", source))
		case fixedCount > 1:
			problems = append(problems, fmt.Errorf("node %q has %d fixed outgoing edges, want one", source, fixedCount))
		case conditionalCount > 1:
			problems = append(problems, fmt.Errorf("node %q has %d conditional edge declarations, want one", source, conditionalCount))
		case source == Start && fixedCount+conditionalCount == 0:
			problems = append(problems, fmt.Errorf("no entry point: add an edge from %s", Start))
		}
	}

	reachable := builder.reachableFromStart(fixedBySource, conditionalBySource)
	for _, name := range builder.nodeOrder {
		if !reachable[name] {
			problems = append(problems, &UnreachableNodeError{Node: name})
			continue
		}
		if len(fixedBySource[name]) == 0 && len(conditionalBySource[name]) == 0 {
			problems = append(problems, fmt.Errorf("node %q has no outgoing edge; connect it to another node or to %s", name, End))
		}
	}

	if len(problems) > 0 {
		return nil, &GraphValidationError{Graph: builder.config.name, Problems: problems}
	}

	transitions := make(map[string]transition, len(builder.nodes)+1)
	for source, destinations := range fixedBySource {
		transitions[source] = transition{fixed: destinations[0]}
	}
	for source, graphEdges := range conditionalBySource {
		transitions[source] = transition{conditional: graphEdges[0]}
	}

	builder.compiled = true
	config := *builder.config
	config.stateShape = stateShape
	config.stepHooks = append([]StepHook(nil), builder.config.stepHooks...)

	return &CompiledGraph{
		config:      &config,
		nodes:       maps.Clone(builder.nodes),
		nodeOrder:   append([]string(nil), builder.nodeOrder...),
		transitions: transitions,
	}, nil
}

func (builder *StateGraph) checkSource(name, edgeLabel string) []error {
	switch {
	case name == Start:
		return nil
	case name == End:
		return []error{fmt.Errorf("edge %s leaves %s, which has no outgoing edges", edgeLabel, End)}
	case builder.nodes[name] == nil:
		return []error{&UnknownNodeError{Node: name, Edge: edgeLabel}}
	}
	return nil
}

func (builder *StateGraph) checkDestination(name, edgeLabel string) []error {
	switch {
	case name == End:
		return nil
	case name == Start:
		return []error{fmt.Errorf("edge %s enters %s, which has no incoming edges", edgeLabel, Start)}
	case builder.nodes[name] == nil:
		return []error{&UnknownNodeError{Node: name, Edge: edgeLabel}}
	}
	return nil
}

func (builder *StateGraph) reachableFromStart(fixedBySource map[string][]string, conditionalBySource map[string][]*conditionalEdge) map[string]bool {
	reachable := map[string]bool{Start: true}
	queue := []string{Start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var next []string
		next = append(next, fixedBySource[current]...)
		for _, graphEdge := range conditionalBySource[current] {
			for _, label := range graphEdge.labels {
				next = append(next, graphEdge.outcomes[label])
			}
		}
		for _, name := range next {
			if reachable[name] || builder.nodes[name] == nil {
				continue
			}
			reachable[name] = true
			queue = append(queue, name)
		}
	}
	return reachable
}
