package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrReservedName is recorded when a node uses Start or End as its name.
	ErrReservedName = errors.New("node name is reserved")

	// ErrGraphFrozen is recorded when a builder is mutated after Compile.
	ErrGraphFrozen = errors.New("graph has already been compiled")
)

// DuplicateNodeError reports a node name registered twice.
type DuplicateNodeError struct {
	Node string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node %q", e.Node)
}

// UnknownNodeError reports an edge endpoint that was never registered.
type UnknownNodeError struct {
	Node string
	Edge string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("edge %s references unknown node %q", e.Edge, e.Node)
}

// UnreachableNodeError reports a registered node no path from Start leads to.
type UnreachableNodeError struct {
	Node string
}

func (e *UnreachableNodeError) Error() string {
	return fmt.Sprintf("node %q is unreachable from %s", e.Node, Start)
}

// GraphValidationError lists every structural problem found by Compile.
// errors.As finds the individual typed problems through Unwrap.
type GraphValidationError struct {
	Graph    string
	Problems []error
}

func (e *GraphValidationError) Error() string {
	var builder strings.Builder
	name := e.Graph
	if name == "" {
		name = "graph"
	}
	fmt.Fprintf(&builder, "%s is invalid (%d problem", name, len(e.Problems))
	if len(e.Problems) != 1 {
		builder.WriteByte('s')
	}
	builder.WriteString("):")
	for _, problem := range e.Problems {
		builder.WriteString("\n  - ")
		builder.WriteString(problem.Error())
	}
	return builder.String()
}

func (e *GraphValidationError) Unwrap() []error {
	return e.Problems
}

// UnknownOutcomeError reports a routing label missing from the outcome map.
type UnknownOutcomeError struct {
	Node    string
	Outcome string
	Known   []string
}

func (e *UnknownOutcomeError) Error() string {
	return fmt.Sprintf("router of node %q returned unknown outcome %q (declared: %s)",
		e.Node, e.Outcome, strings.Join(e.Known, ", "))
}

// InvalidUpdateError reports a state update that does not fit the shape.
// Node is Start for invalid run input.
type InvalidUpdateError struct {
	Node   string
	Key    string
	Reason string
}

func (e *InvalidUpdateError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("invalid update of key %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid update of key %q by node %q: %s", e.Key, e.Node, e.Reason)
}

// NodeError wraps the error returned by a node. Step counts from 1.
type NodeError struct {
	Node string
	Step int
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q failed at step %d: %v", e.Node, e.Step, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// RecursionLimitError is returned when a run would execute more steps than
// the configured limit. Node is the node that would have run next.
type RecursionLimitError struct {
	Limit int
	Node  string
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit of %d steps reached before node %q without reaching %s", e.Limit, e.Node, End)
}
