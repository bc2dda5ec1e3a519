// Package tutorials builds the small example graphs used by the CLI and the
// documentation.
package tutorials

import (
	"context"

	"github.com/leofalp/stategraph/patterns/graph"
	"github.com/leofalp/stategraph/providers/observability"
)

// CalculatorShape declares the calculator state.
var CalculatorShape = graph.NewShape("calculator",
	graph.Number("firstNumber"),
	graph.Number("secondNumber"),
	graph.Number("output"),
)

// NewCalculatorGraph returns a graph that adds firstNumber and secondNumber
// and then doubles the sum: 2 and 4 give 12.
func NewCalculatorGraph(opts ...graph.Option) (*graph.CompiledGraph, error) {
	options := append([]graph.Option{graph.WithName("calculator"), graph.WithStateShape(CalculatorShape)}, opts...)
	return graph.NewStateGraph(options...).
		AddNodeFunc("add", add).
		AddNodeFunc("multi", multiply).
		AddEdge(graph.Start, "add").
		AddEdge("add", "multi").
		AddEdge("multi", graph.End).
		Compile()
}

func add(ctx context.Context, state graph.State) (graph.Update, error) {
	sum := state.Float("firstNumber") + state.Float("secondNumber")
	logf(ctx, "add", sum)
	return graph.Update{"output": sum}, nil
}

func multiply(ctx context.Context, state graph.State) (graph.Update, error) {
	product := state.Float("output") * 2
	logf(ctx, "multi", product)
	return graph.Update{"output": product}, nil
}

// Shapes of the input/output example.
var (
	ShapesInput   = graph.NewShape("input", graph.String("user_input"), graph.String("user2_input"))
	ShapesOutput  = graph.NewShape("output", graph.String("graph_output"))
	ShapesOverall = graph.NewShape("overall",
		graph.String("foo"),
		graph.String("bar"),
		graph.String("user_input"),
		graph.String("user2_input"),
		graph.String("graph_output"),
	)
)

// NewShapesGraph returns a three-node graph with distinct input, output and
// overall shapes. node1 writes foo, node2 writes bar and node3 writes
// graph_output; only graph_output is returned.
func NewShapesGraph(opts ...graph.Option) (*graph.CompiledGraph, error) {
	options := append([]graph.Option{
		graph.WithName("shapes"),
		graph.WithStateShape(ShapesOverall),
		graph.WithInputShape(ShapesInput),
		graph.WithOutputShape(ShapesOutput),
	}, opts...)

	return graph.NewStateGraph(options...).
		AddNodeFunc("node1", func(ctx context.Context, state graph.State) (graph.Update, error) {
			return graph.Update{"foo": state.String("user_input") + " name"}, nil
		}).
		AddNodeFunc("node2", func(ctx context.Context, state graph.State) (graph.Update, error) {
			return graph.Update{"bar": state.String("foo") + " is"}, nil
		}).
		AddNodeFunc("node3", func(ctx context.Context, state graph.State) (graph.Update, error) {
			return graph.Update{"graph_output": state.String("bar") + " Lance"}, nil
		}).
		AddEdge(graph.Start, "node1").
		AddEdge("node1", "node2").
		AddEdge("node2", "node3").
		AddEdge("node3", graph.End).
		Compile()
}

func logf(ctx context.Context, node string, value float64) {
	if provider := observability.ObserverFromContext(ctx); provider != nil {
		provider.Debug(ctx, "calculator step",
			observability.String(observability.AttrGraphNode, node),
			observability.Float64("value", value),
		)
	}
}
