// Package graph implements a directed state graph: named nodes read a shared,
// ordered State and return partial updates that are merged back into it, and
// edges decide which node runs next.
//
// A graph is declared with [NewStateGraph], [StateGraph.AddNode],
// [StateGraph.AddEdge] and [StateGraph.AddConditionalEdges], then frozen by
// [StateGraph.Compile], which reports every structural problem at once in a
// [GraphValidationError]. The reserved markers [Start] and [End] denote the
// entry and exit of a run.
//
// A [CompiledGraph] executes strictly sequentially: one node at a time, the
// update merged with [Merge], then either the single fixed edge is followed or
// a [Router] chooses an outcome label that is looked up in the declared
// outcome map. Routers see the State after the merge. A run ends when the
// next destination is [End]; the State is then projected onto the output
// shape, if one was declared.
//
// Cycles are allowed. Nothing detects a loop that never reaches [End]: a
// graph whose routers never select a path to [End] runs until the context is
// cancelled. Use [WithRecursionLimit] to bound the number of steps.
//
// Compiled graphs are immutable and safe for concurrent runs; every run owns
// its State.
//
// Example:
//
//	shape := graph.NewShape("calc",
//	    graph.Number("firstNumber"), graph.Number("secondNumber"), graph.Number("output"))
//
//	compiled, err := graph.NewStateGraph(graph.WithStateShape(shape)).
//	    AddNodeFunc("add", func(ctx context.Context, state graph.State) (graph.Update, error) {
//	        return graph.Update{"output": state.Float("firstNumber") + state.Float("secondNumber")}, nil
//	    }).
//	    AddNodeFunc("multi", func(ctx context.Context, state graph.State) (graph.Update, error) {
//	        return graph.Update{"output": state.Float("output") * 2}, nil
//	    }).
//	    AddEdge(graph.Start, "add").
//	    AddEdge("add", "multi").
//	    AddEdge("multi", graph.End).
//	    Compile()
//
//	final, err := compiled.Invoke(ctx, map[string]any{"firstNumber": 2, "secondNumber": 4})
//	// final.Float("output") == 12
package graph
