// Package tool defines the capability a model can request by name.
//
// [Tool] is the interface every tool satisfies; [NewTool] builds one from a
// typed Go function and derives its argument schema by reflection. A
// [Registry] holds the fixed set of tools a graph can dispatch to and reports
// failures as [ToolNotFoundError] or [ToolExecutionError].
package tool
