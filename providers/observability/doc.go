// Package observability defines the tracing, metrics and logging contracts
// used by the graph executor, model clients and tools.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into one injectable
// dependency. A run propagates its provider and active [Span] through a
// [context.Context] with [ContextWithObserver] and [ContextWithSpan].
// semconv.go lists the attribute keys and instrument names in use.
package observability
