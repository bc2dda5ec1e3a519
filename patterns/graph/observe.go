package graph

import (
	"context"
	"time"

	"github.com/leofalp/stategraph/providers/observability"
)

// runObserver holds the telemetry state of one run. All methods are no-ops
// when no provider is configured.
type runObserver struct {
	provider observability.Provider
	span     observability.Span
	started  time.Time
	attrs    []observability.Attribute
}

type nodeObserver struct {
	run  *runObserver
	node string
	step int
	span observability.Span
}

func (graph *CompiledGraph) startRun(ctx context.Context, runID string) (context.Context, *runObserver) {
	provider := graph.config.observer
	if provider == nil {
		provider = observability.ObserverFromContext(ctx)
	}
	run := &runObserver{provider: provider, started: time.Now()}
	if provider == nil {
		return ctx, run
	}

	run.attrs = []observability.Attribute{
		observability.String(observability.AttrGraphName, graph.config.name),
		observability.String(observability.AttrGraphRunID, runID),
	}
	ctx, run.span = provider.StartSpan(ctx, observability.SpanGraphInvoke,
		append(run.attrs, observability.Int(observability.AttrGraphNodeCount, len(graph.nodes)))...)
	ctx = observability.ContextWithObserver(ctx, provider)

	provider.Debug(ctx, "graph run started", run.attrs...)
	return ctx, run
}

func (run *runObserver) finish(ctx context.Context, result *RunResult, err error) {
	if run.provider == nil {
		return
	}
	defer run.span.End()

	duration := time.Since(run.started)
	run.provider.Histogram(observability.MetricGraphRunDuration).Record(ctx, duration.Seconds(), run.attrs...)

	if err != nil {
		run.span.RecordError(err)
		run.span.SetStatus(observability.StatusError, err.Error())
		run.provider.Error(ctx, "graph run failed",
			append(run.attrs, observability.Error(err), observability.Duration(observability.AttrDuration, duration))...)
		return
	}

	run.span.SetAttributes(
		observability.Int(observability.AttrGraphStep, result.Steps),
		observability.StringSlice(observability.AttrGraphPath, result.Path),
	)
	run.span.SetStatus(observability.StatusOK, "")
	run.provider.Info(ctx, "graph run completed",
		append(run.attrs,
			observability.Int(observability.AttrGraphStep, result.Steps),
			observability.StringSlice(observability.AttrGraphStateKeys, result.State.Keys()),
			observability.Duration(observability.AttrDuration, duration),
		)...)
}

func (run *runObserver) revisit(ctx context.Context, node string, visits int) {
	if run.provider == nil {
		return
	}
	run.provider.Debug(ctx, "graph cycle: node visited again",
		append(run.attrs,
			observability.String(observability.AttrGraphNode, node),
			observability.Int(observability.AttrGraphVisits, visits),
		)...)
}

func (run *runObserver) startNode(ctx context.Context, node string, step int) (context.Context, *nodeObserver) {
	observer := &nodeObserver{run: run, node: node, step: step}
	if run.provider == nil {
		return ctx, observer
	}
	ctx, observer.span = run.provider.StartSpan(ctx, observability.SpanGraphNode, observer.attrs()...)
	run.provider.Trace(ctx, "graph node started", observer.attrs()...)
	return ctx, observer
}

func (observer *nodeObserver) attrs() []observability.Attribute {
	return append(append([]observability.Attribute(nil), observer.run.attrs...),
		observability.String(observability.AttrGraphNode, observer.node),
		observability.Int(observability.AttrGraphStep, observer.step),
	)
}

func (observer *nodeObserver) succeed(ctx context.Context, next string, duration time.Duration) {
	provider := observer.run.provider
	if provider == nil {
		return
	}
	defer observer.span.End()

	attrs := observer.attrs()
	provider.Counter(observability.MetricGraphNodeCount).Add(ctx, 1, attrs...)
	provider.Histogram(observability.MetricGraphNodeDuration).Record(ctx, duration.Seconds(), attrs...)

	observer.span.SetAttributes(observability.String(observability.AttrGraphNext, next))
	observer.span.SetStatus(observability.StatusOK, "")
	provider.Debug(ctx, "graph node completed",
		append(attrs,
			observability.String(observability.AttrGraphNext, next),
			observability.Duration(observability.AttrDuration, duration),
		)...)
}

func (observer *nodeObserver) fail(ctx context.Context, err error, duration time.Duration) {
	provider := observer.run.provider
	if provider == nil {
		return
	}
	defer observer.span.End()

	attrs := observer.attrs()
	provider.Counter(observability.MetricGraphNodeCount).Add(ctx, 1, attrs...)
	provider.Histogram(observability.MetricGraphNodeDuration).Record(ctx, duration.Seconds(), attrs...)

	observer.span.RecordError(err)
	observer.span.SetStatus(observability.StatusError, err.Error())
}
