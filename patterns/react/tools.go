package react

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leofalp/stategraph/patterns/graph"
	"github.com/leofalp/stategraph/providers/ai"
	"github.com/leofalp/stategraph/providers/observability"
	"github.com/leofalp/stategraph/providers/tool"
)

// ToolNode dispatches every tool call of the last ai message through
// registry and appends one tool-role message per call, in order.
//
// A missing tool or a failing tool is reported to the model as a failed
// ai.ToolResult instead of an error; only cancellation aborts the node.
func ToolNode(registry *tool.Registry) graph.Node {
	return graph.NodeFunc(func(ctx context.Context, state graph.State) (graph.Update, error) {
		last, ok := ai.LastMessage(Messages(state))
		if !ok || !last.HasToolCalls() {
			return graph.Update{}, nil
		}

		replies := make([]ai.Message, 0, len(last.ToolCalls))
		for _, call := range last.ToolCalls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			replies = append(replies, ai.ToolMessage(call.ID, call.Name, dispatch(ctx, registry, call)))
		}
		return graph.Update{FieldMessages: replies}, nil
	})
}

func dispatch(ctx context.Context, registry *tool.Registry, call ai.ToolCall) string {
	provider := observability.ObserverFromContext(ctx)
	attrs := []observability.Attribute{
		observability.String(observability.AttrToolName, call.Name),
		observability.String(observability.AttrToolCallID, call.ID),
	}

	var span observability.Span
	if provider != nil {
		ctx, span = provider.StartSpan(ctx, observability.SpanToolDispatch, attrs...)
		defer span.End()
		provider.Counter(observability.MetricToolCallCount).Add(ctx, 1, attrs...)
	}

	started := time.Now()
	output, err := registry.Invoke(ctx, call)
	if err == nil {
		if provider != nil {
			span.SetStatus(observability.StatusOK, "")
			provider.Debug(ctx, "tool call completed",
				append(attrs,
					observability.String(observability.AttrToolOutput, observability.TruncateString(output, 0)),
					observability.Duration(observability.AttrDuration, time.Since(started)),
				)...)
		}
		return output
	}

	if provider != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		provider.Warn(ctx, "tool call failed", append(attrs, observability.Error(err))...)
	}
	return failureContent(err)
}

func failureContent(err error) string {
	var result ai.ToolResult
	var notFound *tool.ToolNotFoundError
	switch {
	case errors.As(err, &notFound):
		result = ai.NewToolResultError(ai.ToolErrorNotFound, notFound.Error())
	default:
		result = ai.NewToolResultError(ai.ToolErrorExecution, err.Error())
	}

	encoded, encodeErr := result.ToJSON()
	if encodeErr != nil {
		return fmt.Sprintf(`{"success":false,"error":%q}`, result.Error)
	}
	return encoded
}
