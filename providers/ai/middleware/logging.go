package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/stategraph/internal/utils"
	"github.com/leofalp/stategraph/providers/ai"
)

// LogLevel controls how much detail [Logging] emits per call.
type LogLevel int

const (
	// LogLevelMinimal logs the duration, the model and the token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message count, the finish reason and the
	// number of tool calls.
	LogLevelStandard

	// LogLevelVerbose adds the last message and the reply text, each truncated
	// to 500 characters.
	//
	// WARNING: this logs raw prompts and replies. Use it for local debugging only.
	LogLevelVerbose
)

const truncateLen = 500

// Logging emits "llm invoke" before and "llm invoke completed" or
// "llm invoke failed" after every call. A nil logger uses slog.Default().
func Logging(logger *slog.Logger, level LogLevel) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, messages []ai.Message) (*ai.Response, error) {
			logger.DebugContext(ctx, "llm invoke", requestAttrs(messages, level)...)

			start := time.Now()
			response, err := next(ctx, messages)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm invoke failed",
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm invoke completed", responseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func requestAttrs(messages []ai.Message, level LogLevel) []any {
	var attrs []any

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("message_count", len(messages)))
	}

	if last, ok := ai.LastMessage(messages); ok && level >= LogLevelVerbose {
		attrs = append(attrs,
			slog.String("last_message_role", string(last.Role)),
			slog.String("last_message_content", utils.TruncateString(last.Content, truncateLen)),
		)
	}

	return attrs
}

func responseAttrs(response *ai.Response, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.Duration("duration", elapsed),
	}

	if response.Model != "" {
		attrs = append(attrs, slog.String("model", response.Model))
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
			slog.Int("total_tokens", response.Usage.TotalTokens),
		)
	}

	if level >= LogLevelStandard {
		if response.FinishReason != "" {
			attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
		}
		attrs = append(attrs, slog.Int("tool_calls", len(response.ToolCalls)))
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, slog.String("response_content", utils.TruncateString(response.Content, truncateLen)))
	}

	return attrs
}
