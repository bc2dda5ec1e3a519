package middleware

import (
	"context"
	"time"

	"github.com/leofalp/stategraph/providers/ai"
)

// Timeout bounds every call with a deadline. A non-positive timeout returns
// nil, which [Wrap] skips. A shorter deadline already on the caller's context
// still wins.
func Timeout(timeout time.Duration) Middleware {
	if timeout <= 0 {
		return nil
	}
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, messages []ai.Message) (*ai.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, messages)
		}
	}
}
