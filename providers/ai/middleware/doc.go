// Package middleware wraps an [ai.ChatModel] with cross-cutting behaviour
// around every Invoke call.
//
//   - [Timeout]: adds a per-call deadline via context.WithTimeout.
//
//   - [Logging]: emits slog entries before and after every call, with three
//     verbosity levels.
//
// Failed calls are returned as they are; nothing is retried.
//
// # Usage
//
//	model := middleware.Wrap(base,
//	    middleware.Timeout(30*time.Second),
//	    middleware.Logging(logger, middleware.LogLevelStandard),
//	)
//
// The first middleware is the outermost wrapper. Wrapped models keep tool
// binding: BindTools binds on the underlying model and wraps the result with
// the same middleware.
package middleware
