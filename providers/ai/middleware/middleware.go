package middleware

import (
	"context"

	"github.com/leofalp/stategraph/providers/ai"
)

// InvokeFunc is one step of the chain: it sends the conversation and returns
// the reply.
type InvokeFunc func(ctx context.Context, messages []ai.Message) (*ai.Response, error)

// Middleware receives the next InvokeFunc in the chain and returns a new one
// that wraps it.
type Middleware func(next InvokeFunc) InvokeFunc

// Model is a ChatModel with a middleware chain in front of it.
type Model struct {
	base        ai.ChatModel
	middlewares []Middleware
	chain       InvokeFunc
}

var _ ai.ToolCallingModel = (*Model)(nil)

// Wrap returns base behind middlewares, the first entry outermost. Nil
// entries are skipped.
func Wrap(base ai.ChatModel, middlewares ...Middleware) *Model {
	kept := make([]Middleware, 0, len(middlewares))
	for _, middleware := range middlewares {
		if middleware != nil {
			kept = append(kept, middleware)
		}
	}

	return &Model{
		base:        base,
		middlewares: kept,
		chain:       buildChain(base, kept),
	}
}

// Invoke runs the conversation through the chain.
func (model *Model) Invoke(ctx context.Context, messages []ai.Message) (*ai.Response, error) {
	return model.chain(ctx, messages)
}

// BindTools binds tools on the underlying model and wraps the result with the
// same middleware. A base model without tool support ignores the tools.
func (model *Model) BindTools(tools ...ai.ToolDescription) ai.ChatModel {
	toolModel, ok := model.base.(ai.ToolCallingModel)
	if !ok {
		return model
	}
	return Wrap(toolModel.BindTools(tools...), model.middlewares...)
}

// buildChain applies middlewares in reverse so that middlewares[0] is outermost.
func buildChain(base ai.ChatModel, middlewares []Middleware) InvokeFunc {
	chain := InvokeFunc(base.Invoke)
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}
	return chain
}
