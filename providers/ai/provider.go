package ai

import "context"

// ChatModel sends a conversation to a model and returns its reply.
// Implementations must be safe for concurrent use; a graph shared by
// concurrent runs calls Invoke from several goroutines.
type ChatModel interface {
	Invoke(ctx context.Context, messages []Message) (*Response, error)
}

// ToolCallingModel is a ChatModel that can advertise tools to the model.
// BindTools returns a new model carrying the tool declarations; the receiver
// is left unchanged.
type ToolCallingModel interface {
	ChatModel
	BindTools(tools ...ToolDescription) ChatModel
}

// ChatModelFunc adapts a function to the ChatModel interface.
type ChatModelFunc func(ctx context.Context, messages []Message) (*Response, error)

// Invoke calls the underlying function.
func (modelFunc ChatModelFunc) Invoke(ctx context.Context, messages []Message) (*Response, error) {
	return modelFunc(ctx, messages)
}
