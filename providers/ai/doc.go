// Package ai defines the provider-agnostic boundary between graph nodes and a
// remote chat model: role-tagged [Message] values, [ToolCall] requests,
// [Response] values and the [ChatModel] / [ToolCallingModel] interfaces.
//
// Provider packages (gemini, langchain) map these types to their own wire
// format, so agent graphs and tests depend only on this package.
package ai
