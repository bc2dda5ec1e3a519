// Package langchain adapts any langchaingo [llms.Model] to the
// [ai.ToolCallingModel] contract, so graph agents can run on every backend
// langchaingo supports. [NewGoogleAI] is a shortcut for the googleai backend.
package langchain
