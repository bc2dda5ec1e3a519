// Package gemini is an [ai.ToolCallingModel] backed by the Gemini
// generateContent REST endpoint.
//
// Conversation roles map as follows: human messages become "user" turns,
// ai messages become "model" turns with functionCall parts for tool calls,
// tool messages become "user" turns with a functionResponse part, and system
// messages are collected into the systemInstruction. Bound tools are sent as
// function declarations.
//
// [New] reads GEMINI_API_KEY (or GOOGLE_API_KEY) unless [WithAPIKey] is
// given, and fails with [ErrMissingAPIKey] when neither is set.
package gemini
