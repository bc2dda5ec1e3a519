// Package jsonschema derives JSON Schema documents from Go types so typed
// tools can advertise their argument shape to a model, and validates decoded
// arguments against such a schema before a tool runs.
//
// Struct fields honour `json` tags for naming and omitempty, and a
// `jsonschema` tag with comma-separated items: description=..., enum=...
// (repeatable) and required.
package jsonschema
