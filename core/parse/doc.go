// Package parse decodes model output that is meant to be JSON but often is
// not quite: tool-call arguments with single quotes, trailing commas, unquoted
// keys or truncated objects are repaired with jsonrepair before decoding.
package parse
