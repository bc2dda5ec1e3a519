// Package utils holds small helpers shared by the model clients and tools:
// a JSON POST helper with span events, truncation and JSON formatting.
package utils
