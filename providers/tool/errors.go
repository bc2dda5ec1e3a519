package tool

import (
	"fmt"
	"strings"
)

// ToolNotFoundError reports a requested tool name that is not registered.
type ToolNotFoundError struct {
	Name      string
	Available []string
}

func (e *ToolNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("tool %q not found: no tools are registered", e.Name)
	}
	return fmt.Sprintf("tool %q not found, available tools: %s", e.Name, strings.Join(e.Available, ", "))
}

// ToolExecutionError wraps a failure raised by a tool while running.
type ToolExecutionError struct {
	Name   string
	CallID string
	Err    error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Name, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}
