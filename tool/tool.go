// Package tool implements the function / tool calling subsystem that lets agents
// invoke structured capabilities with schema validated arguments, consistent
// error handling and metadata for model guidance.
package tool

import (
	"fmt"
	"sort"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/model"
)

// Error codes carried by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered with agents to enable function calling. Every call
// receives a ToolContext giving access to session state, the run identity
// and flow-control actions such as SkipSummarization.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description is shown to the model to explain when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input.
	Parameters() map[string]any

	// Call executes the tool with decoded JSON arguments.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
	cause   error
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *ToolError) Unwrap() error { return e.cause }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Definitions converts a tool set into model tool definitions sorted by name
// so requests are stable across calls.
func Definitions(tools map[string]Tool) []model.ToolDefinition {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		t := tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Set builds a name-indexed tool map.
func Set(tools ...Tool) map[string]Tool {
	out := make(map[string]Tool, len(tools))
	for _, t := range tools {
		out[t.Name()] = t
	}
	return out
}
