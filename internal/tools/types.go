// Package tools provides the tool registry the engine dispatches tag
// fragments against. A fragment whose tag name matches a registered tool
// is decoded into arguments and executed; everything a tool does beyond
// returning its result is outside the engine's guarantees.
package tools

import "context"

// Property describes a single parameter property for the tool's schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// Schema defines the expected arguments of a tool.
type Schema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns the result string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is a named operation the model can invoke through the tag protocol.
type Tool struct {
	// Name is the unique identifier; it doubles as the protocol tag name.
	Name string

	// Description explains what the tool does.
	Description string

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema Schema
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// Result wraps the outcome of one tool execution.
type Result struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Output is the string result from the tool.
	Output string

	// Err is set if the tool failed.
	Err error

	// DurationMs is how long execution took.
	DurationMs int64
}

// Success reports whether the tool executed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}
