package agentgate

import "encoding/json"

// Tool defines a capability the execution engine may invoke.
type Tool struct {
	// Name is the unique identifier for the tool. Tools hosted by an
	// auxiliary server carry a qualified name (see QualifiedToolName).
	Name string
	// Description explains what the tool does.
	Description string
	// Parameters is a JSON Schema object defining the tool's arguments.
	Parameters json.RawMessage
}

// ToolCall represents a request from the model to invoke a tool.
type ToolCall struct {
	// ID is a unique identifier for this call (used to match results).
	ID string `json:"id"`
	// Name is the name of the tool to invoke.
	Name string `json:"name"`
	// Arguments is a JSON string containing the arguments to pass.
	Arguments string `json:"arguments"`
}

// ToolResult represents the result of executing a tool call.
type ToolResult struct {
	// ToolCallID matches the ID from the corresponding ToolCall.
	ToolCallID string `json:"toolCallId"`
	// Content is the result content to return to the model.
	Content string `json:"content"`
	// IsError indicates if the result represents an error.
	IsError bool `json:"isError,omitempty"`
}
