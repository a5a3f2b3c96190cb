package agentgate

import (
	"encoding/json"
	"time"
)

// EventKind tags one unit of the execution engine's output stream.
//
// The set is open-ended: engines may emit kinds the gateway does not model,
// and every component downstream of the engine must forward unrecognized
// kinds unchanged rather than rejecting them.
type EventKind string

const (
	// EventLifecycleStart fires once when an execution begins.
	EventLifecycleStart EventKind = "lifecycle_start"

	// EventPartialContent carries one streamed chunk of assistant output.
	EventPartialContent EventKind = "partial_content"

	// EventToolInvocation fires when the engine invokes a tool.
	EventToolInvocation EventKind = "tool_invocation"

	// EventToolResult carries the outcome of a tool invocation.
	EventToolResult EventKind = "tool_result"

	// EventTerminalResult is the successful terminal event of an execution.
	EventTerminalResult EventKind = "terminal_result"

	// EventLifecycleError is the terminal event of a failed execution.
	EventLifecycleError EventKind = "lifecycle_error"
)

// StreamEvent is one unit emitted by the execution engine and relayed to the
// caller verbatim. Exactly one terminal event appears per execution, and it
// is always the last event on the stream.
type StreamEvent struct {
	// Kind identifies the event. Unknown kinds flow through untouched.
	Kind EventKind `json:"kind"`

	// SessionToken is stable across every event of one execution and is the
	// continuation token a future request supplies to resume this context.
	SessionToken string `json:"sessionToken"`

	// Delta contains streamed content for EventPartialContent events.
	Delta string `json:"delta,omitempty"`

	// ToolCall contains the invocation for tool-related events.
	ToolCall *ToolCall `json:"toolCall,omitempty"`

	// ToolResult contains the outcome for EventToolResult events.
	ToolResult *ToolResult `json:"toolResult,omitempty"`

	// Result contains the outcome summary for terminal events.
	Result *Result `json:"result,omitempty"`

	// ErrorMessage contains a sanitized description for EventLifecycleError.
	ErrorMessage string `json:"error,omitempty"`

	// Payload carries kind-specific content for kinds the gateway does not
	// model. It is forwarded as-is.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Timestamp is when the engine produced the event.
	Timestamp time.Time `json:"timestamp"`
}

// Terminal reports whether the event ends its execution's stream.
func (e StreamEvent) Terminal() bool {
	return e.Kind == EventTerminalResult || e.Kind == EventLifecycleError
}

// ResultSubtype classifies a terminal outcome.
type ResultSubtype string

const (
	ResultSuccess ResultSubtype = "success"
	ResultError   ResultSubtype = "error"
)

// Result summarizes the outcome of one execution. It is attached to the
// terminal StreamEvent.
type Result struct {
	// Subtype is "success" or "error".
	Subtype ResultSubtype `json:"subtype"`

	// Content is the textual result. Only set on success.
	Content string `json:"content,omitempty"`

	// Errors lists sanitized failure descriptions. Only set on non-success.
	Errors []string `json:"errors,omitempty"`

	// DurationMS is the wall-clock execution time in milliseconds.
	DurationMS int64 `json:"durationMs"`

	// Turns is the number of model turns the execution took.
	Turns int `json:"turns"`

	// Usage is the aggregate token usage across all turns.
	Usage Usage `json:"usage"`
}

// Usage tracks token consumption for an execution.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}
