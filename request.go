package agentgate

import "errors"

// Validation errors for inbound requests.
var (
	ErrMissingConversationID = errors.New("conversationId is required")
	ErrMissingPrompt         = errors.New("prompt is required")
)

// Request is one caller-submitted unit of work.
type Request struct {
	// ConversationID is an opaque caller-chosen correlation string. The
	// gateway echoes it back but never interprets it.
	ConversationID string `json:"conversationId"`

	// Prompt is the instruction to execute. Must be non-empty.
	Prompt string `json:"prompt"`

	// ContinuationToken, when present, resumes the execution context it
	// identifies instead of starting fresh.
	ContinuationToken string `json:"continuationToken,omitempty"`

	// Metadata is a caller-supplied key/value bag used exclusively to fill
	// header templates. It is never forwarded to the engine's prompt.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Validate checks the required fields.
func (r *Request) Validate() error {
	if r.ConversationID == "" {
		return ErrMissingConversationID
	}
	if r.Prompt == "" {
		return ErrMissingPrompt
	}
	return nil
}

// Resuming reports whether the request continues a prior execution context.
func (r *Request) Resuming() bool {
	return r.ContinuationToken != ""
}
