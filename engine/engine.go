// Package engine defines the execution-engine boundary the gateway drives,
// plus the in-memory continuation store that lets a later request resume a
// prior execution's context via its session token.
package engine

import (
	"context"
	"time"

	"agentgate"
)

// Request is the input to one engine execution.
type Request struct {
	// Prompt is the instruction to execute.
	Prompt string

	// ContinuationToken resumes the identified context when non-empty;
	// an empty token starts a fresh context.
	ContinuationToken string

	// Capabilities is the tool allow-list (exact names and wildcards).
	Capabilities []string

	// Servers is the request-scoped auxiliary server set, headers already
	// substituted for this caller.
	Servers agentgate.ServerSet
}

// Engine executes agent work and streams typed events.
//
// Execute is invoked exactly once per gateway request. A synchronous error
// means nothing was started and no events will follow. On success the
// returned channel yields an ordered sequence of events carrying a stable
// session token, terminated by exactly one terminal event, after which the
// channel is closed. Implementations must stop producing and release their
// resources when ctx is cancelled.
type Engine interface {
	Execute(ctx context.Context, req Request) (<-chan agentgate.StreamEvent, error)
}

// ChannelBuffer is the standard capacity for engine event channels.
const ChannelBuffer = 100

// NewChannel creates a buffered event channel with standard capacity.
func NewChannel() chan agentgate.StreamEvent {
	return make(chan agentgate.StreamEvent, ChannelBuffer)
}

// Emit stamps the event and sends it, blocking until the consumer accepts
// it or ctx is cancelled. It reports false when the send was abandoned;
// producers should stop on false since the consumer is gone.
func Emit(ctx context.Context, ch chan<- agentgate.StreamEvent, token string, ev agentgate.StreamEvent) bool {
	ev.SessionToken = token
	ev.Timestamp = time.Now()
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
