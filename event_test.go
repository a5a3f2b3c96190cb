package agentgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamEventTerminal(t *testing.T) {
	assert.True(t, StreamEvent{Kind: EventTerminalResult}.Terminal())
	assert.True(t, StreamEvent{Kind: EventLifecycleError}.Terminal())
	assert.False(t, StreamEvent{Kind: EventPartialContent}.Terminal())
	assert.False(t, StreamEvent{Kind: "custom_kind"}.Terminal())
}
