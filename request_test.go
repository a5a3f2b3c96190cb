package agentgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	req := Request{ConversationID: "c1", Prompt: "hello"}
	require.NoError(t, req.Validate())

	req = Request{Prompt: "hello"}
	assert.ErrorIs(t, req.Validate(), ErrMissingConversationID)

	req = Request{ConversationID: "c1"}
	assert.ErrorIs(t, req.Validate(), ErrMissingPrompt)
}

func TestRequestResuming(t *testing.T) {
	assert.False(t, (&Request{ConversationID: "c1", Prompt: "p"}).Resuming())
	assert.True(t, (&Request{ConversationID: "c1", Prompt: "p", ContinuationToken: "tok"}).Resuming())
}
