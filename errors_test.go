package agentgate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := NewError(ErrorEngine, "execution failed", nil)
	assert.Equal(t, "execution failed", err.Error())

	wrapped := NewError(ErrorTransport, "write frame", errors.New("broken pipe"))
	assert.Equal(t, "write frame: broken pipe", wrapped.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewError(ErrorEngine, "outer", cause)
	require.ErrorIs(t, err, cause)
	assert.ErrorIs(t, fmt.Errorf("context: %w", err), cause)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"categorized validation", NewError(ErrorValidation, "bad input", nil), ErrorValidation},
		{"categorized transport", NewError(ErrorTransport, "stream broke", nil), ErrorTransport},
		{"wrapped categorized", fmt.Errorf("outer: %w", NewError(ErrorEngine, "inner", nil)), ErrorEngine},
		{"missing conversation id", ErrMissingConversationID, ErrorValidation},
		{"missing prompt", ErrMissingPrompt, ErrorValidation},
		{"uncategorized", errors.New("mystery"), ErrorEngine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeOf(tt.err))
		})
	}
}
