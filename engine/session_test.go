package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentgate"
)

func TestStore_CreateAndResume(t *testing.T) {
	s := NewStore()

	token := s.Create()
	require.NotEmpty(t, token)

	history, ok := s.Resume(token)
	assert.True(t, ok)
	assert.Empty(t, history)

	_, ok = s.Resume("unknown-token")
	assert.False(t, ok)
}

func TestStore_SaveAndResume(t *testing.T) {
	s := NewStore()
	token := s.Create()

	s.Save(token, []agentgate.Message{
		{Role: agentgate.RoleUser, Content: "ping"},
		{Role: agentgate.RoleAssistant, Content: "pong"},
	})

	history, ok := s.Resume(token)
	require.True(t, ok)
	require.Len(t, history, 2)
	assert.Equal(t, "pong", history[1].Content)
}

func TestStore_ResumeReturnsCopy(t *testing.T) {
	s := NewStore()
	token := s.Create()
	s.Save(token, []agentgate.Message{{Role: agentgate.RoleUser, Content: "original"}})

	history, ok := s.Resume(token)
	require.True(t, ok)
	history[0].Content = "mutated"

	again, ok := s.Resume(token)
	require.True(t, ok)
	assert.Equal(t, "original", again[0].Content)
}

func TestStore_TokensAreUnique(t *testing.T) {
	s := NewStore()
	seen := make(map[string]bool)
	for range 100 {
		token := s.Create()
		assert.False(t, seen[token])
		seen[token] = true
	}
	assert.Equal(t, 100, s.Len())
}

func TestStore_Prune(t *testing.T) {
	s := NewStore()
	stale := s.Create()
	s.sessions[stale].UpdatedAt = time.Now().Add(-2 * time.Hour)
	fresh := s.Create()

	dropped := s.Prune(time.Hour)
	assert.Equal(t, 1, dropped)

	_, ok := s.Resume(stale)
	assert.False(t, ok)
	_, ok = s.Resume(fresh)
	assert.True(t, ok)
}
