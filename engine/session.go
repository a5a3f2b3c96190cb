package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"agentgate"
)

// Session is one resumable execution context.
type Session struct {
	// Token identifies the session; it doubles as the continuation token.
	Token string

	// History is the conversation accumulated across executions.
	History []agentgate.Message

	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time
}

// Store holds sessions in memory for the process lifetime. Transcript
// persistence is out of scope; a restart forgets all continuation tokens.
// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Resume returns a copy of the history for token. ok is false when the
// token is unknown (expired, foreign, or from a previous process).
func (s *Store) Resume(token string) (history []agentgate.Message, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, found := s.sessions[token]
	if !found {
		return nil, false
	}
	history = make([]agentgate.Message, len(sess.History))
	copy(history, sess.History)
	return history, true
}

// Create mints a new session and returns its token.
func (s *Store) Create() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &Session{
		Token:     token,
		UpdatedAt: time.Now(),
	}
	return token
}

// Save replaces the history for token. Saving an unknown token recreates
// it, so a resumed-then-expired session can still be written back.
func (s *Store) Save(token string, history []agentgate.Message) {
	copied := make([]agentgate.Message, len(history))
	copy(copied, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &Session{
		Token:     token,
		History:   copied,
		UpdatedAt: time.Now(),
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune removes sessions idle longer than maxIdle and returns how many
// were dropped.
func (s *Store) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for token, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, token)
			dropped++
		}
	}
	return dropped
}
