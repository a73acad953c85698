// Package session keeps per-conversation history for the lifetime of the
// process. Appends are serialized per session key, so two requests racing on
// the same conversation cannot interleave half an exchange; different
// sessions never block each other.
package session

import (
	"sync"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
)

type entry struct {
	mu    sync.Mutex
	turns []domain.ConversationTurn
}

// Store is a concurrency-safe keyed collection of append-only conversations.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) get(sessionID string) *entry {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[sessionID]; !ok {
		e = &entry{}
		s.entries[sessionID] = e
	}
	return e
}

// Append adds turns to the session, creating it on first use. All turns of
// one call land adjacently, so a user/assistant exchange is appended as a
// unit.
func (s *Store) Append(sessionID string, turns ...domain.ConversationTurn) {
	e := s.get(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.turns = append(e.turns, turns...)
}

// Recent returns a copy of the last n turns of the session; fewer if the
// session is shorter, nil if it does not exist yet.
func (s *Store) Recent(sessionID string, n int) []domain.ConversationTurn {
	e := s.get(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()

	start := len(e.turns) - n
	if n <= 0 || start < 0 {
		start = 0
	}
	if len(e.turns[start:]) == 0 {
		return nil
	}
	out := make([]domain.ConversationTurn, len(e.turns[start:]))
	copy(out, e.turns[start:])
	return out
}

// Len reports the number of turns recorded for the session.
func (s *Store) Len(sessionID string) int {
	e := s.get(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.turns)
}
