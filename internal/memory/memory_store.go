package memory

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   *SessionData
	state     *State
	expiresAt time.Time
}

// MemoryStore is an in-process Store with the same TTL semantics as
// RedisStore. Data does not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// entry returns the live entry for sessionID, dropping it if expired.
// Callers hold mu.
func (s *MemoryStore) entry(sessionID string) *memoryEntry {
	e, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.entries, sessionID)
		return nil
	}
	return e
}

func (s *MemoryStore) touch(sessionID string) *memoryEntry {
	e := s.entry(sessionID)
	if e == nil {
		e = &memoryEntry{}
		s.entries[sessionID] = e
	}
	e.expiresAt = s.now().Add(s.ttl)
	return e
}

func copySession(in *SessionData) *SessionData {
	out := *in
	out.Messages = append([]Message(nil), in.Messages...)
	return &out
}

func (s *MemoryStore) LoadSession(_ context.Context, sessionID string) (*SessionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.entry(sessionID); e != nil && e.session != nil {
		return copySession(e.session), nil
	}
	return newSession(sessionID, s.now()), nil
}

func (s *MemoryStore) SaveMessage(_ context.Context, sessionID, userID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(sessionID)
	if e.session == nil {
		e.session = newSession(sessionID, s.now())
	}
	appendMessage(e.session, userID, msg, s.now())
	return nil
}

func (s *MemoryStore) ClearSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) UpdateActivity(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry(sessionID) == nil {
		return nil
	}
	e := s.touch(sessionID)
	if e.session != nil {
		e.session.Metadata.LastActivity = s.now()
	}
	return nil
}

func (s *MemoryStore) LoadState(_ context.Context, sessionID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(sessionID)
	if e == nil || e.state == nil {
		return nil, nil
	}
	st := *e.state
	return &st, nil
}

func (s *MemoryStore) SaveState(_ context.Context, sessionID string, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := *state
	s.touch(sessionID).state = &st
	return nil
}

// Len reports how many live sessions are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id := range s.entries {
		if s.entry(id) != nil {
			n++
		}
	}
	return n
}
