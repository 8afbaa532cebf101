package session

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewMemoryStore builds a process-local store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.sessions[sessionID][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *memoryStore) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.sessions[sessionID]
	if !ok {
		entries = make(map[string]string)
		s.sessions[sessionID] = entries
	}
	entries[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(s.sessions, sessionID)
	}
	return nil
}
