package storage

import (
	"context"
	"maps"
	"sync"

	"fintrack/internal/core"
)

// MemoryStore keeps ledgers and secrets in process memory. Values are
// copied in and out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	ledgers map[string]core.LedgerState
	secrets map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ledgers: make(map[string]core.LedgerState),
		secrets: make(map[string]string),
	}
}

func (s *MemoryStore) Load(_ context.Context, owner string) (core.LedgerState, error) {
	if owner == "" {
		return nil, core.ErrEmptyOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgers[owner].Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, owner string, state core.LedgerState) error {
	if owner == "" {
		return core.ErrEmptyOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[owner] = state.Clone()
	return nil
}

func (s *MemoryStore) LoadSecrets(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.secrets), nil
}

func (s *MemoryStore) SaveSecrets(_ context.Context, secrets map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets = maps.Clone(secrets)
	if s.secrets == nil {
		s.secrets = make(map[string]string)
	}
	return nil
}
