package session

import (
	"context"
	"sync"

	"sibubur/terminal/internal/domain"
)

// MemoryStore is the test backend. It mirrors FileStore semantics without
// touching the filesystem.
type MemoryStore struct {
	mu            sync.RWMutex
	token         string
	user          domain.User
	hasSession    bool
	printSettings *PrintSettings
	lockPIN       string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveSession(_ context.Context, token string, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.hasSession = token != ""
	return nil
}

func (s *MemoryStore) LoadSession(_ context.Context) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasSession {
		return Session{}, ErrAbsent
	}
	return Session{Token: s.token, User: s.user}, nil
}

func (s *MemoryStore) ClearSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = domain.User{}
	s.hasSession = false
	return nil
}

func (s *MemoryStore) SavePrintSettings(_ context.Context, settings PrintSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printSettings = &settings
	return nil
}

func (s *MemoryStore) LoadPrintSettings(_ context.Context) (PrintSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.printSettings == nil {
		return DefaultPrintSettings(), nil
	}
	return *s.printSettings, nil
}

func (s *MemoryStore) SaveLockPIN(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockPIN = hash
	return nil
}

func (s *MemoryStore) LoadLockPIN(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lockPIN == "" {
		return "", ErrAbsent
	}
	return s.lockPIN, nil
}
