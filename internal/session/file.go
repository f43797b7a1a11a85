package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"sibubur/terminal/internal/domain"
)

// FileStore keeps each entry in its own file under a state directory.
// It is the default backend for a single-terminal deployment.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) write(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), payload, 0o600)
}

func (s *FileStore) read(key string, dest any) error {
	payload, err := os.ReadFile(s.path(key))
	if err != nil {
		return ErrAbsent
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return ErrAbsent
	}
	return nil
}

func (s *FileStore) remove(key string) {
	_ = os.Remove(s.path(key))
}

func (s *FileStore) SaveSession(_ context.Context, token string, user domain.User) error {
	if err := s.write(keyToken, token); err != nil {
		return err
	}
	return s.write(keyUser, user)
}

func (s *FileStore) LoadSession(_ context.Context) (Session, error) {
	var token string
	if err := s.read(keyToken, &token); err != nil {
		return Session{}, ErrAbsent
	}
	if strings.TrimSpace(token) == "" {
		return Session{}, ErrAbsent
	}
	var user domain.User
	if err := s.read(keyUser, &user); err != nil {
		return Session{}, ErrAbsent
	}
	return Session{Token: token, User: user}, nil
}

func (s *FileStore) ClearSession(_ context.Context) error {
	s.remove(keyToken)
	s.remove(keyUser)
	return nil
}

func (s *FileStore) SavePrintSettings(_ context.Context, settings PrintSettings) error {
	return s.write(keyPrintSettings, settings)
}

func (s *FileStore) LoadPrintSettings(_ context.Context) (PrintSettings, error) {
	settings := DefaultPrintSettings()
	if err := s.read(keyPrintSettings, &settings); err != nil {
		return DefaultPrintSettings(), nil
	}
	return settings, nil
}

func (s *FileStore) SaveLockPIN(_ context.Context, hash string) error {
	return s.write(keyLockPIN, hash)
}

func (s *FileStore) LoadLockPIN(_ context.Context) (string, error) {
	var hash string
	if err := s.read(keyLockPIN, &hash); err != nil {
		return "", ErrAbsent
	}
	if hash == "" {
		return "", ErrAbsent
	}
	return hash, nil
}
