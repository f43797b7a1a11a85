package session

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"sibubur/terminal/internal/domain"
)

// RedisStore backs the session with a shared redis instance so several
// counters can hand a shift between physical terminals. Keys are namespaced
// per terminal.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(addr string, password string, db int, terminalID string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStore{client: client, prefix: "sibubur:terminal:" + terminalID + ":"}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, payload, 0).Err()
}

func (s *RedisStore) get(ctx context.Context, key string, dest any) error {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return ErrAbsent
	}
	if err != nil {
		return ErrAbsent
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return ErrAbsent
	}
	return nil
}

func (s *RedisStore) SaveSession(ctx context.Context, token string, user domain.User) error {
	if err := s.set(ctx, keyToken, token); err != nil {
		return err
	}
	return s.set(ctx, keyUser, user)
}

func (s *RedisStore) LoadSession(ctx context.Context) (Session, error) {
	var token string
	if err := s.get(ctx, keyToken, &token); err != nil {
		return Session{}, ErrAbsent
	}
	if token == "" {
		return Session{}, ErrAbsent
	}
	var user domain.User
	if err := s.get(ctx, keyUser, &user); err != nil {
		return Session{}, ErrAbsent
	}
	return Session{Token: token, User: user}, nil
}

func (s *RedisStore) ClearSession(ctx context.Context) error {
	_ = s.client.Del(ctx, s.prefix+keyToken, s.prefix+keyUser).Err()
	return nil
}

func (s *RedisStore) SavePrintSettings(ctx context.Context, settings PrintSettings) error {
	return s.set(ctx, keyPrintSettings, settings)
}

func (s *RedisStore) LoadPrintSettings(ctx context.Context) (PrintSettings, error) {
	settings := DefaultPrintSettings()
	if err := s.get(ctx, keyPrintSettings, &settings); err != nil {
		return DefaultPrintSettings(), nil
	}
	return settings, nil
}

func (s *RedisStore) SaveLockPIN(ctx context.Context, hash string) error {
	return s.set(ctx, keyLockPIN, hash)
}

func (s *RedisStore) LoadLockPIN(ctx context.Context) (string, error) {
	var hash string
	if err := s.get(ctx, keyLockPIN, &hash); err != nil {
		return "", ErrAbsent
	}
	if hash == "" {
		return "", ErrAbsent
	}
	return hash, nil
}
