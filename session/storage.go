package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrStorageUnavailable is an exported constant or variable used by the API client.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// Storage is the durable mirror of the live session: a single record written on
// every mutation and read once at process start. Load returns (nil, nil) when no
// record exists.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// RedisStorage persists the session record under a single Redis key.
//
//	Docs: docs/session.md
type RedisStorage struct {
	redis redis.UniversalClient
	key   string
}

// NewRedisStorage creates a [RedisStorage] backed by the given Redis client.
// key names the record; callers running multiple clients against one Redis
// instance must give each its own key.
func NewRedisStorage(client redis.UniversalClient, key string) *RedisStorage {
	if key == "" {
		key = "goclient:session"
	}
	return &RedisStorage{redis: client, key: key}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return data, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStorage) Save(ctx context.Context, data []byte) error {
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStorage) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}
