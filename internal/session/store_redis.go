package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-questions/internal/browse"
	"github.com/p-n-ai/pai-questions/internal/platform/cache"
)

// RedisStore keeps session state in Redis/Dragonfly with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. Each save extends the session
// lifetime to ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	id := generateID()
	if err := s.put(ctx, id, browse.State{}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (browse.State, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return browse.State{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return browse.State{}, fmt.Errorf("get session: %w", err)
	}

	var st browse.State
	if err := json.Unmarshal(data, &st); err != nil {
		return browse.State{}, fmt.Errorf("decode session: %w", err)
	}
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state browse.State) error {
	n, err := s.client.Exists(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.put(ctx, id, state)
}

func (s *RedisStore) put(ctx context.Context, id string, state browse.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func key(id string) string {
	return cache.Key("session", id)
}
