// Package redis is the Redis-backed checkpoint store. Each thread is one
// JSON value under a prefixed key, with an optional TTL so abandoned
// conversations eventually expire.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

const keyPrefix = "agent:thread:"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a Redis checkpoint store and verifies connectivity.
// ttl <= 0 disables expiration.
func NewStore(ctx context.Context, addr, password string, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &Store{rdb: rdb, ttl: ttl}, nil
}

func key(id domain.ThreadID) string {
	return keyPrefix + string(id)
}

func (s *Store) Save(ctx context.Context, id domain.ThreadID, state *domain.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	if err := s.rdb.Set(ctx, key(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id domain.ThreadID) (*domain.State, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &state, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}
