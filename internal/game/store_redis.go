package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps session snapshots as JSON with a TTL, so finished
// sessions expire on their own.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) key(sessionID string) string {
	return fmt.Sprintf("session:%s:snapshot", sessionID)
}

func (s *RedisSessionStore) Save(ctx context.Context, snap SessionSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(snap.ID), b, s.ttl).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (SessionSnapshot, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionSnapshot{}, false, nil
	}
	if err != nil {
		return SessionSnapshot{}, false, err
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return SessionSnapshot{}, false, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	return snap, true, nil
}
