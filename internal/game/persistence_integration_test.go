//go:build integration

package game

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, rdb.Ping(ctx).Err(), "redis is not reachable")
	return rdb
}

func TestRedisSessionStore_SaveLoadResume(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	store := NewRedisSessionStore(rdb, time.Hour)

	h := newHangman("CAT DOG", 6)
	start, err := h.Start(ctx)
	require.NoError(t, err)

	s := NewSession("redis_s1", start)
	s.Apply(1, 'T', Reply{State: "__T ___", RemainingGuesses: 6, Status: StatusAlive})
	require.NoError(t, store.Save(ctx, s.Snapshot()))

	snap, ok, err := store.Load(ctx, "redis_s1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "__T ___", snap.State)
	require.Equal(t, Letters("T"), snap.Slots[1].Excluded)

	ttl, err := rdb.TTL(ctx, "session:redis_s1:snapshot").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	_, ok, err = store.Load(ctx, "unknown")
	require.NoError(t, err)
	require.False(t, ok)

	// A fresh player picks the session up from Redis. The hangman already
	// knows about T only through the stored state, so replay it first.
	_, err = h.Guess(ctx, "tok", 'T')
	require.NoError(t, err)

	p := newTestPlayer([]string{"CAT", "DOG", "COT", "HAT"}, h, Options{Sessions: store})
	res, err := p.Resume(ctx, "redis_s1")
	require.NoError(t, err)
	require.Equal(t, StatusWon, res.Status)
	require.Equal(t, "CAT DOG", res.State)
}
