package oauth

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis connects to TEST_REDIS_ADDR or skips the test.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("connecting to test redis: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisStateStoreSingleUse(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	store := NewRedisStateStore(rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tok, err := store.Issue(ctx)
	require.NoError(t, err)

	ttl, err := rdb.TTL(ctx, oauthStateKey(tok.Value)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	assert.True(t, store.Validate(ctx, tok.Value))
	assert.False(t, store.Validate(ctx, tok.Value))
	assert.False(t, store.Validate(ctx, "never-issued"))
}

func TestRedisStateStoreConcurrentValidate(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	store := NewRedisStateStore(rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tok, err := store.Issue(ctx)
	require.NoError(t, err)

	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Validate(ctx, tok.Value) {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}
