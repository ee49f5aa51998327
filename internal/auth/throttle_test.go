package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopThrottle(t *testing.T) {
	var th LoginThrottle = NoopThrottle{}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, th.Fail(ctx, "1.2.3.4"))
	}
	allowed, wait, err := th.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, wait)
}

// Runs against a real server when REDIS_TEST_ADDR is set.
func TestRedisThrottle(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	th := NewRedisThrottle(client, 3, time.Minute)
	key := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = th.Reset(ctx, key) })

	for i := 0; i < 3; i++ {
		allowed, _, err := th.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i)
		require.NoError(t, th.Fail(ctx, key))
	}

	allowed, wait, err := th.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Minute)

	ttl, err := client.TTL(ctx, "login:failures:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, th.Reset(ctx, key))
	allowed, _, err = th.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, allowed)
}
