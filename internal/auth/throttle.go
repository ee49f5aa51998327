package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle limits repeated failed logins from one client.
type LoginThrottle interface {
	// Allow reports whether key may attempt a login, and if not, how long to wait.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// NoopThrottle never blocks.
type NoopThrottle struct{}

func (NoopThrottle) Allow(context.Context, string) (bool, time.Duration, error) { return true, 0, nil }
func (NoopThrottle) Fail(context.Context, string) error { return nil }
func (NoopThrottle) Reset(context.Context, string) error { return nil }

// RedisThrottle counts failures in Redis with a fixed window per key.
type RedisThrottle struct {
	client      redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

// NewRedisThrottle builds a throttle allowing maxAttempts failures per window.
func NewRedisThrottle(client redis.Cmdable, maxAttempts int, window time.Duration) *RedisThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisThrottle{client: client, maxAttempts: int64(maxAttempts), window: window}
}

func (t *RedisThrottle) key(k string) string {
	return fmt.Sprintf("login:failures:%s", k)
}

func (t *RedisThrottle) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	count, err := t.client.Get(ctx, t.key(key)).Int64()
	if err == redis.Nil {
		return true, 0, nil
	}
	if err != nil {
		return true, 0, err
	}
	if count < t.maxAttempts {
		return true, 0, nil
	}
	ttl, err := t.client.TTL(ctx, t.key(key)).Result()
	if err != nil || ttl < 0 {
		ttl = t.window
	}
	return false, ttl, nil
}

func (t *RedisThrottle) Fail(ctx context.Context, key string) error {
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, t.key(key))
		pipe.ExpireNX(ctx, t.key(key), t.window)
		return nil
	})
	return err
}

func (t *RedisThrottle) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.key(key)).Err()
}
