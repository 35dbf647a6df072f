package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateRepo backs the vote throttle with fixed Redis windows. Each
// window is a counter keyed per wallet that expires when the window
// closes, so abandoned counters clean themselves up.
type RateRepo struct {
	client *goredis.Client
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{client: client}
}

// IncrementWindow bumps the counter under key, arming the window TTL
// on first use. ExpireNX also re-arms a counter that somehow lost its
// TTL, so a stray key cannot throttle a wallet forever.
func (r *RateRepo) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" || window <= 0 {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("increment vote window: %w", err)
	}
	if err := r.client.ExpireNX(ctx, key, window).Err(); err != nil {
		return 0, 0, fmt.Errorf("arm vote window ttl: %w", err)
	}

	ttl, err := r.windowTTL(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	return count, ttl, nil
}

// WindowState reads a window without consuming from it. A missing key
// means the wallet has no votes in the current window.
func (r *RateRepo) WindowState(ctx context.Context, key string) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return 0, 0, fmt.Errorf("rate key is required")
	}

	count, err := r.client.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read vote window: %w", err)
	}

	ttl, err := r.windowTTL(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	return count, ttl, nil
}

func (r *RateRepo) windowTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("read vote window ttl: %w", err)
	}
	// TTL reports negative durations for missing keys and keys
	// without expiry; callers treat both as a closed window.
	if ttl < 0 {
		ttl = 0
	}
	return ttl, nil
}
