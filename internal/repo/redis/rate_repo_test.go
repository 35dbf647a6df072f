package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRateRepo(t *testing.T) *RateRepo {
	t.Helper()
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateRepo(client)
}

func TestIncrementWindowCountsWithinWindow(t *testing.T) {
	repo := newTestRateRepo(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, ttl, err := repo.IncrementWindow(ctx, "rate:votes:min:0xabc", time.Minute)
		if err != nil {
			t.Fatalf("IncrementWindow returned error: %v", err)
		}
		if count != want {
			t.Fatalf("count = %d, want %d", count, want)
		}
		if ttl <= 0 || ttl > time.Minute {
			t.Fatalf("ttl = %v, want within (0, 1m]", ttl)
		}
	}
}

func TestIncrementWindowRearmsLostTTL(t *testing.T) {
	repo := newTestRateRepo(t)
	ctx := context.Background()
	key := "rate:votes:min:0xabc"

	if _, _, err := repo.IncrementWindow(ctx, key, time.Minute); err != nil {
		t.Fatalf("IncrementWindow returned error: %v", err)
	}
	if err := repo.client.Persist(ctx, key).Err(); err != nil {
		t.Fatalf("persist key: %v", err)
	}

	_, ttl, err := repo.IncrementWindow(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("IncrementWindow returned error: %v", err)
	}
	if ttl <= 0 {
		t.Fatalf("ttl = %v, want re-armed window", ttl)
	}
}

func TestWindowStateMissingKey(t *testing.T) {
	repo := newTestRateRepo(t)

	count, ttl, err := repo.WindowState(context.Background(), "rate:votes:min:0xnobody")
	if err != nil {
		t.Fatalf("WindowState returned error: %v", err)
	}
	if count != 0 || ttl != 0 {
		t.Fatalf("state = (%d, %v), want (0, 0)", count, ttl)
	}
}
