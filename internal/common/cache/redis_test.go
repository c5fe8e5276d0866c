package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"codearena/internal/common/cache"
)

func newTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c, err := cache.NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	if err != nil {
		t.Fatalf("new redis cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestBasicOps(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get = %q, %v, want v", got, err)
	}

	// Missing keys are not an error.
	got, err = c.Get(ctx, "missing")
	if err != nil || got != "" {
		t.Fatalf("get missing = %q, %v, want empty and nil", got, err)
	}

	n, err := c.Exists(ctx, "k", "missing")
	if err != nil || n != 1 {
		t.Fatalf("exists = %d, %v, want 1", n, err)
	}

	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if srv.Exists("k") {
		t.Fatal("key still present after del")
	}
}

func TestSetNXGuardsDuplicates(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	fresh, err := c.SetNX(ctx, "scored:s1", "1", time.Minute)
	if err != nil || !fresh {
		t.Fatalf("first SetNX = %v, %v, want true", fresh, err)
	}
	fresh, err = c.SetNX(ctx, "scored:s1", "1", time.Minute)
	if err != nil || fresh {
		t.Fatalf("second SetNX = %v, %v, want false", fresh, err)
	}

	// After the TTL passes the guard opens again.
	srv.FastForward(2 * time.Minute)
	fresh, err = c.SetNX(ctx, "scored:s1", "1", time.Minute)
	if err != nil || !fresh {
		t.Fatalf("SetNX after expiry = %v, %v, want true", fresh, err)
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	sub, err := c.Subscribe(ctx, "leaderboard:updates")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	payload := `{"contest_id":"c1","leaderboard":[]}`
	if err := c.Publish(ctx, "leaderboard:updates", payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-sub.Messages():
		if got != payload {
			t.Fatalf("received %q, want the published payload", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestSubscriptionCloseEndsStream(t *testing.T) {
	c, _ := newTestCache(t)

	sub, err := c.Subscribe(context.Background(), "leaderboard:updates")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case _, ok := <-sub.Messages():
		if ok {
			t.Fatal("received a message after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message stream not closed")
	}
}
