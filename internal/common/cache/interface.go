package cache

import (
	"context"
	"time"
)

// Cache is the unified interface for cache and broadcast operations.
// The abstraction allows swapping the Redis client for an in-memory
// implementation in tests without touching business logic.
type Cache interface {
	BasicOps
	PubSubOps

	// Ping verifies the cache connection is alive.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// BasicOps defines key-value operations.
type BasicOps interface {
	// Get retrieves the value for the given key. A missing key yields
	// an empty string and a nil error.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a key-value pair. A zero ttl means no expiration.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetNX sets the value only if the key does not exist. Returns
	// true if the key was set.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Del deletes one or more keys.
	Del(ctx context.Context, keys ...string) error

	// Exists returns the number of given keys that exist.
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Incr increments the integer value of a key by 1.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets a timeout on a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// PubSubOps defines best-effort broadcast operations.
type PubSubOps interface {
	// Publish sends a payload on a broadcast channel. Delivery is
	// fire-and-forget: subscribers that are not listening miss it.
	Publish(ctx context.Context, channel string, payload interface{}) error

	// Subscribe opens a subscription on a broadcast channel. The
	// returned subscription must be closed by the caller.
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription is one open broadcast subscription.
type Subscription interface {
	// Messages returns the stream of payloads. The channel is closed
	// when the subscription closes.
	Messages() <-chan string

	// Close terminates the subscription.
	Close() error
}
