package mq_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"codearena/internal/common/mq"
)

func TestTokenLimiterBoundsInFlight(t *testing.T) {
	l := mq.NewTokenLimiter(2)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if l.Available() != 0 {
		t.Fatalf("available = %d, want 0", l.Available())
	}

	// A third acquire must block until a token is released.
	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(timeoutCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("over-capacity acquire = %v, want deadline exceeded", err)
	}

	l.Release()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestTokenLimiterReleaseNeverOverfills(t *testing.T) {
	l := mq.NewTokenLimiter(1)
	l.Release()
	l.Release()
	if l.Available() != 1 {
		t.Fatalf("available = %d, want capacity 1", l.Available())
	}
}

func TestTokenLimiterMinimumCapacity(t *testing.T) {
	l := mq.NewTokenLimiter(0)
	if l.Available() != 1 {
		t.Fatalf("available = %d, want 1 for non-positive sizes", l.Available())
	}
}
