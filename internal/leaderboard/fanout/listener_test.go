package fanout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"codearena/internal/common/cache"
	"codearena/internal/leaderboard/fanout"
)

type channelSubscription struct {
	messages chan string
}

func (s *channelSubscription) Messages() <-chan string { return s.messages }

func (s *channelSubscription) Close() error { return nil }

// subscribeOnlyCache implements just enough of cache.Cache for the
// listener; everything but Subscribe is unused.
type subscribeOnlyCache struct {
	cache.Cache
	sub *channelSubscription
}

func (c *subscribeOnlyCache) Subscribe(ctx context.Context, channel string) (cache.Subscription, error) {
	return c.sub, nil
}

func TestListenerForwardsPayloadsByContest(t *testing.T) {
	hub := fanout.NewHub()
	defer hub.Close()
	srv := viewerServer(t, hub)

	conn := dialViewer(t, srv, "c1")
	waitForViewers(t, hub, "c1", 1)

	sub := &channelSubscription{messages: make(chan string, 4)}
	listener := fanout.NewListener(&subscribeOnlyCache{sub: sub}, "leaderboard:updates", hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	rows := `[{"rank":1,"user_id":"u1"}]`
	sub.messages <- `not json`
	sub.messages <- `{"no_contest":true}`
	sub.messages <- `{"contest_id":"c1"}`
	sub.messages <- `{"contest_id":"c1","leaderboard":` + rows + `}`

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read forwarded payload: %v", err)
	}
	if string(got) != rows {
		t.Fatalf("viewer received %q, want the snapshot rows %q", got, rows)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("listener stopped with %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancellation")
	}
}
