package fanout

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"codearena/internal/common/cache"
	"codearena/pkg/utils/logger"
)

// Listener subscribes to the leaderboard broadcast channel and forwards
// the leaderboard rows of each message to the hub unchanged, so viewers
// see exactly the snapshot the scoring worker published.
type Listener struct {
	cache   cache.Cache
	channel string
	hub     *Hub
}

// NewListener creates a listener on the given pub/sub channel.
func NewListener(c cache.Cache, channel string, hub *Hub) *Listener {
	return &Listener{cache: c, channel: channel, hub: hub}
}

// Run consumes broadcast messages until the context is canceled.
func (l *Listener) Run(ctx context.Context) error {
	sub, err := l.cache.Subscribe(ctx, l.channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	logger.Info(ctx, "leaderboard listener started", zap.String("channel", l.channel))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			l.dispatch(ctx, payload)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, payload string) {
	var envelope struct {
		ContestID   string          `json:"contest_id"`
		Leaderboard json.RawMessage `json:"leaderboard"`
	}
	err := json.Unmarshal([]byte(payload), &envelope)
	if err != nil || envelope.ContestID == "" || len(envelope.Leaderboard) == 0 {
		logger.Warn(ctx, "dropping malformed broadcast payload", zap.Error(err))
		return
	}
	// Viewers get the snapshot rows only; the contest id is implied by
	// the endpoint they connected to.
	l.hub.Broadcast(ctx, envelope.ContestID, envelope.Leaderboard)
}
