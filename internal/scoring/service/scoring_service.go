// Package service implements the scoring worker's message handling.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codearena/internal/common/cache"
	"codearena/internal/common/metrics"
	"codearena/internal/common/mq"
	judgemodel "codearena/internal/judge/model"
	"codearena/internal/scoring/model"
	appErr "codearena/pkg/errors"
	"codearena/pkg/utils/logger"
)

// BroadcastChannel is the pub/sub channel carrying leaderboard updates.
const BroadcastChannel = "leaderboard:updates"

// StandingStore is the persistence surface the scoring service needs.
type StandingStore interface {
	ApplyDelta(ctx context.Context, delta model.StandingDelta) error
	RecalculateRanks(ctx context.Context, contestID string) error
	ListByContest(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error)
}

// Config holds scoring service settings.
type Config struct {
	// DedupeTTL enables the idempotency guard when positive: a scoring
	// message whose submission was already scored within the window is
	// dropped. Off by default because queue delivery is at-least-once
	// and double counting is rare enough to fix by rank recompute.
	DedupeTTL time.Duration `yaml:"dedupe_ttl"`
}

// ScoringService consumes scoring messages, updates standings and
// publishes fresh leaderboard snapshots.
type ScoringService struct {
	cfg   Config
	store StandingStore
	cache cache.Cache
}

// NewScoringService creates the service. The cache is required since the
// broadcast channel rides on it.
func NewScoringService(cfg Config, store StandingStore, c cache.Cache) (*ScoringService, error) {
	if store == nil {
		return nil, fmt.Errorf("standing store is required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache is required")
	}
	return &ScoringService{cfg: cfg, store: store, cache: c}, nil
}

// HandleMessage processes one scoring message. Malformed payloads are
// logged and dropped. Returning an error leaves the message for
// redelivery, which is safe before the upsert and at worst re-broadcasts
// after it.
func (s *ScoringService) HandleMessage(ctx context.Context, m *mq.Message) error {
	var msg judgemodel.ScoringMessage
	if err := json.Unmarshal(m.Body, &msg); err != nil {
		logger.Warn(ctx, "dropping malformed scoring message", zap.Error(err))
		return nil
	}
	if err := msg.Validate(); err != nil {
		logger.Warn(ctx, "dropping invalid scoring message",
			zap.String("submission_id", msg.SubmissionID), zap.Error(err))
		return nil
	}

	if s.cfg.DedupeTTL > 0 {
		fresh, err := s.cache.SetNX(ctx, "scored:"+msg.SubmissionID, "1", s.cfg.DedupeTTL)
		if err != nil {
			logger.Warn(ctx, "idempotency guard unavailable, scoring anyway",
				zap.String("submission_id", msg.SubmissionID), zap.Error(err))
		} else if !fresh {
			logger.Info(ctx, "submission already scored, dropping duplicate",
				zap.String("submission_id", msg.SubmissionID))
			return nil
		}
	}

	score := Score(msg.TestCasesPassed, msg.TotalTestCases,
		msg.ExecutionTimeMs, msg.ProblemPoints, msg.TimeLimitMs)
	delta := model.StandingDelta{
		ContestID:        msg.ContestID,
		UserID:           msg.UserID,
		Score:            score,
		Accepted:         msg.TotalTestCases > 0 && msg.TestCasesPassed == msg.TotalTestCases,
		LastSubmissionAt: time.Now().UTC(),
	}
	if err := s.store.ApplyDelta(ctx, delta); err != nil {
		return err
	}
	if err := s.store.RecalculateRanks(ctx, msg.ContestID); err != nil {
		return err
	}
	metrics.ScoringEvents.Inc()

	logger.Info(ctx, "submission scored",
		zap.String("submission_id", msg.SubmissionID),
		zap.String("contest_id", msg.ContestID),
		zap.Float64("score", score))

	return s.Broadcast(ctx, msg.ContestID)
}

// Broadcast publishes the current leaderboard of a contest on the
// broadcast channel.
func (s *ScoringService) Broadcast(ctx context.Context, contestID string) error {
	entries, err := s.store.ListByContest(ctx, contestID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(BroadcastMessage{
		ContestID:   contestID,
		Leaderboard: entries,
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.BroadcastFailed, "marshal leaderboard broadcast failed")
	}
	if err := s.cache.Publish(ctx, BroadcastChannel, string(payload)); err != nil {
		return appErr.Wrapf(err, appErr.BroadcastFailed, "publish leaderboard broadcast failed")
	}
	metrics.LeaderboardBroadcasts.Inc()
	return nil
}

// BroadcastMessage is the pub/sub payload; viewers receive its
// Leaderboard rows verbatim.
type BroadcastMessage struct {
	ContestID   string                   `json:"contest_id"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}
