package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"codearena/internal/common/mq"
	"codearena/internal/judge/model"
	appErr "codearena/pkg/errors"
)

// ScoringPublisher hands judged submissions to the scoring pipeline.
type ScoringPublisher struct {
	producer mq.Producer
	topic    string
}

// NewScoringPublisher creates a publisher for the scoring topic.
func NewScoringPublisher(producer mq.Producer, topic string) *ScoringPublisher {
	return &ScoringPublisher{producer: producer, topic: topic}
}

// Publish sends one scoring message. The broker acknowledges before this
// returns, so a crash afterwards can only cause redelivery, never loss.
func (p *ScoringPublisher) Publish(ctx context.Context, msg *model.ScoringMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return appErr.Wrapf(err, appErr.QueuePublishFailed, "marshal scoring message failed")
	}
	qm := mq.NewMessage(body)
	qm.ID = uuid.NewString()
	qm.SetHeader("submission-id", msg.SubmissionID)
	if err := p.producer.Publish(ctx, p.topic, qm); err != nil {
		return appErr.Wrapf(err, appErr.QueuePublishFailed, "publish scoring message failed")
	}
	return nil
}
