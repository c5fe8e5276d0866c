package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"codearena/internal/common/mq"
	"codearena/internal/judge/model"
	"codearena/internal/judge/repository"
	appErr "codearena/pkg/errors"
)

type capturedPublish struct {
	topic string
	msg   *mq.Message
}

type fakeProducer struct {
	published []capturedPublish
	err       error
}

func (f *fakeProducer) Publish(ctx context.Context, topic string, msg *mq.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, capturedPublish{topic: topic, msg: msg})
	return nil
}

func validScoringMessage() *model.ScoringMessage {
	return &model.ScoringMessage{
		SubmissionID:    "s1",
		ContestID:       "c1",
		UserID:          "u1",
		ProblemID:       "p1",
		TestCasesPassed: 3,
		TotalTestCases:  3,
		ExecutionTimeMs: 42,
		ProblemPoints:   100,
		TimeLimitMs:     2000,
	}
}

func TestPublishScoringMessage(t *testing.T) {
	producer := &fakeProducer{}
	pub := repository.NewScoringPublisher(producer, "contest.scoring")

	if err := pub.Publish(context.Background(), validScoringMessage()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(producer.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(producer.published))
	}
	got := producer.published[0]
	if got.topic != "contest.scoring" {
		t.Fatalf("topic = %q, want contest.scoring", got.topic)
	}
	if got.msg.ID == "" {
		t.Fatal("message has no ID")
	}
	if got.msg.Headers["submission-id"] != "s1" {
		t.Fatalf("headers = %v, want submission-id header", got.msg.Headers)
	}

	var decoded model.ScoringMessage
	if err := json.Unmarshal(got.msg.Body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.SubmissionID != "s1" || decoded.ProblemPoints != 100 {
		t.Fatalf("decoded body = %+v, want the scoring message", decoded)
	}
}

func TestPublishRejectsInvalidMessages(t *testing.T) {
	producer := &fakeProducer{}
	pub := repository.NewScoringPublisher(producer, "contest.scoring")

	msg := validScoringMessage()
	msg.ContestID = ""
	if err := pub.Publish(context.Background(), msg); !appErr.Is(err, appErr.ValidationFailed) {
		t.Fatalf("got %v, want ValidationFailed", err)
	}
	if len(producer.published) != 0 {
		t.Fatal("invalid message reached the producer")
	}
}

func TestPublishWrapsProducerFailures(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unreachable")}
	pub := repository.NewScoringPublisher(producer, "contest.scoring")

	err := pub.Publish(context.Background(), validScoringMessage())
	if !appErr.Is(err, appErr.QueuePublishFailed) {
		t.Fatalf("got %v, want QueuePublishFailed", err)
	}
}
