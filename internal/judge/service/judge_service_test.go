package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"codearena/internal/common/mq"
	"codearena/internal/judge/model"
	"codearena/internal/judge/sandbox"
	"codearena/internal/judge/service"
)

type fakeStore struct {
	created  []*model.Submission
	verdicts []*model.Submission
	results  [][]model.TestCaseResult
	saveErr  error
}

func (f *fakeStore) CreateRunning(ctx context.Context, sub *model.Submission) error {
	// Snapshot the submission as it was at call time; the service reuses
	// the same struct when it later applies the verdict.
	snapshot := *sub
	f.created = append(f.created, &snapshot)
	return nil
}

func (f *fakeStore) SaveVerdict(ctx context.Context, sub *model.Submission, results []model.TestCaseResult) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.verdicts = append(f.verdicts, sub)
	f.results = append(f.results, results)
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) ListResults(ctx context.Context, submissionID string) ([]model.TestCaseResult, error) {
	return nil, nil
}

func (f *fakeStore) ReportStatus(ctx context.Context, submissionID string, status model.SubmissionStatus) error {
	return nil
}

type fakeEvaluator struct {
	eval sandbox.Evaluation
	err  error
	reqs []sandbox.EvalRequest
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, req sandbox.EvalRequest) (sandbox.Evaluation, error) {
	f.reqs = append(f.reqs, req)
	return f.eval, f.err
}

func (f *fakeEvaluator) Kill(ctx context.Context, submissionID string) error { return nil }

type fakeSink struct {
	published []*model.ScoringMessage
}

func (f *fakeSink) Publish(ctx context.Context, msg *model.ScoringMessage) error {
	f.published = append(f.published, msg)
	return nil
}

type inlineProvider struct{}

func (inlineProvider) Resolve(ctx context.Context, msg *model.SubmissionMessage) ([]model.TestCasePayload, error) {
	return msg.TestCases, nil
}

func newService(t *testing.T, store *fakeStore, eval *fakeEvaluator, sink *fakeSink) *service.JudgeService {
	t.Helper()
	svc, err := service.NewJudgeService(service.Config{WorkRoot: t.TempDir()},
		eval, inlineProvider{}, store, sink)
	if err != nil {
		t.Fatalf("new judge service: %v", err)
	}
	return svc
}

func submissionMessage(t *testing.T, msg model.SubmissionMessage) *mq.Message {
	t.Helper()
	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal submission message: %v", err)
	}
	return mq.NewMessage(body)
}

func contestSubmission() model.SubmissionMessage {
	return model.SubmissionMessage{
		SubmissionID:  "s1",
		ProblemID:     "p1",
		ContestID:     "c1",
		UserID:        "u1",
		Code:          "print(1)",
		Language:      "python",
		TimeLimitMs:   2000,
		ProblemPoints: 100,
		TestCases: []model.TestCasePayload{
			{InputData: "", ExpectedOutput: "1"},
		},
	}
}

func TestHandleMessagePublishesScoring(t *testing.T) {
	store := &fakeStore{}
	eval := &fakeEvaluator{eval: sandbox.Evaluation{
		Status:          model.StatusAccepted,
		TestCasesPassed: 1,
		TotalTestCases:  1,
		MeanTimeMs:      42,
		Tests: []model.TestCaseResult{
			{SubmissionID: "s1", Index: 0, Status: model.TestCasePassed},
		},
	}}
	sink := &fakeSink{}
	svc := newService(t, store, eval, sink)

	if err := svc.HandleMessage(context.Background(), submissionMessage(t, contestSubmission())); err != nil {
		t.Fatalf("handle message: %v", err)
	}

	if len(store.created) != 1 || store.created[0].Status != model.StatusRunning {
		t.Fatalf("submission not recorded as running: %+v", store.created)
	}
	if len(store.verdicts) != 1 || store.verdicts[0].Status != model.StatusAccepted {
		t.Fatalf("verdict not saved: %+v", store.verdicts)
	}
	// 1/1 passed in 42ms of a 2000ms limit: 100 points plus the speed bonus.
	if store.verdicts[0].Score != 109.58 {
		t.Fatalf("persisted score = %v, want 109.58", store.verdicts[0].Score)
	}
	if len(sink.published) != 1 {
		t.Fatalf("got %d scoring messages, want 1", len(sink.published))
	}
	scored := sink.published[0]
	if scored.ContestID != "c1" || scored.UserID != "u1" {
		t.Fatalf("scoring routed to %s/%s, want c1/u1", scored.ContestID, scored.UserID)
	}
	if scored.ExecutionTimeMs != 42 || scored.ProblemPoints != 100 || scored.TimeLimitMs != 2000 {
		t.Fatalf("scoring message carries %+v, want evaluation aggregates", scored)
	}
}

func TestHandleMessageSkipsScoringWithoutContest(t *testing.T) {
	store := &fakeStore{}
	eval := &fakeEvaluator{eval: sandbox.Evaluation{
		Status:         model.StatusWrongAnswer,
		TotalTestCases: 1,
		Tests: []model.TestCaseResult{
			{SubmissionID: "s1", Index: 0, Status: model.TestCaseFailed},
		},
	}}
	sink := &fakeSink{}
	svc := newService(t, store, eval, sink)

	msg := contestSubmission()
	msg.ContestID = ""
	msg.UserID = ""
	if err := svc.HandleMessage(context.Background(), submissionMessage(t, msg)); err != nil {
		t.Fatalf("handle message: %v", err)
	}

	if len(store.verdicts) != 1 {
		t.Fatalf("verdict not saved for practice submission: %+v", store.verdicts)
	}
	if len(sink.published) != 0 {
		t.Fatalf("practice submission published %d scoring messages, want 0", len(sink.published))
	}
}

func TestHandleMessageDropsMalformedPayloads(t *testing.T) {
	store := &fakeStore{}
	eval := &fakeEvaluator{}
	svc := newService(t, store, eval, &fakeSink{})

	if err := svc.HandleMessage(context.Background(), mq.NewMessage([]byte("{oops"))); err != nil {
		t.Fatalf("malformed payload should be acknowledged, got %v", err)
	}
	if err := svc.HandleMessage(context.Background(), submissionMessage(t, model.SubmissionMessage{
		SubmissionID: "s1",
	})); err != nil {
		t.Fatalf("invalid payload should be acknowledged, got %v", err)
	}
	if len(eval.reqs) != 0 || len(store.created) != 0 {
		t.Fatal("dropped payloads must not reach the sandbox or the store")
	}
}

func TestHandleMessageSandboxFailureYieldsTerminalVerdict(t *testing.T) {
	store := &fakeStore{}
	eval := &fakeEvaluator{err: errors.New("cgroup hierarchy missing")}
	sink := &fakeSink{}
	svc := newService(t, store, eval, sink)

	if err := svc.HandleMessage(context.Background(), submissionMessage(t, contestSubmission())); err != nil {
		t.Fatalf("sandbox failure should not trigger redelivery, got %v", err)
	}

	if len(store.verdicts) != 1 {
		t.Fatalf("got %d verdicts, want 1 synthetic verdict", len(store.verdicts))
	}
	if store.verdicts[0].Status != model.StatusRuntimeError {
		t.Fatalf("synthetic verdict status = %s, want %s", store.verdicts[0].Status, model.StatusRuntimeError)
	}
	results := store.results[0]
	if len(results) != 1 {
		t.Fatalf("got %d synthetic results, want one per test case", len(results))
	}
	if results[0].Status != model.TestCaseError ||
		!strings.Contains(results[0].ErrorDetail, "sandbox unavailable") {
		t.Fatalf("synthetic result = %+v, want errored with sandbox detail", results[0])
	}
	if !strings.Contains(store.verdicts[0].ErrorMessage, "sandbox unavailable") {
		t.Fatalf("persisted error = %q, want the sandbox failure cause", store.verdicts[0].ErrorMessage)
	}
	if store.verdicts[0].Score != 0 {
		t.Fatalf("persisted score = %v, want 0", store.verdicts[0].Score)
	}
	if len(sink.published) != 1 || sink.published[0].TestCasesPassed != 0 {
		t.Fatalf("synthetic verdict should still be scored with zero passes, got %+v", sink.published)
	}
}
