// Package service implements the execution worker's message handling.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codearena/internal/common/metrics"
	"codearena/internal/common/mq"
	"codearena/internal/judge/model"
	"codearena/internal/judge/sandbox"
	"codearena/internal/judge/testcase"
	scoring "codearena/internal/scoring/service"
	appErr "codearena/pkg/errors"
	"codearena/pkg/utils/logger"
)

// SubmissionStore is the persistence surface the judge service needs.
type SubmissionStore interface {
	CreateRunning(ctx context.Context, sub *model.Submission) error
	SaveVerdict(ctx context.Context, sub *model.Submission, results []model.TestCaseResult) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	ListResults(ctx context.Context, submissionID string) ([]model.TestCaseResult, error)
	ReportStatus(ctx context.Context, submissionID string, status model.SubmissionStatus) error
}

// ScoringSink receives scoring messages for judged submissions.
type ScoringSink interface {
	Publish(ctx context.Context, msg *model.ScoringMessage) error
}

// Config holds judge service settings.
type Config struct {
	// WorkRoot is the host directory for per-submission sandbox workspaces.
	WorkRoot string `yaml:"work_root"`
}

// JudgeService consumes submission messages, runs them in the sandbox and
// forwards outcomes to the scoring pipeline.
type JudgeService struct {
	cfg       Config
	evaluator sandbox.Evaluator
	testcases testcase.Provider
	store     SubmissionStore
	scoring   ScoringSink
}

// NewJudgeService creates the service. All dependencies are required.
func NewJudgeService(cfg Config, evaluator sandbox.Evaluator, provider testcase.Provider, store SubmissionStore, scoring ScoringSink) (*JudgeService, error) {
	if cfg.WorkRoot == "" {
		return nil, fmt.Errorf("work root is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("test case provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("submission store is required")
	}
	if scoring == nil {
		return nil, fmt.Errorf("scoring sink is required")
	}
	return &JudgeService{
		cfg:       cfg,
		evaluator: evaluator,
		testcases: provider,
		store:     store,
		scoring:   scoring,
	}, nil
}

// HandleMessage processes one submission message. Malformed payloads are
// logged and dropped; returning nil acknowledges the message. Errors are
// returned only for transient infrastructure failures where redelivery
// can succeed.
func (s *JudgeService) HandleMessage(ctx context.Context, m *mq.Message) error {
	var msg model.SubmissionMessage
	if err := json.Unmarshal(m.Body, &msg); err != nil {
		logger.Warn(ctx, "dropping malformed submission message", zap.Error(err))
		return nil
	}
	if err := msg.Validate(); err != nil {
		logger.Warn(ctx, "dropping invalid submission message",
			zap.String("submission_id", msg.SubmissionID), zap.Error(err))
		return nil
	}

	tests, err := s.testcases.Resolve(ctx, &msg)
	if err != nil {
		if appErr.Is(err, appErr.TestCasesMissing) {
			logger.Warn(ctx, "dropping submission without test cases",
				zap.String("submission_id", msg.SubmissionID), zap.Error(err))
			return nil
		}
		return err
	}

	sub := buildSubmission(&msg, len(tests))
	if err := s.store.CreateRunning(ctx, sub); err != nil {
		return err
	}

	eval, evalErr := s.evaluator.Evaluate(ctx, sandbox.EvalRequest{
		SubmissionID:  msg.SubmissionID,
		LanguageID:    msg.Language,
		SourceCode:    msg.Code,
		WorkRoot:      s.cfg.WorkRoot,
		TimeLimitMs:   msg.TimeLimitMs,
		MemoryLimitMB: msg.MemoryLimitMB,
		Tests:         toSandboxTests(tests),
	})
	if evalErr != nil {
		// The submission still gets a terminal verdict. Redelivering it
		// to a sandbox that is down would stall the whole partition.
		logger.Error(ctx, "sandbox evaluation failed",
			zap.String("submission_id", msg.SubmissionID), zap.Error(evalErr))
		eval = syntheticFailure(msg.SubmissionID, len(tests), evalErr)
	}

	applyEvaluation(sub, &eval)
	sub.Score = scoring.Score(eval.TestCasesPassed, eval.TotalTestCases,
		eval.MeanTimeMs, msg.ProblemPoints, msg.TimeLimitMs)
	if err := s.store.SaveVerdict(ctx, sub, eval.Tests); err != nil {
		return err
	}
	metrics.SubmissionsJudged.WithLabelValues(string(sub.Status)).Inc()

	if msg.ContestID == "" || msg.UserID == "" {
		logger.Info(ctx, "submission has no contest context, skipping scoring",
			zap.String("submission_id", msg.SubmissionID))
		return nil
	}
	return s.scoring.Publish(ctx, &model.ScoringMessage{
		SubmissionID:    msg.SubmissionID,
		ContestID:       msg.ContestID,
		UserID:          msg.UserID,
		ProblemID:       msg.ProblemID,
		TestCasesPassed: eval.TestCasesPassed,
		TotalTestCases:  eval.TotalTestCases,
		ExecutionTimeMs: eval.MeanTimeMs,
		ProblemPoints:   msg.ProblemPoints,
		TimeLimitMs:     msg.TimeLimitMs,
	})
}

// GetSubmission returns a submission together with its per-test results.
func (s *JudgeService) GetSubmission(ctx context.Context, id string) (*model.Submission, []model.TestCaseResult, error) {
	if id == "" {
		return nil, nil, appErr.ValidationError("submission_id", "required")
	}
	sub, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	results, err := s.store.ListResults(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sub, results, nil
}

// StatusReporter adapts the store to the sandbox progress hook.
func (s *JudgeService) StatusReporter() sandbox.StatusReporter {
	return storeReporter{store: s.store}
}

type storeReporter struct {
	store SubmissionStore
}

func (r storeReporter) ReportStatus(ctx context.Context, update sandbox.StatusUpdate) error {
	return r.store.ReportStatus(ctx, update.SubmissionID, update.Status)
}

func buildSubmission(msg *model.SubmissionMessage, totalTests int) *model.Submission {
	return &model.Submission{
		ID:             msg.SubmissionID,
		ContestID:      msg.ContestID,
		UserID:         msg.UserID,
		ProblemID:      msg.ProblemID,
		Language:       msg.Language,
		Status:         model.StatusRunning,
		TotalTestCases: totalTests,
		CreatedAt:      time.Now().UTC(),
	}
}

func applyEvaluation(sub *model.Submission, eval *sandbox.Evaluation) {
	sub.Status = eval.Status
	sub.TestCasesPassed = eval.TestCasesPassed
	sub.TotalTestCases = eval.TotalTestCases
	sub.ExecutionTimeMs = eval.MeanTimeMs
	sub.MemoryUsedKB = eval.MaxMemoryKB
	sub.ErrorMessage = eval.ErrorMessage
	sub.JudgedAt = time.Now().UTC()
}

func toSandboxTests(tests []model.TestCasePayload) []sandbox.TestCase {
	out := make([]sandbox.TestCase, 0, len(tests))
	for _, tc := range tests {
		out = append(out, sandbox.TestCase{Input: tc.InputData, Expected: tc.ExpectedOutput})
	}
	return out
}

// syntheticFailure builds a terminal verdict when the sandbox itself
// failed. Every test case is marked errored so downstream consumers still
// see one result per input.
func syntheticFailure(submissionID string, totalTests int, cause error) sandbox.Evaluation {
	detail := "sandbox unavailable: " + cause.Error()
	eval := sandbox.Evaluation{
		Status:         model.StatusRuntimeError,
		TotalTestCases: totalTests,
		ErrorMessage:   detail,
	}
	for i := 0; i < totalTests; i++ {
		eval.Tests = append(eval.Tests, model.TestCaseResult{
			SubmissionID: submissionID,
			Index:        i,
			Status:       model.TestCaseError,
			ErrorDetail:  detail,
		})
	}
	return eval
}
