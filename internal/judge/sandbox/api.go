// Package sandbox defines the public call interface used by the judge service.
package sandbox

import (
	"context"

	"codearena/internal/judge/model"
	"codearena/internal/judge/sandbox/result"
)

// Evaluator is the high-level sandbox entrypoint used by the judge layer.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvalRequest) (Evaluation, error)
	Kill(ctx context.Context, submissionID string) error
}

// TestCase is one input and its expected stdout.
type TestCase struct {
	Input    string
	Expected string
}

// EvalRequest contains all data needed to judge one submission.
type EvalRequest struct {
	SubmissionID string
	LanguageID   string
	SourceCode   string

	// WorkRoot is the host path used to create per-test workspaces.
	WorkRoot string

	// TimeLimitMs and MemoryLimitMB override the run profile defaults
	// when positive.
	TimeLimitMs   int
	MemoryLimitMB int

	Tests []TestCase

	// ExtraCompileFlags must be filtered by the caller before use.
	ExtraCompileFlags []string
}

// Evaluation is the unified outcome for a submission. Every test case is
// executed even after a failure, so Tests has one entry per input unless
// compilation failed.
type Evaluation struct {
	Status          model.SubmissionStatus
	Compile         *result.CompileResult
	Tests           []model.TestCaseResult
	TestCasesPassed int
	TotalTestCases  int
	MeanTimeMs      float64
	MaxMemoryKB     int64

	// ErrorMessage carries terminal failure text: the compiler log on a
	// compilation error, or the cause when the sandbox itself failed.
	ErrorMessage string
}
