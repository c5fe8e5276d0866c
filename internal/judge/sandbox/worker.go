// Package sandbox provides the worker implementation for sandbox execution.
package sandbox

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codearena/internal/judge/model"
	"codearena/internal/judge/sandbox/profile"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/runner"
	"codearena/internal/judge/sandbox/spec"
	appErr "codearena/pkg/errors"
)

// maxStoredOutputBytes bounds how much program output is kept on each
// test case result.
const maxStoredOutputBytes = 4 * 1024

// Worker is the sandbox scheduling unit. It compiles a submission once and
// runs every test case to completion, so the caller always gets one result
// per test unless compilation failed.
type Worker struct {
	runner         runner.Runner
	statusReporter StatusReporter
}

// NewWorker creates a new worker with required dependencies.
func NewWorker(r runner.Runner) *Worker {
	return &Worker{runner: r}
}

// SetStatusReporter injects a status reporter for intermediate updates.
func (w *Worker) SetStatusReporter(reporter StatusReporter) {
	w.statusReporter = reporter
}

// Evaluate runs a full judge workflow for one submission.
func (w *Worker) Evaluate(ctx context.Context, req EvalRequest) (Evaluation, error) {
	if err := validateEvalRequest(req); err != nil {
		return Evaluation{}, err
	}
	if w.runner == nil {
		return Evaluation{}, appErr.New(appErr.SandboxSystemError).WithMessage("worker runner is not initialized")
	}

	lang, ok := profile.Lookup(req.LanguageID)
	if !ok {
		return Evaluation{}, appErr.Newf(appErr.LanguageNotSupported, "unsupported language: %s", req.LanguageID)
	}

	eval := Evaluation{
		Status:         model.StatusRunning,
		TotalTestCases: len(req.Tests),
	}

	submissionRoot := filepath.Join(req.WorkRoot, req.SubmissionID)
	if err := os.MkdirAll(submissionRoot, 0755); err != nil {
		return eval, appErr.Wrapf(err, appErr.SandboxSystemError, "create submission work root failed")
	}
	defer func() {
		_ = os.RemoveAll(submissionRoot)
	}()

	w.reportStatus(ctx, req.SubmissionID, model.StatusRunning, len(req.Tests), 0)

	compileDir := filepath.Join(submissionRoot, "compile")
	compileRes, compileErr := w.runner.Compile(ctx, runner.CompileRequest{
		SubmissionID:      req.SubmissionID,
		WorkDir:           compileDir,
		SourceCode:        req.SourceCode,
		Language:          lang,
		Profile:           profile.DefaultCompileProfile(lang.ID),
		ExtraCompileFlags: req.ExtraCompileFlags,
	})
	eval.Compile = &compileRes
	if compileErr != nil {
		return eval, compileErr
	}
	if !compileRes.OK {
		eval.Status = model.StatusCompilationError
		eval.ErrorMessage = compileRes.Log
		return eval, nil
	}

	limits := requestLimits(req)
	runProfile := profile.DefaultRunProfile(lang.ID)

	var totalTimeMs int64
	for i, tc := range req.Tests {
		testWorkDir := filepath.Join(submissionRoot, "test-"+strconv.Itoa(i))
		if lang.CompileEnabled {
			if err := stageBinary(compileDir, testWorkDir, lang.BinaryFile); err != nil {
				return eval, err
			}
		} else {
			if err := stageSource(compileDir, testWorkDir, lang.SourceFile); err != nil {
				return eval, err
			}
		}

		exec, runErr := w.runner.Run(ctx, runner.RunRequest{
			SubmissionID: req.SubmissionID,
			TestID:       "test-" + strconv.Itoa(i),
			WorkDir:      testWorkDir,
			Input:        tc.Input,
			Language:     lang,
			Profile:      runProfile,
			Limits:       limits,
		})
		if runErr != nil {
			return eval, runErr
		}

		eval.Tests = append(eval.Tests, buildTestResult(req.SubmissionID, i, tc, exec))
		totalTimeMs += exec.TimeMs
		if exec.MemoryKB > eval.MaxMemoryKB {
			eval.MaxMemoryKB = exec.MemoryKB
		}
		w.reportStatus(ctx, req.SubmissionID, model.StatusRunning, len(req.Tests), i+1)
	}

	for _, tr := range eval.Tests {
		if tr.Status == model.TestCasePassed {
			eval.TestCasesPassed++
		}
	}
	if len(eval.Tests) > 0 {
		eval.MeanTimeMs = float64(totalTimeMs) / float64(len(eval.Tests))
	}
	eval.Status = aggregateStatus(eval.Tests, eval.TotalTestCases)
	return eval, nil
}

// Kill aborts all in-flight runs for a submission.
func (w *Worker) Kill(ctx context.Context, submissionID string) error {
	type killer interface {
		KillSubmission(ctx context.Context, submissionID string) error
	}
	if k, ok := w.runner.(killer); ok {
		return k.KillSubmission(ctx, submissionID)
	}
	return nil
}

func (w *Worker) reportStatus(ctx context.Context, submissionID string, status model.SubmissionStatus, total, done int) {
	if w.statusReporter == nil {
		return
	}
	_ = w.statusReporter.ReportStatus(ctx, StatusUpdate{
		SubmissionID: submissionID,
		Status:       status,
		TotalTests:   total,
		DoneTests:    done,
	})
}

func buildTestResult(submissionID string, index int, tc TestCase, exec result.Execution) model.TestCaseResult {
	tr := model.TestCaseResult{
		SubmissionID:    submissionID,
		Index:           index,
		ExecutionTimeMs: float64(exec.TimeMs),
		MemoryUsedKB:    exec.MemoryKB,
		ActualOutput:    truncateOutput(exec.Stdout),
		ErrorDetail:     exec.Detail,
	}
	switch exec.Status {
	case result.ExecTimeout:
		tr.Status = model.TestCaseTimeout
	case result.ExecError:
		tr.Status = model.TestCaseError
	default:
		if outputsMatch(exec.Stdout, tc.Expected) {
			tr.Status = model.TestCasePassed
		} else {
			tr.Status = model.TestCaseFailed
		}
	}
	return tr
}

// aggregateStatus folds per-test outcomes into the submission status.
// Timeouts take precedence over errors, errors over wrong answers.
func aggregateStatus(tests []model.TestCaseResult, total int) model.SubmissionStatus {
	passed := 0
	anyTimeout := false
	anyError := false
	for _, tr := range tests {
		switch tr.Status {
		case model.TestCasePassed:
			passed++
		case model.TestCaseTimeout:
			anyTimeout = true
		case model.TestCaseError:
			anyError = true
		}
	}
	switch {
	case total > 0 && passed == total:
		return model.StatusAccepted
	case anyTimeout:
		return model.StatusTimeLimitExceeded
	case anyError:
		return model.StatusRuntimeError
	default:
		return model.StatusWrongAnswer
	}
}

// outputsMatch compares program output to the expected answer. Only the
// surrounding whitespace is ignored; interior spacing must match exactly.
func outputsMatch(actual, expected string) bool {
	return strings.TrimSpace(actual) == strings.TrimSpace(expected)
}

func requestLimits(req EvalRequest) spec.ResourceLimit {
	limits := spec.ResourceLimit{}
	if req.TimeLimitMs > 0 {
		limits.CPUTimeMs = int64(req.TimeLimitMs)
		limits.WallTimeMs = int64(req.TimeLimitMs)*2 + 1000
	}
	if req.MemoryLimitMB > 0 {
		limits.MemoryMB = int64(req.MemoryLimitMB)
	}
	return limits
}

func truncateOutput(s string) string {
	if len(s) <= maxStoredOutputBytes {
		return s
	}
	return s[:maxStoredOutputBytes]
}

func validateEvalRequest(req EvalRequest) error {
	if req.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if req.SourceCode == "" {
		return appErr.ValidationError("source_code", "required")
	}
	if req.WorkRoot == "" {
		return appErr.ValidationError("work_root", "required")
	}
	if len(req.Tests) == 0 {
		return appErr.ValidationError("tests", "required")
	}
	return nil
}

func stageBinary(compileDir, testWorkDir, binaryName string) error {
	if binaryName == "" {
		return appErr.New(appErr.InvalidParams).WithMessage("binary file name is required")
	}
	return stageFile(compileDir, testWorkDir, binaryName, 0755)
}

func stageSource(compileDir, testWorkDir, sourceName string) error {
	if sourceName == "" {
		return appErr.New(appErr.InvalidParams).WithMessage("source file name is required")
	}
	return stageFile(compileDir, testWorkDir, sourceName, 0644)
}

func stageFile(srcDir, dstDir, name string, mode os.FileMode) error {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return appErr.Wrapf(err, appErr.SandboxSystemError, "create test workdir failed")
	}

	srcFile, err := os.Open(filepath.Join(srcDir, name))
	if err != nil {
		return appErr.Wrapf(err, appErr.SandboxSystemError, "open staged file failed")
	}
	defer srcFile.Close()

	dstFile, err := os.Create(filepath.Join(dstDir, name))
	if err != nil {
		return appErr.Wrapf(err, appErr.SandboxSystemError, "create staged file failed")
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return appErr.Wrapf(err, appErr.SandboxSystemError, "copy staged file failed")
	}
	if err := dstFile.Chmod(mode); err != nil {
		return appErr.Wrapf(err, appErr.SandboxSystemError, "chmod staged file failed")
	}
	return nil
}
