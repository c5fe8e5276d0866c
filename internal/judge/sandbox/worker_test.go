package sandbox_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codearena/internal/judge/model"
	"codearena/internal/judge/sandbox"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/runner"
	appErr "codearena/pkg/errors"
)

// fakeRunner answers Compile and Run from canned results while staging the
// files a real compile would leave behind.
type fakeRunner struct {
	compileRes result.CompileResult
	compileErr error
	runResults []result.Execution
	runErr     error
	runReqs    []runner.RunRequest
}

func (f *fakeRunner) Compile(ctx context.Context, req runner.CompileRequest) (result.CompileResult, error) {
	if f.compileErr != nil {
		return result.CompileResult{}, f.compileErr
	}
	if err := os.MkdirAll(req.WorkDir, 0755); err != nil {
		return result.CompileResult{}, err
	}
	name := req.Language.SourceFile
	if req.Language.CompileEnabled {
		name = req.Language.BinaryFile
	}
	if err := os.WriteFile(filepath.Join(req.WorkDir, name), []byte("stub"), 0755); err != nil {
		return result.CompileResult{}, err
	}
	return f.compileRes, nil
}

func (f *fakeRunner) Run(ctx context.Context, req runner.RunRequest) (result.Execution, error) {
	f.runReqs = append(f.runReqs, req)
	if f.runErr != nil {
		return result.Execution{}, f.runErr
	}
	idx := len(f.runReqs) - 1
	if idx < len(f.runResults) {
		return f.runResults[idx], nil
	}
	return result.Execution{Status: result.ExecOK}, nil
}

func okCompile() result.CompileResult {
	return result.CompileResult{OK: true, ExitCode: 0}
}

func evalRequest(workRoot string, tests ...sandbox.TestCase) sandbox.EvalRequest {
	return sandbox.EvalRequest{
		SubmissionID: "sub-1",
		LanguageID:   "cpp",
		SourceCode:   "int main(){return 0;}",
		WorkRoot:     workRoot,
		Tests:        tests,
	}
}

func TestEvaluateRunsEveryTestCase(t *testing.T) {
	r := &fakeRunner{
		compileRes: okCompile(),
		runResults: []result.Execution{
			{Status: result.ExecOK, Stdout: "1\n", TimeMs: 10, MemoryKB: 100},
			{Status: result.ExecOK, Stdout: "wrong\n", TimeMs: 30, MemoryKB: 300},
			{Status: result.ExecOK, Stdout: "3\n", TimeMs: 20, MemoryKB: 200},
		},
	}
	w := sandbox.NewWorker(r)

	eval, err := w.Evaluate(context.Background(), evalRequest(t.TempDir(),
		sandbox.TestCase{Input: "a", Expected: "1"},
		sandbox.TestCase{Input: "b", Expected: "2"},
		sandbox.TestCase{Input: "c", Expected: "3"},
	))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if len(r.runReqs) != 3 {
		t.Fatalf("ran %d test cases, want all 3 despite the failure", len(r.runReqs))
	}
	if len(eval.Tests) != 3 {
		t.Fatalf("got %d results, want one per test case", len(eval.Tests))
	}
	if eval.Status != model.StatusWrongAnswer {
		t.Fatalf("status = %s, want %s", eval.Status, model.StatusWrongAnswer)
	}
	if eval.TestCasesPassed != 2 || eval.TotalTestCases != 3 {
		t.Fatalf("passed %d/%d, want 2/3", eval.TestCasesPassed, eval.TotalTestCases)
	}
	if eval.Tests[1].Status != model.TestCaseFailed {
		t.Fatalf("second result = %s, want %s", eval.Tests[1].Status, model.TestCaseFailed)
	}
	if eval.MeanTimeMs != 20 {
		t.Fatalf("mean time = %v, want 20", eval.MeanTimeMs)
	}
	if eval.MaxMemoryKB != 300 {
		t.Fatalf("max memory = %d, want 300", eval.MaxMemoryKB)
	}
}

func TestEvaluateTimeoutOutranksWrongAnswer(t *testing.T) {
	r := &fakeRunner{
		compileRes: okCompile(),
		runResults: []result.Execution{
			{Status: result.ExecOK, Stdout: "nope"},
			{Status: result.ExecTimeout, Detail: "wall time limit exceeded"},
			{Status: result.ExecError, ExitCode: 139, Detail: "segfault"},
		},
	}
	w := sandbox.NewWorker(r)

	eval, err := w.Evaluate(context.Background(), evalRequest(t.TempDir(),
		sandbox.TestCase{Input: "a", Expected: "1"},
		sandbox.TestCase{Input: "b", Expected: "2"},
		sandbox.TestCase{Input: "c", Expected: "3"},
	))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Status != model.StatusTimeLimitExceeded {
		t.Fatalf("status = %s, want %s", eval.Status, model.StatusTimeLimitExceeded)
	}
	if eval.Tests[2].Status != model.TestCaseError {
		t.Fatalf("third result = %s, want %s", eval.Tests[2].Status, model.TestCaseError)
	}
}

func TestEvaluateCompileFailureSkipsTests(t *testing.T) {
	r := &fakeRunner{
		compileRes: result.CompileResult{OK: false, ExitCode: 1, Log: "main.cpp:1: error"},
	}
	w := sandbox.NewWorker(r)

	eval, err := w.Evaluate(context.Background(), evalRequest(t.TempDir(),
		sandbox.TestCase{Input: "a", Expected: "1"},
	))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Status != model.StatusCompilationError {
		t.Fatalf("status = %s, want %s", eval.Status, model.StatusCompilationError)
	}
	if len(r.runReqs) != 0 {
		t.Fatalf("ran %d test cases after a failed compile, want 0", len(r.runReqs))
	}
	if len(eval.Tests) != 0 {
		t.Fatalf("got %d results after a failed compile, want none", len(eval.Tests))
	}
	if eval.Compile == nil || eval.Compile.Log == "" {
		t.Fatal("compile diagnostics missing from evaluation")
	}
	if eval.ErrorMessage != "main.cpp:1: error" {
		t.Fatalf("evaluation error = %q, want the compiler log", eval.ErrorMessage)
	}
}

func TestEvaluateTrimsSurroundingWhitespaceOnly(t *testing.T) {
	r := &fakeRunner{
		compileRes: okCompile(),
		runResults: []result.Execution{
			{Status: result.ExecOK, Stdout: "  42 \n"},
			{Status: result.ExecOK, Stdout: "4 2"},
		},
	}
	w := sandbox.NewWorker(r)

	eval, err := w.Evaluate(context.Background(), evalRequest(t.TempDir(),
		sandbox.TestCase{Input: "a", Expected: "42"},
		sandbox.TestCase{Input: "b", Expected: "42"},
	))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Tests[0].Status != model.TestCasePassed {
		t.Fatalf("padded output = %s, want %s", eval.Tests[0].Status, model.TestCasePassed)
	}
	if eval.Tests[1].Status != model.TestCaseFailed {
		t.Fatalf("interior spacing difference = %s, want %s", eval.Tests[1].Status, model.TestCaseFailed)
	}
}

func TestEvaluateBoundsStoredOutput(t *testing.T) {
	big := strings.Repeat("x", 64*1024)
	r := &fakeRunner{
		compileRes: okCompile(),
		runResults: []result.Execution{{Status: result.ExecOK, Stdout: big}},
	}
	w := sandbox.NewWorker(r)

	eval, err := w.Evaluate(context.Background(), evalRequest(t.TempDir(),
		sandbox.TestCase{Input: "a", Expected: "42"},
	))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := len(eval.Tests[0].ActualOutput); got > 4*1024 {
		t.Fatalf("stored output is %d bytes, want it bounded to 4096", got)
	}
}

func TestEvaluateRejectsUnsupportedLanguage(t *testing.T) {
	w := sandbox.NewWorker(&fakeRunner{compileRes: okCompile()})

	req := evalRequest(t.TempDir(), sandbox.TestCase{Input: "a", Expected: "1"})
	req.LanguageID = "cobol"
	_, err := w.Evaluate(context.Background(), req)
	if !appErr.Is(err, appErr.LanguageNotSupported) {
		t.Fatalf("got %v, want LanguageNotSupported", err)
	}
}

func TestEvaluateRequiresTestCases(t *testing.T) {
	w := sandbox.NewWorker(&fakeRunner{compileRes: okCompile()})

	_, err := w.Evaluate(context.Background(), evalRequest(t.TempDir()))
	if !appErr.Is(err, appErr.ValidationFailed) {
		t.Fatalf("got %v, want ValidationFailed", err)
	}
}

type recordingReporter struct {
	updates []sandbox.StatusUpdate
}

func (r *recordingReporter) ReportStatus(ctx context.Context, update sandbox.StatusUpdate) error {
	r.updates = append(r.updates, update)
	return nil
}

func TestEvaluateReportsProgress(t *testing.T) {
	r := &fakeRunner{compileRes: okCompile()}
	w := sandbox.NewWorker(r)
	reporter := &recordingReporter{}
	w.SetStatusReporter(reporter)

	_, err := w.Evaluate(context.Background(), evalRequest(t.TempDir(),
		sandbox.TestCase{Input: "a", Expected: ""},
		sandbox.TestCase{Input: "b", Expected: ""},
	))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	// One update when execution starts, one after each test case.
	if len(reporter.updates) != 3 {
		t.Fatalf("got %d status updates, want 3", len(reporter.updates))
	}
	last := reporter.updates[len(reporter.updates)-1]
	if last.DoneTests != 2 || last.TotalTests != 2 {
		t.Fatalf("final progress %d/%d, want 2/2", last.DoneTests, last.TotalTests)
	}
}
