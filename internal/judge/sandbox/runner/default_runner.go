package runner

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"codearena/internal/judge/sandbox/engine"
	"codearena/internal/judge/sandbox/profile"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/spec"
	appErr "codearena/pkg/errors"
)

const (
	containerWorkDir = "/work"
	inputFileName    = "input.txt"
	outputFileName   = "output.txt"
	compileLogName   = "compile.log"
	runtimeLogName   = "runtime.log"
)

// DefaultRunner implements compile/run workflows for supported languages.
type DefaultRunner struct {
	eng engine.Engine
}

// NewRunner creates a new runner backed by the sandbox engine.
func NewRunner(eng engine.Engine) *DefaultRunner {
	return &DefaultRunner{eng: eng}
}

// KillSubmission forwards to the engine to abort all runs for a submission.
func (r *DefaultRunner) KillSubmission(ctx context.Context, submissionID string) error {
	return r.eng.KillSubmission(ctx, submissionID)
}

func (r *DefaultRunner) Compile(ctx context.Context, req CompileRequest) (result.CompileResult, error) {
	if err := validateCompileRequest(req); err != nil {
		return result.CompileResult{}, err
	}
	if err := prepareWorkDir(req.WorkDir); err != nil {
		return result.CompileResult{}, err
	}
	if err := writeWorkFile(req.WorkDir, req.Language.SourceFile, req.SourceCode); err != nil {
		return result.CompileResult{}, err
	}
	// Interpreted languages only need the source staged in the workspace.
	if !req.Language.CompileEnabled {
		return result.CompileResult{OK: true}, nil
	}

	limits := applyLimits(req.Limits, req.Profile.DefaultLimits, req.Language)
	cmd, err := buildCommand(req.Language.CompileCmdTpl, req.Language, req.ExtraCompileFlags)
	if err != nil {
		return result.CompileResult{}, err
	}

	runSpec := spec.RunSpec{
		SubmissionID: req.SubmissionID,
		TaskID:       "compile",
		WorkDir:      containerWorkDir,
		Cmd:          cmd,
		Env:          req.Language.Env,
		StderrPath:   filepath.Join(containerWorkDir, compileLogName),
		Profile:      profileName(req.Language.ID, req.Profile.TaskType),
		Limits:       limits,
		BindMounts: []spec.MountSpec{{
			Source: req.WorkDir,
			Target: containerWorkDir,
		}},
	}

	runRes, err := r.eng.Run(ctx, runSpec)
	compileRes := result.CompileResult{
		OK:       runRes.ExitCode == 0 && err == nil,
		ExitCode: runRes.ExitCode,
		TimeMs:   runRes.TimeMs,
		MemoryKB: runRes.MemoryKB,
		Log:      runRes.Stderr,
	}
	if err != nil {
		return compileRes, err
	}
	return compileRes, nil
}

func (r *DefaultRunner) Run(ctx context.Context, req RunRequest) (result.Execution, error) {
	if err := validateRunRequest(req); err != nil {
		return result.Execution{}, err
	}
	if err := prepareWorkDir(req.WorkDir); err != nil {
		return result.Execution{}, err
	}
	if err := writeWorkFile(req.WorkDir, inputFileName, req.Input); err != nil {
		return result.Execution{}, err
	}

	limits := applyLimits(req.Limits, req.Profile.DefaultLimits, req.Language)
	cmd, err := buildCommand(req.Language.RunCmdTpl, req.Language, nil)
	if err != nil {
		return result.Execution{}, err
	}

	runSpec := spec.RunSpec{
		SubmissionID: req.SubmissionID,
		TaskID:       req.TestID,
		WorkDir:      containerWorkDir,
		Cmd:          cmd,
		Env:          req.Language.Env,
		StdinPath:    filepath.Join(containerWorkDir, inputFileName),
		StdoutPath:   filepath.Join(containerWorkDir, outputFileName),
		StderrPath:   filepath.Join(containerWorkDir, runtimeLogName),
		Profile:      profileName(req.Language.ID, req.Profile.TaskType),
		Limits:       limits,
		BindMounts: []spec.MountSpec{{
			Source: req.WorkDir,
			Target: containerWorkDir,
		}},
	}

	runRes, runErr := r.eng.Run(ctx, runSpec)
	if runErr != nil {
		return result.Execution{}, runErr
	}
	return classify(runRes, limits), nil
}

// classify maps a raw run onto an execution status. Timeouts win over
// everything; memory and output violations collapse into errors because
// the caller only distinguishes timeout from other failures.
func classify(res result.RunResult, limits spec.ResourceLimit) result.Execution {
	exec := result.Execution{
		ExitCode: res.ExitCode,
		TimeMs:   res.TimeMs,
		MemoryKB: res.MemoryKB,
		Stdout:   res.Stdout,
	}
	switch {
	case res.ExitCode == -1:
		exec.Status = result.ExecTimeout
		exec.Detail = "wall time limit exceeded"
	case limits.CPUTimeMs > 0 && res.TimeMs > limits.CPUTimeMs:
		exec.Status = result.ExecTimeout
		exec.Detail = "cpu time limit exceeded"
	case res.OomKilled:
		exec.Status = result.ExecError
		exec.Detail = "memory limit exceeded"
	case limits.MemoryMB > 0 && res.MemoryKB > limits.MemoryMB*1024:
		exec.Status = result.ExecError
		exec.Detail = "memory limit exceeded"
	case limits.OutputMB > 0 && res.OutputKB > limits.OutputMB*1024:
		exec.Status = result.ExecError
		exec.Detail = "output limit exceeded"
	case res.ExitCode != 0:
		exec.Status = result.ExecError
		exec.Detail = truncateDetail(res.Stderr)
	default:
		exec.Status = result.ExecOK
	}
	return exec
}

func validateCompileRequest(req CompileRequest) error {
	if req.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if req.WorkDir == "" {
		return appErr.ValidationError("work_dir", "required")
	}
	if req.SourceCode == "" {
		return appErr.ValidationError("source_code", "required")
	}
	if req.Language.ID == "" {
		return appErr.ValidationError("language_id", "required")
	}
	if req.Profile.TaskType == "" {
		return appErr.ValidationError("task_profile", "required")
	}
	return nil
}

func validateRunRequest(req RunRequest) error {
	if req.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if req.TestID == "" {
		return appErr.ValidationError("test_id", "required")
	}
	if req.WorkDir == "" {
		return appErr.ValidationError("work_dir", "required")
	}
	if req.Language.ID == "" {
		return appErr.ValidationError("language_id", "required")
	}
	if req.Profile.TaskType == "" {
		return appErr.ValidationError("task_profile", "required")
	}
	return nil
}

func buildCommand(tpl string, lang profile.LanguageSpec, extraFlags []string) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command template is required")
	}
	expanded := tpl
	expanded = strings.ReplaceAll(expanded, "{src}", filepath.Join(containerWorkDir, lang.SourceFile))
	expanded = strings.ReplaceAll(expanded, "{bin}", filepath.Join(containerWorkDir, lang.BinaryFile))
	if strings.Contains(expanded, "{extraFlags}") {
		expanded = strings.ReplaceAll(expanded, "{extraFlags}", strings.Join(extraFlags, " "))
	}
	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "parse command template failed")
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command is empty after expansion")
	}
	return fields, nil
}

func applyLimits(override, defaults spec.ResourceLimit, lang profile.LanguageSpec) spec.ResourceLimit {
	merged := mergeLimits(defaults, override)
	return applyMultipliers(merged, lang)
}

func mergeLimits(base, override spec.ResourceLimit) spec.ResourceLimit {
	if override.CPUTimeMs > 0 {
		base.CPUTimeMs = override.CPUTimeMs
	}
	if override.WallTimeMs > 0 {
		base.WallTimeMs = override.WallTimeMs
	}
	if override.MemoryMB > 0 {
		base.MemoryMB = override.MemoryMB
	}
	if override.StackMB > 0 {
		base.StackMB = override.StackMB
	}
	if override.OutputMB > 0 {
		base.OutputMB = override.OutputMB
	}
	if override.PIDs > 0 {
		base.PIDs = override.PIDs
	}
	return base
}

func applyMultipliers(limits spec.ResourceLimit, lang profile.LanguageSpec) spec.ResourceLimit {
	limits.CPUTimeMs = scaleLimit(limits.CPUTimeMs, lang.TimeMultiplier)
	limits.WallTimeMs = scaleLimit(limits.WallTimeMs, lang.TimeMultiplier)
	limits.MemoryMB = scaleLimit(limits.MemoryMB, lang.MemoryMultiplier)
	return limits
}

func scaleLimit(value int64, multiplier float64) int64 {
	if value <= 0 {
		return 0
	}
	if multiplier <= 0 {
		return value
	}
	return int64(math.Ceil(float64(value) * multiplier))
}

func profileName(languageID string, taskType profile.TaskType) string {
	if languageID == "" {
		return string(taskType)
	}
	return fmt.Sprintf("%s-%s", languageID, taskType)
}

func prepareWorkDir(workDir string) error {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return appErr.Wrapf(err, appErr.InternalServerError, "create work dir failed")
	}
	return nil
}

func writeWorkFile(workDir, name, content string) error {
	if name == "" {
		return appErr.ValidationError("file_name", "required")
	}
	if err := os.WriteFile(filepath.Join(workDir, name), []byte(content), 0644); err != nil {
		return appErr.Wrapf(err, appErr.InternalServerError, "write work file failed")
	}
	return nil
}

const maxDetailBytes = 4 * 1024

func truncateDetail(s string) string {
	if len(s) <= maxDetailBytes {
		return s
	}
	return s[:maxDetailBytes]
}
