// Package runner implements compile and run workflows on top of the
// sandbox engine.
package runner

import (
	"context"

	"codearena/internal/judge/sandbox/profile"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/spec"
)

// Runner compiles a submission once and executes it against test inputs.
type Runner interface {
	Compile(ctx context.Context, req CompileRequest) (result.CompileResult, error)
	Run(ctx context.Context, req RunRequest) (result.Execution, error)
}

// CompileRequest carries everything needed to compile one submission.
// SourceCode is written into the workspace by the runner.
type CompileRequest struct {
	SubmissionID      string
	WorkDir           string
	SourceCode        string
	Language          profile.LanguageSpec
	Profile           profile.TaskProfile
	Limits            spec.ResourceLimit
	ExtraCompileFlags []string
}

// RunRequest carries one test case execution. Input is fed to the program
// over stdin.
type RunRequest struct {
	SubmissionID string
	TestID       string
	WorkDir      string
	Input        string
	Language     profile.LanguageSpec
	Profile      profile.TaskProfile
	Limits       spec.ResourceLimit
}
