package profile

import "codearena/internal/judge/sandbox/spec"

// TaskType identifies the sandbox task category.
type TaskType string

const (
	TaskTypeCompile TaskType = "compile"
	TaskTypeRun     TaskType = "run"
)

// TaskProfile defines sandbox resources and security settings for a task type.
type TaskProfile struct {
	LanguageID     string
	TaskType       TaskType
	RootFS         string
	SeccompProfile string
	DefaultLimits  spec.ResourceLimit
}

// DefaultCompileProfile returns the stock compile profile for a language.
func DefaultCompileProfile(languageID string) TaskProfile {
	return TaskProfile{
		LanguageID: languageID,
		TaskType:   TaskTypeCompile,
		DefaultLimits: spec.ResourceLimit{
			CPUTimeMs:  10000,
			WallTimeMs: 20000,
			MemoryMB:   512,
			OutputMB:   8,
			PIDs:       64,
		},
	}
}

// DefaultRunProfile returns the stock run profile for a language.
func DefaultRunProfile(languageID string) TaskProfile {
	return TaskProfile{
		LanguageID: languageID,
		TaskType:   TaskTypeRun,
		DefaultLimits: spec.ResourceLimit{
			CPUTimeMs:  2000,
			WallTimeMs: 5000,
			MemoryMB:   256,
			StackMB:    64,
			OutputMB:   16,
			PIDs:       1,
		},
	}
}
