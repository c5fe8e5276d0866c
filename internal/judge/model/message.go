package model

import (
	appErr "codearena/pkg/errors"
)

func errMissingField(field string) error {
	return appErr.ValidationError(field, "required")
}

// TestCasePayload is a single test case carried inline on the submission
// message. Input is fed to the program's stdin; ExpectedOutput is compared
// against its stdout.
type TestCasePayload struct {
	InputData      string `json:"input_data"`
	ExpectedOutput string `json:"expected_output"`
}

// SubmissionMessage is the unit of work published to the submissions topic.
// TestCases may be empty when TestCaseArchive names an object storage key
// holding the full test case set.
type SubmissionMessage struct {
	SubmissionID string            `json:"submission_id"`
	ProblemID    string            `json:"problem_id"`
	Code         string            `json:"code"`
	TestCases    []TestCasePayload `json:"test_cases"`

	ContestID       string  `json:"contest_id,omitempty"`
	UserID          string  `json:"user_id,omitempty"`
	Language        string  `json:"language,omitempty"`
	TimeLimitMs     int     `json:"time_limit_ms,omitempty"`
	MemoryLimitMB   int     `json:"memory_limit_mb,omitempty"`
	ProblemPoints   float64 `json:"problem_points,omitempty"`
	TestCaseArchive string  `json:"test_case_archive,omitempty"`
}

// Validate checks the fields without which the submission cannot be judged.
func (m *SubmissionMessage) Validate() error {
	if m.SubmissionID == "" {
		return errMissingField("submission_id")
	}
	if m.ProblemID == "" {
		return errMissingField("problem_id")
	}
	if m.Code == "" {
		return errMissingField("code")
	}
	if len(m.TestCases) == 0 && m.TestCaseArchive == "" {
		return errMissingField("test_cases")
	}
	return nil
}

// ScoringMessage is published to the scoring topic after execution.
type ScoringMessage struct {
	SubmissionID    string  `json:"submission_id"`
	ContestID       string  `json:"contest_id"`
	UserID          string  `json:"user_id"`
	ProblemID       string  `json:"problem_id"`
	TestCasesPassed int     `json:"test_cases_passed"`
	TotalTestCases  int     `json:"total_test_cases"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	ProblemPoints   float64 `json:"problem_points"`
	TimeLimitMs     int     `json:"time_limit_ms"`
}

// Validate checks the fields the scoring pipeline cannot proceed without.
func (m *ScoringMessage) Validate() error {
	if m.SubmissionID == "" {
		return errMissingField("submission_id")
	}
	if m.ContestID == "" {
		return errMissingField("contest_id")
	}
	if m.UserID == "" {
		return errMissingField("user_id")
	}
	if m.TotalTestCases < 0 || m.TestCasesPassed < 0 || m.TestCasesPassed > m.TotalTestCases {
		return errMissingField("test_cases_passed")
	}
	return nil
}
