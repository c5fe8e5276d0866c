package model

import "time"

// SubmissionStatus is the lifecycle state of a submission. The set is
// closed; anything else is rejected at the boundary.
type SubmissionStatus string

const (
	StatusPending           SubmissionStatus = "pending"
	StatusRunning           SubmissionStatus = "running"
	StatusAccepted          SubmissionStatus = "accepted"
	StatusWrongAnswer       SubmissionStatus = "wrong_answer"
	StatusTimeLimitExceeded SubmissionStatus = "time_limit_exceeded"
	StatusRuntimeError      SubmissionStatus = "runtime_error"
	StatusCompilationError  SubmissionStatus = "compilation_error"
)

// Valid reports whether s is one of the known statuses.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusAccepted, StatusWrongAnswer,
		StatusTimeLimitExceeded, StatusRuntimeError, StatusCompilationError:
		return true
	}
	return false
}

// Terminal reports whether the submission has finished judging.
func (s SubmissionStatus) Terminal() bool {
	return s.Valid() && s != StatusPending && s != StatusRunning
}

// TestCaseStatus is the outcome of a single test case run. The set is closed.
type TestCaseStatus string

const (
	TestCasePassed  TestCaseStatus = "passed"
	TestCaseFailed  TestCaseStatus = "failed"
	TestCaseTimeout TestCaseStatus = "timeout"
	TestCaseError   TestCaseStatus = "error"
)

// Valid reports whether s is one of the known outcomes.
func (s TestCaseStatus) Valid() bool {
	switch s {
	case TestCasePassed, TestCaseFailed, TestCaseTimeout, TestCaseError:
		return true
	}
	return false
}

// Submission is the persisted record of one judged submission.
type Submission struct {
	ID              string           `json:"submission_id"`
	ContestID       string           `json:"contest_id"`
	UserID          string           `json:"user_id"`
	ProblemID       string           `json:"problem_id"`
	Language        string           `json:"language"`
	Status          SubmissionStatus `json:"status"`
	TestCasesPassed int              `json:"test_cases_passed"`
	TotalTestCases  int              `json:"total_test_cases"`
	Score           float64          `json:"score"`
	ExecutionTimeMs float64          `json:"execution_time_ms"`
	MemoryUsedKB    int64            `json:"memory_used_kb"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	JudgedAt        time.Time        `json:"judged_at"`
}

// TestCaseResult is the persisted outcome of one test case within a
// submission. ActualOutput is truncated at capture time, so it is bounded
// regardless of how much the program printed.
type TestCaseResult struct {
	SubmissionID    string         `json:"submission_id"`
	Index           int            `json:"test_case_index"`
	Status          TestCaseStatus `json:"status"`
	ExecutionTimeMs float64        `json:"execution_time_ms"`
	MemoryUsedKB    int64          `json:"memory_used_kb"`
	ActualOutput    string         `json:"actual_output,omitempty"`
	ErrorDetail     string         `json:"error_detail,omitempty"`
}
