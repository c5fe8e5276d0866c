package errors

// ErrorCode identifies a failure class across services.
type ErrorCode int

const (
	// ========== System & Common Errors (10000-10999) ==========

	Success ErrorCode = 10000

	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	ServiceUnavailable  ErrorCode = 10004
	Timeout             ErrorCode = 10005

	DatabaseError     ErrorCode = 10100
	RecordNotFound    ErrorCode = 10101
	TransactionFailed ErrorCode = 10102

	CacheError ErrorCode = 10200
	LockFailed ErrorCode = 10201

	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Queue Errors (11000-11999) ==========

	QueueConnectionError ErrorCode = 11000
	QueuePublishFailed   ErrorCode = 11001
	MalformedMessage     ErrorCode = 11002

	// ========== Submission & Sandbox Errors (12000-12999) ==========

	SubmissionNotFound   ErrorCode = 12000
	LanguageNotSupported ErrorCode = 12001
	TestCasesMissing     ErrorCode = 12002

	SandboxUnavailable ErrorCode = 12100
	SandboxSystemError ErrorCode = 12101
	CompileFailed      ErrorCode = 12102

	// ========== Scoring & Leaderboard Errors (13000-13999) ==========

	ScoringFailed       ErrorCode = 13000
	DuplicateScoring    ErrorCode = 13001
	LeaderboardNotFound ErrorCode = 13100
	RankUpdateFailed    ErrorCode = 13101

	// ========== Fanout Errors (14000-14999) ==========

	BroadcastFailed  ErrorCode = 14000
	ViewerConnFailed ErrorCode = 14001
)

var codeMessages = map[ErrorCode]string{
	Success: "success",

	InternalServerError: "internal server error",
	InvalidParams:       "invalid parameters",
	NotFound:            "resource not found",
	ServiceUnavailable:  "service unavailable",
	Timeout:             "operation timed out",

	DatabaseError:     "database error",
	RecordNotFound:    "record not found",
	TransactionFailed: "transaction failed",

	CacheError: "cache error",
	LockFailed: "failed to acquire lock",

	ValidationFailed:   "validation failed",
	RequiredFieldEmpty: "required field is empty",

	QueueConnectionError: "queue connection error",
	QueuePublishFailed:   "queue publish failed",
	MalformedMessage:     "malformed message payload",

	SubmissionNotFound:   "submission not found",
	LanguageNotSupported: "language not supported",
	TestCasesMissing:     "test cases missing",

	SandboxUnavailable: "sandbox runtime unavailable",
	SandboxSystemError: "sandbox system error",
	CompileFailed:      "compilation failed",

	ScoringFailed:       "scoring failed",
	DuplicateScoring:    "scoring event already processed",
	LeaderboardNotFound: "leaderboard not found",
	RankUpdateFailed:    "rank update failed",

	BroadcastFailed:  "broadcast failed",
	ViewerConnFailed: "viewer connection failed",
}

// Message returns the default message for the code.
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "unknown error"
}

// IsInfrastructure reports whether the code denotes an infrastructure
// fault rather than a domain-level verdict.
func (c ErrorCode) IsInfrastructure() bool {
	switch c {
	case QueueConnectionError, QueuePublishFailed, SandboxUnavailable,
		DatabaseError, CacheError, ServiceUnavailable, Timeout:
		return true
	}
	return false
}
