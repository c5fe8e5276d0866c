// Package result defines raw sandbox execution outcomes.
package result

// ExecStatus classifies a single sandbox run before output comparison.
type ExecStatus string

const (
	// ExecOK means the program exited cleanly within limits. Whether the
	// answer is correct is decided by comparing stdout afterwards.
	ExecOK ExecStatus = "ok"
	// ExecTimeout means the run was killed for exceeding its time limit.
	ExecTimeout ExecStatus = "timeout"
	// ExecError covers non-zero exits, OOM kills and oversized output.
	ExecError ExecStatus = "error"
)

// RunResult captures raw sandbox execution data.
type RunResult struct {
	ExitCode   int
	TimeMs     int64
	WallTimeMs int64
	MemoryKB   int64
	OutputKB   int64
	Stdout     string
	Stderr     string
	OomKilled  bool
}

// CompileResult contains compilation outcomes. Log holds the bounded
// compiler diagnostics.
type CompileResult struct {
	OK       bool
	ExitCode int
	TimeMs   int64
	MemoryKB int64
	Log      string
}

// Execution is one test case run after verdict classification but before
// output comparison. Stdout is bounded at capture time.
type Execution struct {
	Status   ExecStatus
	ExitCode int
	TimeMs   int64
	MemoryKB int64
	Stdout   string
	Detail   string
}
