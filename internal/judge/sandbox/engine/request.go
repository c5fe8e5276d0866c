package engine

import (
	"codearena/internal/judge/sandbox/security"
	"codearena/internal/judge/sandbox/spec"
)

// initRequest is the JSON document piped to the sandbox-init helper.
type initRequest struct {
	RunSpec       spec.RunSpec
	Isolation     security.IsolationProfile
	EnableSeccomp bool
	EnableNs      bool
}
