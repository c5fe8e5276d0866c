// Package sandbox provides status reporting hooks for judge progress.
package sandbox

import (
	"context"

	"codearena/internal/judge/model"
)

// StatusUpdate carries intermediate judge status data.
type StatusUpdate struct {
	SubmissionID string
	Status       model.SubmissionStatus
	TotalTests   int
	DoneTests    int
}

// StatusReporter persists intermediate status updates.
type StatusReporter interface {
	ReportStatus(ctx context.Context, update StatusUpdate) error
}
