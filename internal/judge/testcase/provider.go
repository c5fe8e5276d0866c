// Package testcase resolves the test case set for a submission.
package testcase

import (
	"context"
	"encoding/json"

	"github.com/klauspost/compress/gzip"

	"codearena/internal/common/storage"
	"codearena/internal/judge/model"
	appErr "codearena/pkg/errors"
)

// Provider returns the test cases for a submission. Inline test cases on
// the message win; otherwise the archive named by the message is fetched
// from object storage.
type Provider interface {
	Resolve(ctx context.Context, msg *model.SubmissionMessage) ([]model.TestCasePayload, error)
}

// ArchiveProvider resolves test case archives from object storage. An
// archive is a gzip-compressed JSON array of test cases.
type ArchiveProvider struct {
	store  storage.ObjectStorage
	bucket string
}

// NewArchiveProvider creates a provider reading archives from bucket.
func NewArchiveProvider(store storage.ObjectStorage, bucket string) *ArchiveProvider {
	return &ArchiveProvider{store: store, bucket: bucket}
}

func (p *ArchiveProvider) Resolve(ctx context.Context, msg *model.SubmissionMessage) ([]model.TestCasePayload, error) {
	if len(msg.TestCases) > 0 {
		return msg.TestCases, nil
	}
	if msg.TestCaseArchive == "" {
		return nil, appErr.New(appErr.TestCasesMissing).WithMessage("submission carries no test cases")
	}
	if p.store == nil {
		return nil, appErr.New(appErr.TestCasesMissing).WithMessage("no object storage configured for test case archives")
	}

	obj, err := p.store.GetObject(ctx, p.bucket, msg.TestCaseArchive)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.TestCasesMissing, "fetch test case archive %s failed", msg.TestCaseArchive)
	}
	defer obj.Close()

	gz, err := gzip.NewReader(obj)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.TestCasesMissing, "open test case archive %s failed", msg.TestCaseArchive)
	}
	defer gz.Close()

	var cases []model.TestCasePayload
	if err := json.NewDecoder(gz).Decode(&cases); err != nil {
		return nil, appErr.Wrapf(err, appErr.TestCasesMissing, "decode test case archive %s failed", msg.TestCaseArchive)
	}
	if len(cases) == 0 {
		return nil, appErr.New(appErr.TestCasesMissing).WithMessage("test case archive is empty")
	}
	return cases, nil
}
