package storage

import (
	"context"
	"io"
)

// ObjectReader is what callers get back from GetObject.
type ObjectReader interface {
	io.Reader
	io.Closer
}

// ObjectStat contains object metadata.
type ObjectStat struct {
	SizeBytes   int64
	ETag        string
	ContentType string
}

// ObjectStorage abstracts the object store holding problem test case
// archives. Workers only read; the operator CLI also uploads.
type ObjectStorage interface {
	GetObject(ctx context.Context, bucket, objectKey string) (ObjectReader, error)
	PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) error
	StatObject(ctx context.Context, bucket, objectKey string) (ObjectStat, error)
}
