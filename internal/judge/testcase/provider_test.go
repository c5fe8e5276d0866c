package testcase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"

	"codearena/internal/common/storage"
	"codearena/internal/judge/model"
	"codearena/internal/judge/testcase"
	appErr "codearena/pkg/errors"
)

type memObject struct {
	*bytes.Reader
}

func (memObject) Close() error { return nil }

// memStorage serves objects from a map keyed by "bucket/key".
type memStorage struct {
	objects map[string][]byte
}

func (s *memStorage) GetObject(ctx context.Context, bucket, key string) (storage.ObjectReader, error) {
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return memObject{bytes.NewReader(data)}, nil
}

func (s *memStorage) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[bucket+"/"+key] = data
	return nil
}

func (s *memStorage) StatObject(ctx context.Context, bucket, key string) (storage.ObjectStat, error) {
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return storage.ObjectStat{}, errors.New("object not found")
	}
	return storage.ObjectStat{SizeBytes: int64(len(data))}, nil
}

func archive(t *testing.T, cases []model.TestCasePayload) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(cases); err != nil {
		t.Fatalf("encode archive: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestResolveInlineTestCasesWin(t *testing.T) {
	store := &memStorage{objects: map[string][]byte{}}
	p := testcase.NewArchiveProvider(store, "testcases")

	inline := []model.TestCasePayload{{InputData: "1", ExpectedOutput: "2"}}
	got, err := p.Resolve(context.Background(), &model.SubmissionMessage{
		SubmissionID:    "s1",
		TestCases:       inline,
		TestCaseArchive: "p1.json.gz",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 || got[0].InputData != "1" {
		t.Fatalf("got %+v, want the inline set untouched", got)
	}
}

func TestResolveFetchesArchive(t *testing.T) {
	want := []model.TestCasePayload{
		{InputData: "1 2", ExpectedOutput: "3"},
		{InputData: "4 5", ExpectedOutput: "9"},
	}
	store := &memStorage{objects: map[string][]byte{
		"testcases/p1.json.gz": archive(t, want),
	}}
	p := testcase.NewArchiveProvider(store, "testcases")

	got, err := p.Resolve(context.Background(), &model.SubmissionMessage{
		SubmissionID:    "s1",
		TestCaseArchive: "p1.json.gz",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 || got[1].ExpectedOutput != "9" {
		t.Fatalf("got %+v, want the decoded archive", got)
	}
}

func TestResolveFailuresAreTestCasesMissing(t *testing.T) {
	store := &memStorage{objects: map[string][]byte{
		"testcases/corrupt.gz": []byte("not gzip"),
		"testcases/empty.gz":   archive(t, nil),
	}}
	p := testcase.NewArchiveProvider(store, "testcases")

	for _, key := range []string{"", "absent.gz", "corrupt.gz", "empty.gz"} {
		_, err := p.Resolve(context.Background(), &model.SubmissionMessage{
			SubmissionID:    "s1",
			TestCaseArchive: key,
		})
		if !appErr.Is(err, appErr.TestCasesMissing) {
			t.Fatalf("archive %q: got %v, want TestCasesMissing", key, err)
		}
	}
}
