package download

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"

	"gocloud.dev/blob"
)

// Sink persists one page payload under a name. Implementations must be
// safe for concurrent use with distinct names.
type Sink interface {
	Write(ctx context.Context, name string, payload []byte) error
}

// FileSink writes pages into a local directory through [Handle].
// The directory must already exist.
type FileSink struct {
	dir    string
	logger *slog.Logger
	opts   []Option
}

// NewFileSink returns a FileSink rooted at dir. A nil logger
// falls back to [slog.Default].
func NewFileSink(dir string, logger *slog.Logger, opts ...Option) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &FileSink{
		dir:    dir,
		logger: logger,
		opts:   opts,
	}
}

// Path returns the destination path for name.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Write creates or replaces the file for name with payload.
func (s *FileSink) Write(ctx context.Context, name string, payload []byte) error {
	return Handle(ctx, bytes.NewReader(payload), s.Path(name), s.logger, s.opts...)
}

// BucketSink writes pages as objects into a [blob.Bucket]. Any key
// prefix is applied by the bucket itself, e.g. through the "prefix"
// URL parameter accepted by [blob.OpenBucket].
type BucketSink struct {
	bucket *blob.Bucket
}

// NewBucketSink returns a BucketSink writing into bucket. The caller
// keeps ownership of the bucket and closes it.
func NewBucketSink(bucket *blob.Bucket) *BucketSink {
	return &BucketSink{bucket: bucket}
}

// Write creates or replaces the object for name with payload.
func (s *BucketSink) Write(ctx context.Context, name string, payload []byte) error {
	if err := s.bucket.WriteAll(ctx, name, payload, nil); err != nil {
		return &Error{Op: "put", Path: name, Err: err}
	}

	return nil
}
