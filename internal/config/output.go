package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamwoolhether/pageget/client/download"
	"gocloud.dev/blob"
)

// Destination is where a run stores its pages.
type Destination struct {
	Sink download.Sink
	// Location is the absolute output directory or the bucket URL.
	Location string

	closeFn func() error
}

// Close releases the bucket behind a bucket destination.
func (d *Destination) Close() error {
	if d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// OpenDestination resolves output once, before any job runs. A value
// containing "://" is opened as a blob bucket URL (file://, mem://, s3://,
// gs://); anything else is a local directory, created with its parents.
// An empty output means the current working directory.
func OpenDestination(ctx context.Context, output string, logger *slog.Logger) (*Destination, error) {
	if strings.Contains(output, "://") {
		bucket, err := blob.OpenBucket(ctx, output)
		if err != nil {
			return nil, fmt.Errorf("%w: opening bucket %s: %w", ErrInvalid, output, err)
		}

		return &Destination{
			Sink:     download.NewBucketSink(bucket),
			Location: output,
			closeFn:  bucket.Close,
		}, nil
	}

	if output == "" {
		output = "."
	}

	dir, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving output %s: %w", ErrInvalid, output, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %w", ErrInvalid, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: output %s is not a directory", ErrInvalid, dir)
	}

	return &Destination{
		Sink:     download.NewFileSink(dir, logger),
		Location: dir,
	}, nil
}
