package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Handle streams body to a temp file in the same directory as destPath,
// syncs and closes it, then renames it over destPath. An existing file is
// replaced whole, so destPath ends up with exactly the bytes of body. On
// any error the temp file is removed and destPath is left untouched.
func Handle(ctx context.Context, body io.Reader, destPath string, logger *slog.Logger, optFns ...Option) error {
	opts := options{perm: defaultPerm}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if destPath == "" {
		return &Error{Op: "create", Path: destPath, Err: errors.New("destPath must not be empty")}
	}

	body = &contextReader{ctx: ctx, r: body}

	file, err := os.CreateTemp(filepath.Dir(destPath), ".pageget-*")
	if err != nil {
		return &Error{Op: "create", Path: destPath, Err: err}
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Error("failed to remove temp file", "path", file.Name(), "error", err)
			}
		}
	}()

	if _, err := io.Copy(file, body); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &Error{Op: "write", Path: destPath, Err: fmt.Errorf("%w: %w", ErrDownloadCancelled, err)}
		}

		return &Error{Op: "write", Path: destPath, Err: err}
	}

	if err := file.Chmod(opts.perm); err != nil {
		return &Error{Op: "chmod", Path: destPath, Err: err}
	}
	if err := file.Sync(); err != nil {
		return &Error{Op: "sync", Path: destPath, Err: err}
	}
	if err := file.Close(); err != nil {
		return &Error{Op: "close", Path: destPath, Err: err}
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return &Error{Op: "rename", Path: destPath, Err: err}
	}

	successful = true

	return nil
}

// contextReader is an io.Reader that stops yielding data once ctx ends.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}
