package pageget

import (
	"context"
	"errors"
	"fmt"

	"github.com/adamwoolhether/pageget/client"
	"github.com/adamwoolhether/pageget/client/download"
)

var (
	// ErrInvalidURL is wrapped when a base or page URL cannot be built.
	ErrInvalidURL = errors.New("invalid url")
	// ErrCancelled is wrapped for jobs that never finished because the run
	// was cancelled, by fail-fast or by the caller's context.
	ErrCancelled = errors.New("job cancelled")
)

// Kind classifies why a job failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindTransport
	KindHTTPStatus
	KindIO
	KindCancelled
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid-url"
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http-status"
	case KindIO:
		return "io"
	case KindCancelled:
		return "cancelled"
	case KindTooLarge:
		return "too-large"
	default:
		return "unknown"
	}
}

// MarshalText lets Kind render by name in logs and reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// JobError is the terminal failure of one page.
type JobError struct {
	Index int
	Kind  Kind
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("page %d: %s: %v", e.Index, e.Kind, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for KindHTTPStatus failures, or 0.
func (e *JobError) StatusCode() int {
	var statusErr *client.UnexpectedStatusError
	if errors.As(e.Err, &statusErr) {
		return statusErr.StatusCode
	}

	return 0
}

// classify maps err to a Kind. cancelled reports whether the run's
// context had already ended when err was produced.
func classify(err error, cancelled bool) Kind {
	switch {
	case errors.Is(err, ErrInvalidURL):
		return KindInvalidURL
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case cancelled && isContextErr(err):
		return KindCancelled
	case errors.Is(err, client.ErrUnexpectedStatusCode):
		return KindHTTPStatus
	case errors.Is(err, client.ErrBodyTooLarge):
		return KindTooLarge
	case errors.Is(err, client.ErrTransport):
		return KindTransport
	case errors.Is(err, download.ErrWrite):
		return KindIO
	default:
		return KindUnknown
	}
}

// isContextErr reports whether err came from an ended context. Bucket
// drivers return context errors unwrapped, so errors.Is covers them too.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, download.ErrDownloadCancelled)
}
