package download

import (
	"errors"
	"fmt"
)

var (
	// ErrWrite is wrapped by every [Error] a [Sink] returns.
	ErrWrite = errors.New("write failed")
	// ErrDownloadCancelled indicates the write was abandoned because its context ended.
	ErrDownloadCancelled = errors.New("download cancelled")
	// ErrQueueShutdown is returned for work started after [Queue.Shutdown].
	ErrQueueShutdown = errors.New("queue shut down")
)

// Error describes a failed persistence step for a single destination.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrWrite, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrWrite, e.Err}
}
