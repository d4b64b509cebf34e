package pageget

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Policy decides what a run does after its first failed job.
type Policy int

const (
	// CollectAll runs every job and reports every failure.
	CollectAll Policy = iota
	// FailFast cancels the run on the first failure. Jobs that had not
	// started are reported as [KindCancelled].
	FailFast
)

func (p Policy) String() string {
	if p == FailFast {
		return "fail-fast"
	}
	return "collect-all"
}

// RunOutcome is the terminal state of a run.
type RunOutcome struct {
	RunID     uuid.UUID
	Base      string
	Policy    Policy
	Total     int
	Completed int
	// Failed holds one entry per failed index, ordered by index.
	Failed []*JobError
	// First is the earliest failure observed, or nil. Under FailFast it
	// is the failure that cancelled the run.
	First   *JobError
	Started time.Time
	Elapsed time.Duration
}

// Succeeded reports whether every job completed.
func (o *RunOutcome) Succeeded() bool {
	return len(o.Failed) == 0
}

// Count returns how many jobs failed with kind.
func (o *RunOutcome) Count(kind Kind) int {
	var n int
	for _, f := range o.Failed {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Err returns nil if every job completed, otherwise all failures joined.
// Under FailFast the triggering failure comes first.
func (o *RunOutcome) Err() error {
	if len(o.Failed) == 0 {
		return nil
	}

	errs := make([]error, 0, len(o.Failed))
	if o.Policy == FailFast && o.First != nil {
		errs = append(errs, o.First)
	}
	for _, f := range o.Failed {
		if o.Policy == FailFast && f == o.First {
			continue
		}
		errs = append(errs, f)
	}

	return errors.Join(errs...)
}
