package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Mode selects how progress is rendered.
type Mode string

const (
	// ModeBar redraws a single status line after every finished page.
	ModeBar Mode = "bar"
	// ModeLog emits slog records, throttled to Options.Interval.
	ModeLog Mode = "log"
	// ModeNone only counts.
	ModeNone Mode = "none"
)

// Options configures the progress reporter.
type Options struct {
	// Total is the number of pages in the run.
	Total int

	// Mode defaults to ModeBar.
	Mode Mode

	// Output receives the status line in ModeBar.
	// Default: os.Stderr
	Output io.Writer

	// Logger receives records in ModeLog.
	// Default: slog.Default()
	Logger *slog.Logger

	// Interval is the minimum gap between records in ModeLog.
	// Default: 1s
	Interval time.Duration
}

// Reporter tracks completed and failed pages and renders them. It is
// safe for concurrent use by the runner's workers.
type Reporter struct {
	opts Options

	mu        sync.Mutex
	sometimes rate.Sometimes
	startTime time.Time

	inProgress atomic.Int64
	done       atomic.Int64
	failed     atomic.Int64
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Mode == "" {
		opts.Mode = ModeBar
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Interval == 0 {
		opts.Interval = time.Second
	}

	return &Reporter{
		opts:      opts,
		sometimes: rate.Sometimes{First: 1, Interval: opts.Interval},
		startTime: time.Now(),
	}
}

// Start resets the clock and announces the run.
func (r *Reporter) Start(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.startTime = time.Now()

	switch r.opts.Mode {
	case ModeBar:
		fmt.Fprintf(r.opts.Output, "[pageget] Fetching %d pages from %s\n", r.opts.Total, source)
	case ModeLog:
		r.opts.Logger.Info("progress", "source", source, "total", r.opts.Total)
	}
}

// JobStarted marks a page as in flight.
func (r *Reporter) JobStarted(int) {
	r.inProgress.Add(1)
}

// JobDone records a finished page. Pages that were cancelled before
// starting arrive here without a matching JobStarted.
func (r *Reporter) JobDone(_ int, err error) {
	if r.inProgress.Load() > 0 {
		r.inProgress.Add(-1)
	}
	r.done.Add(1)
	if err != nil {
		r.failed.Add(1)
	}

	switch r.opts.Mode {
	case ModeBar:
		r.mu.Lock()
		defer r.mu.Unlock()
		fmt.Fprintf(r.opts.Output, "\r%s    ", r.line())
	case ModeLog:
		r.sometimes.Do(func() {
			r.log("progress")
		})
	}
}

// Finish prints the final status.
func (r *Reporter) Finish() {
	switch r.opts.Mode {
	case ModeBar:
		r.mu.Lock()
		defer r.mu.Unlock()
		fmt.Fprintf(r.opts.Output, "\r%s    \n", r.line())
	case ModeLog:
		r.log("progress complete")
	}
}

// Done returns the number of finished pages, failed or not.
func (r *Reporter) Done() int {
	return int(r.done.Load())
}

// Failed returns the number of failed pages.
func (r *Reporter) Failed() int {
	return int(r.failed.Load())
}

func (r *Reporter) line() string {
	return fmt.Sprintf("[pageget] %d/%d pages | %d failed | elapsed %s",
		r.done.Load(),
		r.opts.Total,
		r.failed.Load(),
		formatDuration(time.Since(r.startTime)),
	)
}

func (r *Reporter) log(msg string) {
	r.opts.Logger.Info(msg,
		"done", r.done.Load(),
		"total", r.opts.Total,
		"failed", r.failed.Load(),
		"in_progress", r.inProgress.Load(),
		"elapsed", formatDuration(time.Since(r.startTime)),
	)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
