package pageget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/adamwoolhether/pageget/client"
	"github.com/adamwoolhether/pageget/client/download"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observer is notified as jobs progress. JobDone is called exactly once
// per index; JobStarted only for jobs that were attempted. Calls arrive
// from many goroutines at once.
type Observer interface {
	JobStarted(index int)
	JobDone(index int, err error)
}

type nopObserver struct{}

func (nopObserver) JobStarted(int)     {}
func (nopObserver) JobDone(int, error) {}

// Runner fetches every page of a [Plan] and hands each payload to a sink.
// A Runner holds no per-run state and may run several plans.
type Runner struct {
	client   *client.Client
	sink     download.Sink
	workers  int
	policy   Policy
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
	reqOpts  []client.RequestOption
}

// NewRunner returns a Runner sharing c across all jobs and writing through
// sink. Without options it runs GOMAXPROCS jobs at a time under CollectAll.
func NewRunner(c *client.Client, sink download.Sink, optFns ...Option) (*Runner, error) {
	if c == nil {
		return nil, errors.New("client must not be nil")
	}
	if sink == nil {
		return nil, errors.New("sink must not be nil")
	}

	opts := options{
		workers: runtime.GOMAXPROCS(0),
		policy:  CollectAll,
	}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying runner option: %w", err)
		}
	}

	r := Runner{
		client:   c,
		sink:     sink,
		workers:  opts.workers,
		policy:   opts.policy,
		observer: opts.observer,
		logger:   opts.logger,
		tracer:   opts.tracer,
		reqOpts:  opts.reqOpts,
	}

	if r.observer == nil {
		r.observer = nopObserver{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	return &r, nil
}

// Run executes plan and blocks until every job is terminal. Per-job
// failures are reported in the outcome; the error return covers an
// unusable plan only.
func (r *Runner) Run(ctx context.Context, plan Plan) (*RunOutcome, error) {
	jobs, err := plan.Jobs()
	if err != nil {
		return nil, err
	}

	outcome := RunOutcome{
		RunID:   uuid.New(),
		Base:    plan.Base.String(),
		Policy:  r.policy,
		Total:   len(jobs),
		Started: time.Now(),
	}

	logger := r.logger.With("run_id", outcome.RunID.String())
	logger.Info("run started", "base", outcome.Base, "pages", outcome.Total, "workers", r.workers, "policy", r.policy.String())

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	// Each slot is written by the goroutine owning that index and read
	// only after the queue drains.
	slots := make([]*JobError, len(jobs))
	results := make([]*download.Result, len(jobs))
	var first atomic.Pointer[JobError]

	q := download.NewQueue(r.workers)
	for i, job := range jobs {
		results[i] = q.Start(ctx, func(ctx context.Context) error {
			// A queued job can win a slot after the run was cancelled.
			if err := ctx.Err(); err != nil {
				return err
			}

			jobErr := r.runJob(ctx, logger, job)
			if jobErr == nil {
				return nil
			}

			slots[i] = jobErr
			if jobErr.Kind != KindCancelled && first.CompareAndSwap(nil, jobErr) && r.policy == FailFast {
				logger.Warn("cancelling run", "index", job.Index, "kind", jobErr.Kind.String())
				q.Shutdown()
				cancel(fmt.Errorf("%w: page %d failed", context.Canceled, job.Index))
			}

			return jobErr
		})
	}

	if err := q.Wait(); err != nil {
		logger.Debug("queue drained with errors", "error", err)
	}

	for i, res := range results {
		if slots[i] != nil {
			outcome.Failed = append(outcome.Failed, slots[i])
			continue
		}

		if err := res.Err(); err != nil {
			cause := context.Cause(ctx)
			if cause == nil {
				cause = err
			}
			jobErr := &JobError{
				Index: jobs[i].Index,
				Kind:  KindCancelled,
				Err:   fmt.Errorf("%w: %v", ErrCancelled, cause),
			}
			outcome.Failed = append(outcome.Failed, jobErr)
			r.observer.JobDone(jobErr.Index, jobErr)
			continue
		}

		outcome.Completed++
	}

	outcome.First = first.Load()
	outcome.Elapsed = time.Since(outcome.Started)

	logger.Info("run finished",
		"completed", outcome.Completed,
		"failed", len(outcome.Failed),
		"elapsed", outcome.Elapsed.Round(time.Millisecond).String(),
	)

	return &outcome, nil
}

// runJob fetches and stores a single page inside its own span. It returns
// nil on success.
func (r *Runner) runJob(ctx context.Context, logger *slog.Logger, job Job) *JobError {
	pageURL := ""
	if job.URL != nil {
		pageURL = job.URL.String()
	}

	ctx, span := r.tracer.Start(ctx, "pageget.job", trace.WithAttributes(
		attribute.Int("page.index", job.Index),
		attribute.String("page.url", pageURL),
	))
	defer span.End()

	r.observer.JobStarted(job.Index)

	err := r.fetch(ctx, job)
	if err == nil {
		logger.Debug("page saved", "index", job.Index, "name", job.Name)
		r.observer.JobDone(job.Index, nil)
		return nil
	}

	jobErr := &JobError{
		Index: job.Index,
		Kind:  classify(err, ctx.Err() != nil),
		Err:   err,
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, jobErr.Kind.String())

	logger.Warn("page failed", "index", job.Index, "url", pageURL, "kind", jobErr.Kind.String(), "error", err)
	r.observer.JobDone(job.Index, jobErr)

	return jobErr
}

func (r *Runner) fetch(ctx context.Context, job Job) error {
	if job.Err != nil {
		return job.Err
	}

	req, err := client.Request(ctx, job.URL, http.MethodGet, r.reqOpts...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	payload, err := r.client.Fetch(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", job.URL, err)
	}

	if err := r.sink.Write(ctx, job.Name, payload); err != nil {
		return fmt.Errorf("saving %s: %w", job.Name, err)
	}

	return nil
}
