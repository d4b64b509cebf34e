package pageget

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/adamwoolhether/pageget/client"
	"go.opentelemetry.io/otel/trace"
)

// Option defines optional settings for a [Runner].
//
// WithWorkers bounds how many jobs are in flight at once.
// WithPolicy selects collect-all or fail-fast.
// WithObserver receives a callback as each job starts and finishes.
type Option func(*options) error

type options struct {
	workers  int
	policy   Policy
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
	reqOpts  []client.RequestOption
}

func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("workers must be at least 1, got %d", n)
		}
		o.workers = n
		return nil
	}
}

func WithPolicy(p Policy) Option {
	return func(o *options) error {
		if p != CollectAll && p != FailFast {
			return fmt.Errorf("unknown policy %d", p)
		}
		o.policy = p
		return nil
	}
}

// WithFailFast is shorthand for WithPolicy(FailFast).
func WithFailFast() Option {
	return WithPolicy(FailFast)
}

func WithObserver(obs Observer) Option {
	return func(o *options) error {
		if obs == nil {
			return errors.New("observer must not be nil")
		}
		o.observer = obs
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer injects the tracer used for per-job spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithRequestOptions applies opts to every page request, e.g. a shared
// Referer header or session cookies.
func WithRequestOptions(opts ...client.RequestOption) Option {
	return func(o *options) error {
		o.reqOpts = append(o.reqOpts, opts...)
		return nil
	}
}
