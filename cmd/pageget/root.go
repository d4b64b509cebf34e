package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/adamwoolhether/pageget"
	"github.com/adamwoolhether/pageget/client"
	"github.com/adamwoolhether/pageget/internal/config"
	"github.com/adamwoolhether/pageget/internal/progress"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

const tracerName = "github.com/adamwoolhether/pageget"

// errJobsFailed marks a run that finished with at least one failed page.
var errJobsFailed = errors.New("one or more pages failed")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errJobsFailed):
		return ExitJobsFailed
	default:
		fmt.Fprintf(stderr, "pageget: %v\n", err)
		return ExitInvalidArgs
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pageget --url <URL> --pages <N> [--output <DIR|BUCKET-URL>]",
		Short: "Download the numbered pages of an image gallery concurrently",
		Long: `pageget fetches <url>/1.<ext> .. <url>/N.<ext> in parallel and saves each
page as a zero-padded file (001.<ext>, 002.<ext>, ...) in the output
directory or bucket.

Every flag can also be set through a PAGEGET_* environment variable
(PAGEGET_PAGES, PAGEGET_LOG_LEVEL, ...) or a YAML file passed with --config.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			return download(cmd.Context(), cfg, stdout, stderr)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().SortFlags = false

	return cmd
}

func download(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	logger, err := newLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	dest, err := config.OpenDestination(ctx, cfg.Output, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := dest.Close(); err != nil {
			logger.Error("closing destination", "location", dest.Location, "error", err)
		}
	}()

	c, err := client.Build(
		client.WithTimeout(cfg.Timeout),
		client.WithUserAgent(cfg.UserAgent),
		client.WithMaxBodySize(cfg.MaxSize),
		client.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	reporter := progress.NewReporter(progress.Options{
		Total:  cfg.Pages,
		Mode:   progress.Mode(cfg.Progress),
		Output: stderr,
		Logger: logger,
	})

	opts := []pageget.Option{
		pageget.WithWorkers(cfg.Workers),
		pageget.WithPolicy(cfg.Policy()),
		pageget.WithObserver(reporter),
		pageget.WithLogger(logger),
		pageget.WithTracer(otel.Tracer(tracerName)),
	}
	if cfg.Referer != "" {
		opts = append(opts, pageget.WithRequestOptions(client.WithHeaders(map[string][]string{
			"Referer": {cfg.Referer},
		})))
	}

	runner, err := pageget.NewRunner(c, dest.Sink, opts...)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	reporter.Start(cfg.Base.String())
	outcome, err := runner.Run(ctx, pageget.Plan{
		Base:   cfg.Base,
		Pages:  cfg.Pages,
		Ext:    cfg.Ext,
		PadURL: cfg.PadURL,
	})
	reporter.Finish()
	if err != nil {
		return err
	}

	printSummary(stdout, stderr, outcome, dest.Location)

	if cfg.Report != "" {
		if err := writeReport(cfg.Report, outcome.Report(dest.Location)); err != nil {
			logger.Error("writing report", "path", cfg.Report, "error", err)
			return fmt.Errorf("%w: %w", errJobsFailed, err)
		}
	}

	if !outcome.Succeeded() {
		return errJobsFailed
	}

	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: log level: %w", config.ErrInvalid, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h), nil
}

func writeReport(path string, report pageget.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := report.Write(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func printSummary(stdout, stderr io.Writer, outcome *pageget.RunOutcome, location string) {
	fmt.Fprintf(stdout, "saved %d/%d pages to %s in %s\n",
		outcome.Completed,
		outcome.Total,
		location,
		outcome.Elapsed.Round(time.Millisecond),
	)

	if outcome.Succeeded() {
		return
	}

	fmt.Fprintf(stderr, "%d page(s) failed:\n", len(outcome.Failed))
	if outcome.Policy == pageget.FailFast && outcome.First != nil {
		fmt.Fprintf(stderr, "  first failure: %v\n", outcome.First)
	}
	for _, f := range outcome.Failed {
		fmt.Fprintf(stderr, "  page %d (%s): %v\n", f.Index, f.Kind, f.Err)
	}
}
