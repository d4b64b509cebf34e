// Package pageget downloads a numbered image gallery: given a base URL and
// a page count N it fetches 1.<ext> .. N.<ext> concurrently and stores each
// payload under its zero-padded index (001.<ext>, 002.<ext>, ...).
//
// A [Plan] expands into one [Job] per index. A [Runner] fans the jobs out
// over a bounded [download.Queue], fetching with a shared [client.Client]
// and persisting through a [download.Sink]:
//
//	base, err := pageget.NormalizeBase("site.example/gallery")
//	runner, err := pageget.NewRunner(c, download.NewFileSink(dir, logger))
//	outcome, err := runner.Run(ctx, pageget.Plan{Base: base, Pages: 40, Ext: "webp"})
//	if err := outcome.Err(); err != nil {
//		// one *JobError per failed index
//	}
//
// Failures are classified per index into a [Kind]. Under [CollectAll]
// every job runs; under [FailFast] the first failure cancels the rest and
// the jobs it stopped are reported as [KindCancelled].
package pageget
