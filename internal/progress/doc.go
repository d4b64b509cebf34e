// Package progress reports how far a gallery download has come.
//
// A [Reporter] is handed to the runner as its observer and counts pages
// as they finish:
//
//	reporter := progress.NewReporter(progress.Options{
//	    Total: 40,
//	    Mode:  progress.ModeBar,
//	})
//
//	reporter.Start(baseURL)
//	defer reporter.Finish()
//
// # Output Format
//
//	[pageget] Fetching 40 pages from https://site.example/gallery/
//	[pageget] 12/40 pages | 1 failed | elapsed 3s
//
// In ModeLog the same counters are emitted as slog records, at most one
// per Options.Interval plus a final record.
package progress
