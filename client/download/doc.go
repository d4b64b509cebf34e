// Package download persists fetched page payloads and runs the bounded
// queue that fans jobs out across goroutines.
//
// # Sinks
//
// A [Sink] stores one payload under a name. [FileSink] writes into a
// local directory through [Handle], which streams into a temp file
// alongside the destination and atomically renames it on success:
//
//	sink := download.NewFileSink("/tmp/gallery", logger)
//	err := sink.Write(ctx, "001.webp", payload)
//
// [BucketSink] writes objects into a [gocloud.dev/blob.Bucket], so the
// same pipeline can target file://, mem://, s3:// or gs:// URLs.
//
// Failures wrap [ErrWrite] in an [*Error] naming the operation and path.
//
// # Queue
//
// [Queue] runs [WorkFunc] items concurrently under a semaphore:
//
//	q := download.NewQueue(8)
//	r := q.Start(ctx, fn)
//	err := q.Wait() // all item errors, joined
//
// Each [Result] reports its own item's error through [Result.Err].
package download
