// Package convert runs batches of ffmpeg conversions on a bounded worker
// pool.
//
// A Runner checks the primary output directory once, fans the inputs out to
// min(concurrency, n) workers, reports per-item completion through a
// jobs.Reporter, and folds the per-item results into a single jobs.Outcome.
// Individual failures never abort the batch. Cancellation stops submitting
// new items; items already handed to a worker run to completion.
package convert
