// Package jobs holds the pieces shared by the conversion and download runners:
// the cooperative cancellation flag, progress events, per-item results, the
// terminal Outcome, and the failure summary used to report a run to the user.
//
// A run reports through a Reporter callback. Runners invoke it from their own
// goroutines; ChannelReporter adapts it to a bounded channel for consumers
// that prefer select loops.
package jobs
