// Package notifications pushes run summaries to ntfy.
//
// A noop implementation is returned when no topic is configured, so callers
// notify unconditionally.
package notifications
