// Package logging builds the slog loggers used across downconv.
//
// The console handler prints one line per record with the component, item
// and stage up front; the JSON handler mirrors every record, debug included,
// into LogFileName under the configured log directory. That file is rotated
// by size at startup and old rotated copies are pruned by age.
//
// WarnWithContext and ErrorWithContext attach event_type, error_hint and
// impact so every warning explains itself, and WithContext tags lines with
// the run, item and stage carried by a context.
package logging
