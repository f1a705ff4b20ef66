// Package history persists finished conversion and download runs in SQLite.
//
// Each run records its kind, counts, terminal message, and the JSON-encoded
// job spec it executed. Failed items are stored per run in submission order
// so the CLI can rebuild a batch or queue from exactly the failed subset.
// Cancelled runs are recorded without failed items.
package history
