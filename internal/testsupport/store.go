package testsupport

import (
	"context"
	"testing"

	"downconv/internal/config"
	"downconv/internal/history"
	"downconv/internal/jobs"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun stores a finished run built from spec and out.
func RecordRun(t testing.TB, store *history.Store, kind history.Kind, spec any, out jobs.Outcome) history.Run {
	t.Helper()

	run, err := history.NewRun(kind, spec, len(out.Results))
	if err != nil {
		t.Fatalf("history.NewRun: %v", err)
	}
	failed := run.Complete(out)
	if err := store.Record(context.Background(), run, failed); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return run
}
