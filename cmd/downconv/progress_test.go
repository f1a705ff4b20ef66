package main

import (
	"bytes"
	"testing"

	"downconv/internal/jobs"
)

func TestProgressViewSkipsStaleCompletions(t *testing.T) {
	var buf bytes.Buffer
	view := newProgressView(&buf)
	report := view.Reporter()
	report.Emit(jobs.Event{Kind: jobs.EventItemDone, Current: 1, Total: 3, Label: "a.mp3"})
	report.Emit(jobs.Event{Kind: jobs.EventItemDone, Current: 3, Total: 3, Label: "c.mp3"})
	report.Emit(jobs.Event{Kind: jobs.EventItemDone, Current: 2, Total: 3, Label: "b.mp3"})
	report.Emit(jobs.Event{Kind: jobs.EventItemDone, Current: 1, Total: 2, Label: "retry.mp3"})
	view.Close()

	want := "[1/3] a.mp3\n[3/3] c.mp3\n[1/2] retry.mp3\n"
	if got := buf.String(); got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
}
