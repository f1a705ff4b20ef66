package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"downconv/internal/jobs"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Download output", statusError, "not writable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Download output:", "[ERROR] not writable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
	if !strings.Contains(got, "[OK]") {
		t.Fatalf("expected bare OK status, got %q", got)
	}
}

func TestIsTerminalNonFile(t *testing.T) {
	if isTerminal(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	if err := printOutcome(&buf, jobs.Outcome{Success: true}, "fatto"); err != nil {
		t.Fatalf("success: %v", err)
	}
	if buf.String() != "fatto\n" {
		t.Fatalf("unexpected success output %q", buf.String())
	}

	buf.Reset()
	err := printOutcome(&buf, jobs.Outcome{
		Message: "Errori su 2 file:\n  • a: x\n  • b: y",
		Failed:  []string{"a", "b"},
	}, "fatto")
	if err != errJobFailed {
		t.Fatalf("expected errJobFailed, got %v", err)
	}
	requireContains(t, buf.String(), "Usa --retry-failed per riprovare 2 elementi falliti.")

	buf.Reset()
	err = printOutcome(&buf, jobs.Outcome{
		Message:   jobs.CancelledMessage,
		Cancelled: true,
		Results:   []jobs.ItemResult{{Item: "a", Success: true}},
	}, "fatto")
	if err != errCancelled {
		t.Fatalf("expected errCancelled, got %v", err)
	}
	requireContains(t, buf.String(), jobs.CancelledMessage)
	requireContains(t, buf.String(), "Completati prima dell'annullamento: 1")
}

func TestProgressViewPlainLines(t *testing.T) {
	var buf bytes.Buffer
	view := newProgressView(&buf)
	report := view.Reporter()
	report.Emit(jobs.Event{Kind: jobs.EventItemStarted, Current: 0, Total: 2, Label: "Scaricando 1 di 2..."})
	report.Emit(jobs.Event{Kind: jobs.EventStatus, Label: "ignored", Percent: 40})
	report.Emit(jobs.Event{Kind: jobs.EventItemDone, Current: 1, Total: 2, Label: "https://a.example"})
	view.Close()

	want := "Scaricando 1 di 2...\n[1/2] https://a.example\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
