package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDurationSeconds(t *testing.T) {
	if got := (Result{Format: Format{Duration: " 123.45 "}}).DurationSeconds(); got != 123.45 {
		t.Fatalf("unexpected duration: %v", got)
	}
}

func TestDurationSecondsHandlesInvalidNumbers(t *testing.T) {
	if got := (Result{Format: Format{Duration: "bad"}}).DurationSeconds(); !math.IsNaN(got) {
		t.Fatalf("expected duration NaN, got %v", got)
	}
	if got := (Result{}).DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for missing duration, got %v", got)
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestProbeDuration(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs unavailable on windows")
	}
	tests := []struct {
		name   string
		body   string
		want   float64
		wantOK bool
	}{
		{"valid", `echo '{"format":{"duration":"42.5"}}'`, 42.5, true},
		{"missing duration", `echo '{"format":{}}'`, 0, false},
		{"negative", `echo '{"format":{"duration":"-3"}}'`, 0, false},
		{"garbage", `echo 'not json'`, 0, false},
		{"exit failure", `echo 'boom' >&2; exit 1`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := writeStub(t, tt.body)
			got, ok := ProbeDuration(context.Background(), bin, "/media/song.wav")
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("ProbeDuration = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestProbeDurationMissingBinary(t *testing.T) {
	if _, ok := ProbeDuration(context.Background(), filepath.Join(t.TempDir(), "absent"), "x.wav"); ok {
		t.Fatal("expected missing binary to report false")
	}
}
