package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"downconv/internal/config"
	"downconv/internal/logging"
	"downconv/internal/services"
)

func TestNewFromConfigWritesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug reaches the file", logging.String("item", "a.wav"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("decode log line %q: %v", data, err)
	}
	if record["msg"] != "debug reaches the file" || record["level"] != "debug" {
		t.Fatalf("unexpected record: %v", record)
	}
	if record["item"] != "a.wav" {
		t.Fatalf("expected item attribute, got %v", record["item"])
	}
	if _, ok := record["ts"].(string); !ok {
		t.Fatalf("expected ts field, got %v", record)
	}
	if src, _ := record["source"].(string); !strings.Contains(src, "logger_test.go:") {
		t.Fatalf("expected short source, got %v", record["source"])
	}
}

func readConsole(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerSingleLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithItem(services.WithStage(context.Background(), "convert"), "song.wav")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "convert")).Warn("conversion failed",
		logging.Int64("output_bytes", 2048),
		logging.String("output_path", "/tmp/hidden"),
		logging.String(logging.FieldEventType, "conversion_failed"),
	)

	out := strings.TrimSpace(readConsole(t, path))
	if strings.Count(out, "\n") != 0 {
		t.Fatalf("expected one line, got:\n%s", out)
	}
	want := `WARN [convert] song.wav (convert) – conversion failed event_type=conversion_failed output_bytes="2.0 KiB" (+1 hidden)`
	if !strings.HasSuffix(out, want) {
		t.Fatalf("unexpected line:\n%s\nwant suffix:\n%s", out, want)
	}
}

func TestConsoleLoggerCallerOnlyAtDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller", logging.String("run_id", "r-1"))
	if out := readConsole(t, path); strings.Contains(out, ".go:") || strings.Contains(out, "r-1") {
		t.Fatalf("info line leaked debug detail: %q", out)
	}

	debugPath := filepath.Join(t.TempDir(), "debug.log")
	debugLogger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{debugPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	debugLogger.Debug("probe", logging.String("run_id", "r-1"), logging.Float64(logging.FieldProgressPercent, 42.4))
	out := readConsole(t, debugPath)
	for _, want := range []string{"DEBUG", "run_id=r-1", "progress_percent=42.4%", "logger_test.go:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in debug line %q", want, out)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFormatSubject(t *testing.T) {
	url := "https://www.youtube.com/watch?v=" + strings.Repeat("x", 60)
	got := logging.FormatSubject(url, "download")
	if !strings.HasPrefix(got, "…") || !strings.HasSuffix(got, "xxx (download)") {
		t.Fatalf("unexpected subject %q", got)
	}
	if n := len([]rune(strings.TrimSuffix(got, " (download)"))); n != 48 {
		t.Fatalf("expected 48 runes, got %d", n)
	}
	if got := logging.FormatSubject("", "probe"); got != "probe" {
		t.Fatalf("unexpected stage-only subject %q", got)
	}
	if got := logging.FormatSubject("a.wav", ""); got != "a.wav" {
		t.Fatalf("unexpected item-only subject %q", got)
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithItem(ctx, "b.flac")
	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != logging.FieldRunID || fields[1].Key != logging.FieldItem {
		t.Fatalf("unexpected keys %v", fields)
	}
	if logging.ContextFields(context.Background()) != nil {
		t.Fatal("expected no fields for a bare context")
	}
}

func TestRotateLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, logging.LogFileName)

	if got, err := logging.RotateLog(path, 10, time.Now()); err != nil || got != "" {
		t.Fatalf("missing file: got %q, %v", got, err)
	}
	if err := os.WriteFile(path, []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := logging.RotateLog(path, 10, time.Now()); err != nil || got != "" {
		t.Fatalf("small file: got %q, %v", got, err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 32)), 0o644); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got, err := logging.RotateLog(path, 10, now)
	if err != nil {
		t.Fatalf("RotateLog: %v", err)
	}
	if want := filepath.Join(dir, "downconv-20260304T050607.log"); got != want {
		t.Fatalf("rotated to %q, want %q", got, want)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("live log should be gone, stat err=%v", err)
	}
}

func TestPruneRotated(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, logging.LogFileName)
	oldCopy := filepath.Join(dir, "downconv-20250101T000000.log")
	freshCopy := filepath.Join(dir, "downconv-20260101T000000.log")
	other := filepath.Join(dir, "notes.log")
	for _, p := range []string{live, oldCopy, freshCopy, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	now := time.Now()
	past := now.AddDate(0, 0, -10)
	for _, p := range []string{live, oldCopy, other} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	if removed := logging.PruneRotated(nil, live, 5, now); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(oldCopy); !os.IsNotExist(err) {
		t.Fatalf("expected old copy removed, stat err=%v", err)
	}
	for _, p := range []string{live, freshCopy, other} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s kept: %v", p, err)
		}
	}
	if removed := logging.PruneRotated(logging.NewNop(), live, 0, now); removed != 0 {
		t.Fatalf("zero retention should keep everything, removed %d", removed)
	}
}
