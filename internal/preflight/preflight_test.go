package preflight

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"downconv/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputWritableCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	result := CheckOutputWritable(dir)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch file to be removed, found %d entries", len(entries))
	}
}

func TestCheckOutputWritableReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	result := CheckOutputWritable(dir)
	if result.Passed {
		t.Fatal("expected failure for read-only directory")
	}
	if result.Detail != MsgPermissionDenied {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDiskSpaceBelowThreshold(t *testing.T) {
	result := CheckDiskSpace(t.TempDir(), math.MaxUint64)
	if result.Passed {
		t.Fatal("expected failure with impossible threshold")
	}
	if !strings.HasPrefix(result.Detail, MsgDiskFull+" (liberi: ") || !strings.HasSuffix(result.Detail, " MB)") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDiskSpaceUsesParentForMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not-yet")
	if res := CheckDiskSpace(missing, 1); !res.Passed {
		t.Fatalf("expected pass through parent, got %s", res.Detail)
	}
	if res := CheckDiskSpace(missing, math.MaxUint64); res.Passed {
		t.Fatal("expected parent filesystem to be measured")
	}
}

func TestCheckDiskSpacePassesWhenParentMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "x", "y")
	if res := CheckDiskSpace(missing, math.MaxUint64); !res.Passed {
		t.Fatalf("expected pass when nothing exists, got %s", res.Detail)
	}
}

func TestCheckDiskSpacePassesOnStatError(t *testing.T) {
	orig := statfs
	statfs = func(string, *unix.Statfs_t) error { return errors.New("boom") }
	t.Cleanup(func() { statfs = orig })

	if res := CheckDiskSpace(t.TempDir(), math.MaxUint64); !res.Passed {
		t.Fatalf("expected pass on statfs error, got %s", res.Detail)
	}
}

func TestOutputRunsWritableFirst(t *testing.T) {
	check := Output(math.MaxUint64)
	res := check(filepath.Join(t.TempDir(), "out"))
	if res.Passed {
		t.Fatal("expected space failure")
	}
	if !strings.HasPrefix(res.Detail, MsgDiskFull) {
		t.Fatalf("expected disk full detail, got %q", res.Detail)
	}
	if res := Output(1)(t.TempDir()); !res.Passed {
		t.Fatalf("expected pass, got %s", res.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.DownloadDir = t.TempDir()
	cfg.Preflight.MinFreeMB = 1

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestProbeVersionMissingBinary(t *testing.T) {
	probe := ProbeVersion(context.Background(), "clearly-not-present-binary", "--version")
	if probe.Found {
		t.Fatal("expected missing binary")
	}
}

func TestProbeVersionReadsFirstLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs unsupported")
	}
	bin := filepath.Join(t.TempDir(), "tool")
	script := "#!/bin/sh\necho 'tool version 1.2.3'\necho 'extra'\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	probe := ProbeVersion(context.Background(), bin, "--version")
	if !probe.Found || probe.Version != "tool version 1.2.3" {
		t.Fatalf("unexpected probe %+v", probe)
	}
	if VersionFlag("ffmpeg") != "-version" || VersionFlag("yt-dlp") != "--version" {
		t.Fatal("unexpected version flags")
	}
}
