package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"downconv/internal/config"
)

// ConfigOption adjusts a test configuration before it is returned.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig returns a default configuration whose output, download, log and
// state folders live under a fresh t.TempDir, with the free-space threshold
// lowered to 1 MB.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	cfg := config.Default()
	b := &configBuilder{t: t, baseDir: t.TempDir(), cfg: &cfg}
	for dir, field := range map[string]*string{
		"output":    &cfg.Paths.OutputDir,
		"downloads": &cfg.Paths.DownloadDir,
		"logs":      &cfg.Paths.LogDir,
		"state":     &cfg.Paths.StateDir,
	} {
		*field = filepath.Join(b.baseDir, dir)
	}
	cfg.Preflight.MinFreeMB = 1
	for _, opt := range opts {
		opt(b)
	}
	return b.cfg
}

// WithStubbedBinaries writes stub executables for the provided names and
// points the tool configuration at them. If names is empty, ffmpeg, ffprobe
// and yt-dlp are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "yt-dlp"}
		}
		for _, name := range names {
			b.writeStub(name, "echo stub 1.0\nexit 0\n")
		}
	}
}

// WithStubScript installs a stub for name whose body is the given shell
// script (without the interpreter line).
func WithStubScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		b.writeStub(name, body)
	}
}

func (b *configBuilder) writeStub(name, body string) {
	b.t.Helper()
	target := filepath.Join(b.baseDir, "bin", name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		b.t.Fatalf("create stub dir: %v", err)
	}
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	if field := b.toolField(name); field != nil {
		*field = target
	}
}

func (b *configBuilder) toolField(name string) *string {
	tools := &b.cfg.Tools
	return map[string]*string{
		"ffmpeg":  &tools.FFmpeg,
		"ffprobe": &tools.FFprobe,
		"yt-dlp":  &tools.YtDlp,
		"aria2c":  &tools.Aria2c,
	}[name]
}

// WithoutAria2c disables downloader delegation.
func WithoutAria2c() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Download.UseAria2c = false
		b.cfg.Tools.Aria2c = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
