package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"downconv/internal/config"
	"downconv/internal/history"
	"downconv/internal/jobs"
	"downconv/internal/testsupport"
)

// ffmpegStub writes the output named by its last argument and fails for
// inputs whose path mentions "corrupt".
const ffmpegStub = `case "$1" in
-version) echo "ffmpeg version 7.0-stub"; exit 0;;
esac
for last; do :; done
case "$*" in
*corrupt*) echo "corrupt.wav: Invalid data found when processing input" >&2; exit 1;;
esac
printf 'converted' > "$last"
`

const ffmpegOKStub = `case "$1" in
-version) echo "ffmpeg version 7.0-stub"; exit 0;;
esac
for last; do :; done
printf 'converted' > "$last"
`

// ytdlpStub fails every URL on the fail.example host.
const ytdlpStub = `case "$1" in
--version) echo "2025.01.01"; exit 0;;
esac
case "$*" in
*https://fail.example*) echo "ERROR: [generic] Unsupported URL: https://fail.example/x" >&2; exit 1;;
esac
exit 0
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries("ffprobe"),
		testsupport.WithStubScript("ffmpeg", ffmpegStub),
		testsupport.WithStubScript("yt-dlp", ytdlpStub),
		testsupport.WithoutAria2c(),
	)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_STATE_HOME", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, env, nil, args...)
}

func runCLIWithInput(t *testing.T, env *cliTestEnv, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	cmd, release := buildRootCommand(&jobs.Flag{})
	defer release()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	var flags []string
	if env != nil && env.configPath != "" {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (env *cliTestEnv) inputFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(env.baseDir, "input", name)
	testsupport.WriteFile(t, path, 4096)
	return path
}

func (env *cliTestEnv) history(t *testing.T) *history.Store {
	t.Helper()
	return testsupport.MustOpenHistory(t, env.cfg)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
}
