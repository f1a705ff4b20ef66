package preflight

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// ToolVersion reports the first line a tool prints for its version flag.
type ToolVersion struct {
	Binary  string
	Found   bool
	Version string
}

// ProbeVersion runs binary with the given version flag and captures the first
// output line. Failures yield Found=false.
func ProbeVersion(ctx context.Context, binary, flag string) ToolVersion {
	binary = strings.TrimSpace(binary)
	probe := ToolVersion{Binary: binary}
	if binary == "" {
		return probe
	}
	if _, err := exec.LookPath(binary); err != nil {
		return probe
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, flag).Output() //nolint:gosec
	if err != nil {
		return probe
	}
	probe.Found = true
	text := strings.TrimSpace(string(output))
	if line, _, ok := strings.Cut(text, "\n"); ok {
		text = line
	}
	probe.Version = strings.TrimSpace(text)
	return probe
}

// VersionFlag returns the flag a known tool expects.
func VersionFlag(tool string) string {
	switch strings.ToLower(tool) {
	case "ffmpeg", "ffprobe":
		return "-version"
	default:
		return "--version"
	}
}
