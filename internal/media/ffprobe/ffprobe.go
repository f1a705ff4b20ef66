package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ProbeTimeout bounds a single ProbeDuration call.
const ProbeTimeout = 10 * time.Second

// Result holds the container fields ffprobe reported.
type Result struct {
	Format Format `json:"format"`
}

// Format carries the container duration.
type Format struct {
	Duration string `json:"duration"`
}

// Inspect runs ffprobe on path, reading only the container duration.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		"--", path,
	}
	output, err := exec.CommandContext(ctx, binary, args...).CombinedOutput() //nolint:gosec
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// ProbeDuration returns the container duration of path in seconds. It is
// best-effort: any failure, timeout, or non-positive duration reports false.
func ProbeDuration(ctx context.Context, binary, path string) (float64, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	result, err := Inspect(probeCtx, binary, path)
	if err != nil {
		return 0, false
	}
	duration := result.DurationSeconds()
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return 0, false
	}
	return duration, true
}

// DurationSeconds returns the container duration, 0 when absent and NaN when
// unparsable.
func (r Result) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
