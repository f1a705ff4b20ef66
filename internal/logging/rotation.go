package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxLogBytes is the size at which the log file is rotated on startup.
const MaxLogBytes int64 = 10 << 20

const rotationStamp = "20060102T150405"

// RotateLog renames path to <stem>-<UTC stamp><ext> once it reaches
// maxBytes and returns the new name. A missing or small file is left alone
// and yields "".
func RotateLog(path string, maxBytes int64, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat log file: %w", err)
	}
	if maxBytes <= 0 || info.Size() < maxBytes {
		return "", nil
	}
	ext := filepath.Ext(path)
	target := strings.TrimSuffix(path, ext) + "-" + now.UTC().Format(rotationStamp) + ext
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("rotate log file: %w", err)
	}
	return target, nil
}

// PruneRotated removes rotated copies of path older than retentionDays and
// returns how many were deleted. The live file is never touched; a
// non-positive retention keeps everything.
func PruneRotated(logger *slog.Logger, path string, retentionDays int, now time.Time) int {
	if retentionDays <= 0 || strings.TrimSpace(path) == "" {
		return 0
	}
	ext := filepath.Ext(path)
	matches, err := filepath.Glob(strings.TrimSuffix(path, ext) + "-*" + ext)
	if err != nil {
		return 0
	}
	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
	removed := 0
	for _, candidate := range matches {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(candidate); err != nil {
			if logger != nil {
				WarnWithContext(logger, "rotated log removal failed", "log_prune_failed",
					String("log_path", candidate),
					Error(err),
					String(FieldErrorHint, "check permissions on the log directory"),
				)
			}
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Debug("pruned rotated logs", Int("removed", removed), Int("retention_days", retentionDays))
	}
	return removed
}
