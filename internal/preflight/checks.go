package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"downconv/internal/config"
	"downconv/internal/deps"
	"downconv/internal/services"
)

// MinFreeBytes is the default free-space threshold for output directories.
const MinFreeBytes uint64 = 50 * 1024 * 1024

const (
	MsgDiskFull         = services.MsgDiskFull
	MsgPermissionDenied = services.MsgPermissionDenied
)

// statfs is swapped in tests.
var statfs = unix.Statfs

// CheckOutputWritable creates dir when missing and proves it writable by
// creating and removing a scratch file.
func CheckOutputWritable(dir string) Result {
	const name = "Output writable"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: name, Detail: MsgPermissionDenied}
	}
	f, err := os.CreateTemp(dir, ".downconv-write-*")
	if err != nil {
		return Result{Name: name, Detail: MsgPermissionDenied}
	}
	tmp := f.Name()
	_ = f.Close()
	_ = os.Remove(tmp)
	return Result{Name: name, Passed: true, Detail: dir}
}

// CheckDiskSpace compares the free space of the filesystem holding dir with
// minFree. A missing dir is checked through its parent; when neither exists,
// or the filesystem cannot be queried, the check passes and lets the write
// itself fail later.
func CheckDiskSpace(dir string, minFree uint64) Result {
	const name = "Free space"
	target := dir
	if _, err := os.Stat(target); err != nil {
		target = filepath.Dir(dir)
		if _, err := os.Stat(target); err != nil {
			return Result{Name: name, Passed: true, Detail: "path not found; skipped"}
		}
	}
	free, err := freeBytes(target)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("statfs failed (%v); skipped", err)}
	}
	if free < minFree {
		return Result{Name: name, Detail: fmt.Sprintf("%s (liberi: %d MB)", MsgDiskFull, free/(1024*1024))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MB free", free/(1024*1024))}
}

func freeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := statfs(path, &st); err != nil {
		return 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil //nolint:gosec
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external tools the configuration relies on.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	ffmpeg := deps.ResolveFFmpeg(cfg.Tools.FFmpeg)
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Required for conversion and download post-processing",
		},
		{
			Name:        "FFprobe",
			Command:     deps.ResolveFFprobe(cfg.Tools.FFprobe, ffmpeg),
			Description: "Used for conversion progress; optional",
			Optional:    true,
		},
		{
			Name:        "yt-dlp",
			Command:     deps.ResolveYtDlp(cfg.Tools.YtDlp),
			Description: "Required for downloads",
		},
		{
			Name:        "aria2c",
			Command:     deps.ResolveAria2c(cfg.Tools.Aria2c),
			Description: "Speeds up fragment downloads when present",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
