package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// executablePath is swapped in tests.
var executablePath = os.Executable

// commonDirs lists install locations searched after PATH.
var commonDirs = func() []string {
	if runtime.GOOS == "windows" {
		home, _ := os.UserHomeDir()
		return []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\Program Files (x86)\ffmpeg\bin`,
			filepath.Join(home, "AppData", "Local", "ffmpeg", "bin"),
		}
	}
	return []string{"/usr/local/bin", "/opt/homebrew/bin", "/usr/bin", "/snap/bin"}
}

// ResolveFFmpeg returns the ffmpeg binary to execute. Lookup order: the
// configured value, a sidecar next to the downconv executable, PATH, common
// install locations. When nothing is found the bare name is returned so
// callers surface a tool-not-found error at execution time.
func ResolveFFmpeg(configured string) string {
	return resolve(configured, "ffmpeg")
}

// ResolveFFprobe prefers an ffprobe sitting next to the resolved ffmpeg so
// both tools come from the same build.
func ResolveFFprobe(configured, ffmpegPath string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	if ffmpegPath != "" && filepath.IsAbs(ffmpegPath) {
		candidate := filepath.Join(filepath.Dir(ffmpegPath), executableName("ffprobe"))
		if isExecutableFile(candidate) {
			return candidate
		}
	}
	return resolve("", "ffprobe")
}

// ResolveYtDlp returns the yt-dlp binary to execute.
func ResolveYtDlp(configured string) string {
	return resolve(configured, "yt-dlp")
}

// ResolveAria2c returns the aria2c binary, or "" when it is not installed.
func ResolveAria2c(configured string) string {
	path := resolve(configured, "aria2c")
	if _, err := exec.LookPath(path); err != nil {
		return ""
	}
	return path
}

func resolve(configured, name string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	if exe, err := executablePath(); err == nil && exe != "" {
		candidate := filepath.Join(filepath.Dir(exe), executableName(name))
		if isExecutableFile(candidate) {
			return candidate
		}
	}
	if found, err := exec.LookPath(name); err == nil {
		return found
	}
	for _, dir := range commonDirs() {
		candidate := filepath.Join(dir, executableName(name))
		if isExecutableFile(candidate) {
			return candidate
		}
	}
	return name
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return isExecutable(info)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
