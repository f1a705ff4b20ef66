package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	DownloadDir string `toml:"download_dir"`
	LogDir      string `toml:"log_dir"`
	StateDir    string `toml:"state_dir"`
}

// Conversion contains defaults for batch conversions.
type Conversion struct {
	Format         string `toml:"format"`
	Quality        string `toml:"quality"`
	Overwrite      bool   `toml:"overwrite"`
	SameFolder     bool   `toml:"same_folder"`
	Workers        int    `toml:"workers"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Download contains defaults for URL downloads and the tuning passed to yt-dlp.
type Download struct {
	Format              string `toml:"format"`
	MergeFormat         string `toml:"merge_format"`
	Overwrite           bool   `toml:"overwrite"`
	AudioCodec          string `toml:"audio_codec"`
	AudioQuality        string `toml:"audio_quality"`
	Retries             int    `toml:"retries"`
	FragmentRetries     int    `toml:"fragment_retries"`
	ConcurrentFragments int    `toml:"concurrent_fragments"`
	HTTPChunkSize       int64  `toml:"http_chunk_size"`
	SocketTimeout       int    `toml:"socket_timeout"`
	UseAria2c           bool   `toml:"use_aria2c"`
}

// Tools overrides external binary locations. Empty values use discovery.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	YtDlp   string `toml:"ytdlp"`
	Aria2c  string `toml:"aria2c"`
}

// Preflight contains thresholds for the checks run before each batch.
type Preflight struct {
	MinFreeMB int `toml:"min_free_mb"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications configures ntfy pushes sent when a run finishes.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for downconv.
//
// Configuration sections:
//   - Paths: default output, download, log, and state directories
//   - Conversion: format, quality, placement, and worker defaults
//   - Download: format selection, merge container, and yt-dlp tuning
//   - Tools: explicit binary locations
//   - Preflight: free-space threshold
//   - Logging: log format and level
//   - Notifications: optional ntfy topic
type Config struct {
	Paths         Paths         `toml:"paths"`
	Conversion    Conversion    `toml:"conversion"`
	Download      Download      `toml:"download"`
	Tools         Tools         `toml:"tools"`
	Preflight     Preflight     `toml:"preflight"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

const (
	configDirName   = "downconv"
	configFileName  = "config.toml"
	projectFileName = "downconv.toml"
)

// DefaultConfigPath returns ~/.config/downconv/config.toml, expanded.
func DefaultConfigPath() (string, error) {
	return expandPath(filepath.Join("~", ".config", configDirName, configFileName))
}

// Load reads the configuration at path, or the first existing default
// location when path is empty, over the built-in defaults. It returns the
// normalized and validated config, the file it came from, and whether that
// file existed.
func Load(path string) (*Config, string, bool, error) {
	source, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", source, err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, source, exists, nil
}

// locate resolves the config file to read. An explicit path is used as
// given even when missing; otherwise the user config and then ./downconv.toml
// are tried, falling back to the user config location.
func locate(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		found, err := isFile(expanded)
		return expanded, found, err
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectFileName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if found, _ := isFile(candidate); found {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	}
	return !info.IsDir(), nil
}

// EnsureDirectories creates the log and state directories. Output folders
// are created by the runners' preflight checks when a batch starts.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MinFreeBytes returns the preflight free-space threshold in bytes.
func (c *Config) MinFreeBytes() uint64 {
	mb := c.Preflight.MinFreeMB
	if mb <= 0 {
		mb = defaultMinFreeMB
	}
	return uint64(mb) << 20
}

// HistoryPath returns the SQLite database recording past runs.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// DownloadLockPath returns the lock file guarding the download queue.
func (c *Config) DownloadLockPath() string {
	return filepath.Join(c.Paths.StateDir, "download.lock")
}

// expandPath resolves a leading ~ or ~/ to the home directory and makes
// the result absolute. Empty input stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the same expansion used for configured paths.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

func defaultStateDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); base != "" {
		return filepath.Join(base, configDirName)
	}
	return filepath.Join("~", ".local", "state", configDirName)
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
