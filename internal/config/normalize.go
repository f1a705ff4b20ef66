package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeDownload()
	c.normalizeTools()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.Format = strings.ToLower(strings.TrimSpace(c.Conversion.Format))
	if c.Conversion.Format == "" {
		c.Conversion.Format = defaultConversionFormat
	}
	c.Conversion.Quality = strings.ToLower(strings.TrimSpace(c.Conversion.Quality))
	if c.Conversion.Quality == "" {
		c.Conversion.Quality = defaultConversionQuality
	}
	if c.Conversion.Workers == 0 {
		c.Conversion.Workers = defaultWorkers
	}
	if c.Conversion.TimeoutSeconds == 0 {
		c.Conversion.TimeoutSeconds = defaultConvertTimeout
	}
}

func (c *Config) normalizeDownload() {
	c.Download.Format = strings.TrimSpace(c.Download.Format)
	if c.Download.Format == "" {
		c.Download.Format = defaultDownloadFormat
	}
	c.Download.MergeFormat = strings.ToLower(strings.TrimSpace(c.Download.MergeFormat))
	if c.Download.MergeFormat == "" {
		c.Download.MergeFormat = defaultMergeFormat
	}
	c.Download.AudioCodec = strings.ToLower(strings.TrimSpace(c.Download.AudioCodec))
	c.Download.AudioQuality = strings.TrimSpace(c.Download.AudioQuality)
	if c.Download.AudioQuality == "" {
		c.Download.AudioQuality = defaultAudioQuality
	}
	if c.Download.HTTPChunkSize == 0 {
		c.Download.HTTPChunkSize = defaultHTTPChunkSize
	}
	if c.Download.ConcurrentFragments == 0 {
		c.Download.ConcurrentFragments = defaultConcurrentFragments
	}
	if c.Download.SocketTimeout == 0 {
		c.Download.SocketTimeout = defaultSocketTimeout
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		if value, ok := os.LookupEnv("DOWNCONV_FFMPEG"); ok {
			c.Tools.FFmpeg = strings.TrimSpace(value)
		}
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.YtDlp = strings.TrimSpace(c.Tools.YtDlp)
	if c.Tools.YtDlp == "" {
		if value, ok := os.LookupEnv("DOWNCONV_YTDLP"); ok {
			c.Tools.YtDlp = strings.TrimSpace(value)
		}
	}
	c.Tools.Aria2c = strings.TrimSpace(c.Tools.Aria2c)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
