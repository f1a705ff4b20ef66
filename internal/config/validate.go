package config

import (
	"errors"
	"fmt"
	"strings"
)

// ConversionFormats lists the output formats with a dedicated encoder mapping.
var ConversionFormats = []string{"mp3", "flac", "m4a", "alac", "ogg", "wav", "opus"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	if c.Preflight.MinFreeMB < 0 {
		return errors.New("preflight.min_free_mb must be >= 0")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if !contains(ConversionFormats, c.Conversion.Format) {
		return fmt.Errorf("conversion.format %q is not supported (use one of %s)", c.Conversion.Format, strings.Join(ConversionFormats, ", "))
	}
	if !ValidQuality(c.Conversion.Quality) {
		return fmt.Errorf("conversion.quality %q must be \"lossless\" or a bitrate such as \"192k\"", c.Conversion.Quality)
	}
	if c.Conversion.Workers < 1 || c.Conversion.Workers > maxWorkers {
		return fmt.Errorf("conversion.workers must be between 1 and %d", maxWorkers)
	}
	if c.Conversion.TimeoutSeconds <= 0 {
		return errors.New("conversion.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if err := ensureNonNegativeMap(map[string]int{
		"download.retries":          c.Download.Retries,
		"download.fragment_retries": c.Download.FragmentRetries,
	}); err != nil {
		return err
	}
	if c.Download.ConcurrentFragments <= 0 {
		return errors.New("download.concurrent_fragments must be positive")
	}
	if c.Download.HTTPChunkSize <= 0 {
		return errors.New("download.http_chunk_size must be positive")
	}
	if c.Download.SocketTimeout <= 0 {
		return errors.New("download.socket_timeout must be positive (seconds)")
	}
	if strings.Contains(c.Download.Format, "+") && c.Download.MergeFormat == "" {
		return errors.New("download.merge_format must be set when download.format merges streams")
	}
	return nil
}

// ValidQuality reports whether q is "lossless" or a "<n>k" bitrate tier.
func ValidQuality(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "lossless" {
		return true
	}
	digits, ok := strings.CutSuffix(q, "k")
	if !ok || digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
