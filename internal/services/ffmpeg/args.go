package ffmpeg

import (
	"path/filepath"
	"strings"
)

const defaultBitrate = "192k"

var vorbisQuality = map[string]string{
	"lossless": "9",
	"320k":     "10",
	"192k":     "8",
	"128k":     "6",
}

// NormalizeFormat lower-cases and trims a format name.
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// IsLossless reports whether format always encodes losslessly.
func IsLossless(format string) bool {
	switch NormalizeFormat(format) {
	case "flac", "alac", "m4a", "wav":
		return true
	default:
		return false
	}
}

// BuildArgs returns the ffmpeg argument vector converting input into output.
// verbose selects the info log level so time markers reach stderr.
func BuildArgs(input, output, format, quality string, overwrite, verbose bool) []string {
	level := "error"
	if verbose {
		level = "info"
	}
	args := []string{
		"-hide_banner",
		"-loglevel", level,
		"-i", input,
		"-vn",
		"-map_metadata", "0",
	}
	if overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	args = append(args, codecArgs(format, quality)...)
	return append(args, output)
}

func codecArgs(format, quality string) []string {
	quality = strings.ToLower(strings.TrimSpace(quality))
	switch NormalizeFormat(format) {
	case "mp3":
		return []string{"-c:a", "libmp3lame", "-id3v2_version", "3", "-ab", bitrate(quality)}
	case "flac":
		return []string{"-c:a", "flac"}
	case "m4a", "alac":
		return []string{"-c:a", "alac", "-movflags", "use_metadata_tags"}
	case "ogg":
		q, ok := vorbisQuality[quality]
		if !ok {
			q = "8"
		}
		return []string{"-c:a", "libvorbis", "-q:a", q}
	case "wav":
		return []string{"-c:a", "pcm_s16le"}
	case "opus":
		return []string{"-c:a", "libopus", "-b:a", bitrate(quality)}
	default:
		return []string{"-c:a", "copy"}
	}
}

func bitrate(quality string) string {
	switch {
	case quality == "lossless" || quality == "320k":
		return "320k"
	case strings.HasSuffix(quality, "k"):
		return quality
	default:
		return defaultBitrate
	}
}

// OutputPath forces the extension of path to match format. Unknown formats
// keep the path unchanged.
func OutputPath(path, format string) string {
	format = NormalizeFormat(format)
	ext := strings.ToLower(filepath.Ext(path))
	switch format {
	case "mp3", "flac", "ogg", "wav", "opus":
		if ext == "."+format {
			return path
		}
		return strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
	case "m4a", "alac":
		if ext == ".m4a" || ext == ".alac" {
			return path
		}
		return strings.TrimSuffix(path, filepath.Ext(path)) + ".m4a"
	default:
		return path
	}
}
