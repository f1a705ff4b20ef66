package ytdlp

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ExtractAudio is the post-processor key converting downloads to audio.
const ExtractAudio = "FFmpegExtractAudio"

// PostProcessor describes one yt-dlp post-processing step.
type PostProcessor struct {
	Key     string
	Codec   string
	Quality string
}

// Request describes one download.
type Request struct {
	URL         string
	Dir         string
	Format      string
	MergeFormat string
	// RemuxFormat forces the final container of a single-stream download.
	RemuxFormat    string
	Overwrite      bool
	PostProcessors []PostProcessor
}

// Tuning carries the network flags passed to every download.
type Tuning struct {
	Retries             int
	FragmentRetries     int
	ConcurrentFragments int
	HTTPChunkSize       int64
	SocketTimeout       int
}

// DefaultTuning returns the flags used when none are configured.
func DefaultTuning() Tuning {
	return Tuning{
		Retries:             3,
		FragmentRetries:     10,
		ConcurrentFragments: 8,
		HTTPChunkSize:       10 * 1024 * 1024,
		SocketTimeout:       30,
	}
}

const aria2cArgs = "aria2c:-x16 -s16 -k1M"

// BuildArgs renders req into a yt-dlp argument vector. aria2c, when non-empty,
// names the external downloader to delegate to.
func BuildArgs(req Request, tuning Tuning, aria2c string) []string {
	args := []string{
		"--newline",
		"--no-colors",
		"--no-playlist",
		"--progress-template", progressTemplate,
		"-o", filepath.Join(req.Dir, "%(title)s.%(ext)s"),
		"-f", req.Format,
		"--retries", strconv.Itoa(tuning.Retries),
		"--fragment-retries", strconv.Itoa(tuning.FragmentRetries),
		"--http-chunk-size", strconv.FormatInt(tuning.HTTPChunkSize, 10),
		"--concurrent-fragments", strconv.Itoa(tuning.ConcurrentFragments),
		"--socket-timeout", strconv.Itoa(tuning.SocketTimeout),
	}
	if req.Overwrite {
		args = append(args, "--force-overwrites")
	} else {
		args = append(args, "--no-overwrites")
	}
	if merge := strings.TrimSpace(req.MergeFormat); merge != "" && MergesStreams(req.Format) {
		args = append(args, "--merge-output-format", merge)
	}
	if remux := strings.TrimSpace(req.RemuxFormat); remux != "" {
		args = append(args, "--remux-video", remux)
	}
	for _, pp := range req.PostProcessors {
		args = append(args, postProcessorArgs(pp)...)
	}
	if aria2c = strings.TrimSpace(aria2c); aria2c != "" {
		args = append(args, "--downloader", aria2c, "--downloader-args", aria2cArgs)
	}
	return append(args, "--", req.URL)
}

// MergesStreams reports whether format selects separate streams to merge.
func MergesStreams(format string) bool {
	return strings.Contains(format, "+")
}

func postProcessorArgs(pp PostProcessor) []string {
	switch pp.Key {
	case ExtractAudio:
		args := []string{"-x"}
		if codec := strings.TrimSpace(pp.Codec); codec != "" {
			args = append(args, "--audio-format", codec)
		}
		if quality := strings.TrimSpace(pp.Quality); quality != "" {
			args = append(args, "--audio-quality", quality)
		}
		return args
	case "FFmpegMetadata":
		return []string{"--embed-metadata"}
	case "EmbedThumbnail":
		return []string{"--embed-thumbnail"}
	default:
		return nil
	}
}
