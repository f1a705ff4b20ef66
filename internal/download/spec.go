package download

import (
	"fmt"
	"strings"

	"downconv/internal/services"
	"downconv/internal/services/ytdlp"
)

// Format aliases understood by the runner in addition to raw yt-dlp selectors.
const (
	FormatBest      = "best"
	FormatBestVideo = "best_video"
	FormatOptimal   = "optimal"
)

// Defaults applied by Normalize.
const (
	DefaultFormat      = "bestvideo+bestaudio/best"
	DefaultMergeFormat = "mp4"
)

// JobSpec describes one download.
type JobSpec struct {
	URL            string
	Dir            string
	Format         string
	PostProcessors []ytdlp.PostProcessor
	Overwrite      bool
	MergeFormat    string
}

// Normalize trims the fields and fills the format defaults. A format that
// merges streams always receives a merge container.
func (s JobSpec) Normalize() JobSpec {
	out := s
	out.URL = strings.TrimSpace(s.URL)
	out.Dir = strings.TrimSpace(s.Dir)
	out.Format = strings.TrimSpace(s.Format)
	if out.Format == "" {
		out.Format = DefaultFormat
	}
	out.MergeFormat = strings.ToLower(strings.TrimSpace(s.MergeFormat))
	if out.MergeFormat == "" && (ytdlp.MergesStreams(out.Format) || out.Format == FormatBestVideo) {
		out.MergeFormat = DefaultMergeFormat
	}
	out.PostProcessors = append([]ytdlp.PostProcessor(nil), s.PostProcessors...)
	return out
}

// Validate reports whether the spec can be handed to the downloader.
func (s JobSpec) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return services.Fail(services.ErrValidation, "URL mancante", nil)
	}
	if strings.TrimSpace(s.Dir) == "" {
		return services.Fail(services.ErrValidation, "Cartella di destinazione mancante", nil)
	}
	if ytdlp.MergesStreams(s.Format) && strings.TrimSpace(s.MergeFormat) == "" {
		return services.Fail(services.ErrValidation,
			fmt.Sprintf("Il formato %q richiede un contenitore di unione", s.Format), nil)
	}
	return nil
}

// QueueSpec describes a sequential download queue sharing one destination
// and format.
type QueueSpec struct {
	URLs           []string
	Dir            string
	Format         string
	PostProcessors []ytdlp.PostProcessor
	Overwrite      bool
	MergeFormat    string
}

// WithURLs returns a copy of the queue targeting urls, typically the Failed
// list of a previous run.
func (q QueueSpec) WithURLs(urls []string) QueueSpec {
	out := q
	out.URLs = append([]string(nil), urls...)
	out.PostProcessors = append([]ytdlp.PostProcessor(nil), q.PostProcessors...)
	return out
}

// Job returns the JobSpec for one URL of the queue.
func (q QueueSpec) Job(url string) JobSpec {
	return JobSpec{
		URL:            url,
		Dir:            q.Dir,
		Format:         q.Format,
		PostProcessors: append([]ytdlp.PostProcessor(nil), q.PostProcessors...),
		Overwrite:      q.Overwrite,
		MergeFormat:    q.MergeFormat,
	}
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
