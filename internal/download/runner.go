package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"downconv/internal/logging"
	"downconv/internal/preflight"
	"downconv/internal/services"
	"downconv/internal/services/ytdlp"
)

// ProbeCacheTTL bounds how long extractor probes are reused.
const ProbeCacheTTL = 30 * time.Minute

// Downloader is the subset of the yt-dlp client the runner drives.
type Downloader interface {
	Download(ctx context.Context, req ytdlp.Request, onProgress func(ytdlp.Progress)) error
	Probe(ctx context.Context, url string) (ytdlp.Info, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithPreflight replaces the destination check run by queues.
func WithPreflight(check preflight.Func) Option {
	return func(r *Runner) {
		if check != nil {
			r.preflight = check
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes downloads and download queues.
type Runner struct {
	dl        Downloader
	preflight preflight.Func
	probes    *cache.Cache
	logger    *slog.Logger
}

// NewRunner constructs a Runner around dl.
func NewRunner(dl Downloader, opts ...Option) *Runner {
	r := &Runner{
		dl:        dl,
		preflight: preflight.Output(preflight.MinFreeBytes),
		probes:    cache.New(ProbeCacheTTL, 2*ProbeCacheTTL),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "download")
	return r
}

// Run downloads one job and reports (success, message). The message is
// empty on success.
func (r *Runner) Run(ctx context.Context, spec JobSpec, onProgress func(ytdlp.Progress)) (ok bool, msg string) {
	defer func() {
		if rec := recover(); rec != nil {
			ok, msg = false, fmt.Sprintf("Errore imprevisto: %v", rec)
		}
	}()
	if err := r.Download(ctx, spec, onProgress); err != nil {
		return false, services.UserMessage(err)
	}
	return true, ""
}

// Download resolves spec's format and runs the downloader, retrying a failed
// stream merge once with the single best stream.
func (r *Runner) Download(ctx context.Context, spec JobSpec, onProgress func(ytdlp.Progress)) error {
	spec = spec.Normalize()
	if err := spec.Validate(); err != nil {
		return err
	}
	ctx = services.WithStage(ctx, "download")
	logger := logging.WithContext(ctx, r.logger)

	format, post := r.resolveFormat(ctx, spec)
	req := ytdlp.Request{
		URL:            spec.URL,
		Dir:            spec.Dir,
		Format:         format,
		MergeFormat:    spec.MergeFormat,
		Overwrite:      spec.Overwrite,
		PostProcessors: post,
	}
	logger.Debug("download resolved",
		logging.String("format", format),
		logging.String("merge_format", spec.MergeFormat),
		logging.Int("post_processors", len(post)),
	)

	err := r.dl.Download(ctx, req, onProgress)
	if err != nil && ytdlp.MergesStreams(format) && errors.Is(err, services.ErrMergeFailed) && !services.IsDiskFull(err) {
		logging.WarnWithContext(logger, "stream merge failed; retrying with single stream", "download_merge_retry",
			logging.String("format", format),
			logging.String("merge_format", spec.MergeFormat),
			logging.String(logging.FieldErrorHint, "source streams cannot be remuxed together"),
			logging.String(logging.FieldImpact, "falling back to best combined stream"),
		)
		req.Format = "best"
		req.MergeFormat = ""
		req.RemuxFormat = spec.MergeFormat
		err = r.dl.Download(ctx, req, onProgress)
	}
	if err != nil && services.IsDiskFull(err) && !errors.Is(err, services.ErrDiskFull) {
		err = services.DiskFull(err)
	}
	return err
}

func (r *Runner) resolveFormat(ctx context.Context, spec JobSpec) (string, []ytdlp.PostProcessor) {
	switch spec.Format {
	case FormatBest:
		return "bestaudio/best", nil
	case FormatBestVideo:
		return "bestvideo+bestaudio/best", nil
	case FormatOptimal:
		return OptimalFormat(r.extractorKey(ctx, spec.URL)), spec.PostProcessors
	default:
		return spec.Format, spec.PostProcessors
	}
}

// extractorKey probes url once and caches the key. Failed probes cache
// nothing and yield an empty key.
func (r *Runner) extractorKey(ctx context.Context, url string) string {
	if cached, ok := r.probes.Get(url); ok {
		if key, ok := cached.(string); ok {
			return key
		}
	}
	info, err := r.dl.Probe(ctx, url)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "format probe failed", "download_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the URL or network"),
			logging.String(logging.FieldImpact, "using generic audio preference"),
		)
		return ""
	}
	r.probes.Set(url, info.ExtractorKey, cache.DefaultExpiration)
	return info.ExtractorKey
}
