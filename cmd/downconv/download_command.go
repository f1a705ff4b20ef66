package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"downconv/internal/config"
	"downconv/internal/deps"
	"downconv/internal/download"
	"downconv/internal/history"
	"downconv/internal/jobs"
	"downconv/internal/logging"
	"downconv/internal/preflight"
	"downconv/internal/runlock"
	"downconv/internal/services"
	"downconv/internal/services/ytdlp"
)

type downloadOptions struct {
	dir          string
	format       string
	mergeFormat  string
	overwrite    bool
	extractAudio bool
	audioCodec   string
	audioQuality string
	batchFile    string
	checkURLs    bool
	retryFailed  bool
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var opts downloadOptions

	cmd := &cobra.Command{
		Use:   "download [urls...]",
		Short: "Download URLs sequentially with yt-dlp",
		Long: "Download URLs one at a time. --format accepts a yt-dlp selector or one of the aliases " +
			"best (audio), best_video and optimal (per-site audio preference).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerFor(cmd)

			qs, err := buildQueueSpec(cmd, ctx, cfg, opts, args)
			if err != nil {
				return err
			}
			if len(qs.URLs) == 0 {
				if opts.retryFailed {
					fmt.Fprintln(cmd.OutOrStdout(), "Nessun URL fallito da riprovare.")
					return nil
				}
				return errors.New("specify at least one URL")
			}

			lock, err := runlock.Acquire(cfg.DownloadLockPath())
			if err != nil {
				if errors.Is(err, runlock.ErrBusy) {
					return errors.New(services.UserMessage(err))
				}
				return err
			}
			defer func() { _ = lock.Release() }()

			clientOpts := []ytdlp.Option{
				ytdlp.WithTuning(ytdlp.Tuning{
					Retries:             cfg.Download.Retries,
					FragmentRetries:     cfg.Download.FragmentRetries,
					ConcurrentFragments: cfg.Download.ConcurrentFragments,
					HTTPChunkSize:       cfg.Download.HTTPChunkSize,
					SocketTimeout:       cfg.Download.SocketTimeout,
				}),
				ytdlp.WithLogger(logger),
			}
			if cfg.Download.UseAria2c {
				clientOpts = append(clientOpts, ytdlp.WithAria2c(deps.ResolveAria2c(cfg.Tools.Aria2c)))
			}
			client, err := ytdlp.New(deps.ResolveYtDlp(cfg.Tools.YtDlp), clientOpts...)
			if err != nil {
				return err
			}

			check := preflight.Output(cfg.MinFreeBytes())
			if opts.checkURLs && check(qs.Dir).Passed {
				warnUnsupported(cmd.Context(), cmd.ErrOrStderr(), ctx.flag, client.Supported, qs.URLs)
			}

			runner := download.NewRunner(client,
				download.WithPreflight(check),
				download.WithLogger(logger),
			)

			run, err := history.NewRun(history.KindDownload, qs, len(qs.URLs))
			if err != nil {
				return err
			}
			runCtx := services.WithRunID(cmd.Context(), run.ID)

			view := newProgressView(cmd.ErrOrStderr())
			out := runner.RunQueue(runCtx, qs, ctx.flag, view.Reporter())
			view.Close()

			runLogger := logging.WithContext(runCtx, logger)
			run = recordRun(runCtx, ctx, runLogger, run, out)
			notifyRun(runCtx, ctx, runLogger, run)
			return printOutcome(cmd.OutOrStdout(), out,
				fmt.Sprintf("Download completato: %d URL.", len(out.Results)))
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Destination folder (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "yt-dlp format selector or alias: best, best_video, optimal")
	cmd.Flags().StringVar(&opts.mergeFormat, "merge-format", "", "Container used when merging video and audio")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().BoolVarP(&opts.extractAudio, "extract-audio", "x", false, "Convert downloads to audio")
	cmd.Flags().StringVar(&opts.audioCodec, "audio-codec", "", "Codec for --extract-audio (default from config)")
	cmd.Flags().StringVar(&opts.audioQuality, "audio-quality", "", "Quality for --extract-audio (default from config)")
	cmd.Flags().StringVarP(&opts.batchFile, "batch-file", "a", "", "Read URLs from a file, one per line (- for stdin)")
	cmd.Flags().BoolVar(&opts.checkURLs, "check-urls", false, "Warn about URLs no dedicated extractor supports")
	cmd.Flags().BoolVar(&opts.retryFailed, "retry-failed", false, "Retry the failed URLs of the last download queue")
	return cmd
}

// warnUnsupported prints a warning for each URL that only the generic
// extractor handles. Each check is a yt-dlp invocation, so it stops as soon
// as the run is cancelled.
func warnUnsupported(ctx context.Context, w io.Writer, flag *jobs.Flag, supported func(context.Context, string) bool, urls []string) {
	for _, url := range urls {
		if flag.Cancelled() {
			return
		}
		if !supported(ctx, url) {
			fmt.Fprintf(w, "Attenzione: URL forse non supportato: %s\n", url)
		}
	}
}

func buildQueueSpec(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, opts downloadOptions, args []string) (download.QueueSpec, error) {
	var qs download.QueueSpec
	if opts.retryFailed {
		run, failed, err := latestFailed(cmd.Context(), ctx, history.KindDownload)
		if err != nil {
			if errors.Is(err, history.ErrRunNotFound) {
				return download.QueueSpec{}, nil
			}
			return download.QueueSpec{}, err
		}
		if err := run.DecodeSpec(&qs); err != nil {
			return download.QueueSpec{}, err
		}
		qs = qs.WithURLs(failed)
	} else {
		qs = download.QueueSpec{
			URLs:        append([]string(nil), args...),
			Dir:         cfg.Paths.DownloadDir,
			Format:      cfg.Download.Format,
			Overwrite:   cfg.Download.Overwrite,
			MergeFormat: cfg.Download.MergeFormat,
		}
		if opts.batchFile != "" {
			urls, err := readBatchFile(cmd.InOrStdin(), opts.batchFile)
			if err != nil {
				return download.QueueSpec{}, err
			}
			qs.URLs = append(qs.URLs, urls...)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		dir, err := config.ExpandPath(opts.dir)
		if err != nil {
			return download.QueueSpec{}, err
		}
		qs.Dir = dir
	}
	if flags.Changed("format") {
		qs.Format = strings.TrimSpace(opts.format)
	}
	if flags.Changed("merge-format") {
		qs.MergeFormat = strings.ToLower(strings.TrimSpace(opts.mergeFormat))
	}
	if flags.Changed("overwrite") {
		qs.Overwrite = opts.overwrite
	}
	if opts.extractAudio || flags.Changed("audio-codec") || flags.Changed("audio-quality") {
		codec := firstNonEmpty(opts.audioCodec, cfg.Download.AudioCodec)
		quality := firstNonEmpty(opts.audioQuality, cfg.Download.AudioQuality)
		qs.PostProcessors = []ytdlp.PostProcessor{{Key: ytdlp.ExtractAudio, Codec: codec, Quality: quality}}
	}

	if strings.TrimSpace(qs.Dir) == "" {
		return download.QueueSpec{}, errors.New("download directory not configured (set paths.download_dir or pass --dir)")
	}
	return qs, nil
}

func readBatchFile(stdin io.Reader, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(expanded)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.ContainsAny(line[:1], "#;]") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return urls, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
