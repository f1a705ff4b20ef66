package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"downconv/internal/config"
	"downconv/internal/convert"
	"downconv/internal/deps"
	"downconv/internal/history"
	"downconv/internal/logging"
	"downconv/internal/preflight"
	"downconv/internal/services"
	"downconv/internal/services/ffmpeg"
)

// convertRecord is the persisted form of a conversion spec.
type convertRecord struct {
	Inputs      []string `json:"inputs"`
	Format      string   `json:"format"`
	Quality     string   `json:"quality"`
	OutputDir   string   `json:"output_dir,omitempty"`
	SameFolder  bool     `json:"same_folder"`
	Overwrite   bool     `json:"overwrite"`
	Concurrency int      `json:"concurrency"`
}

func (r convertRecord) spec() convert.Spec {
	placement := convert.SharedFolder(r.OutputDir)
	if r.SameFolder {
		placement = convert.NextToInput()
	}
	return convert.Spec{
		Inputs:      r.Inputs,
		Format:      r.Format,
		Quality:     r.Quality,
		Placement:   placement,
		Overwrite:   r.Overwrite,
		Concurrency: r.Concurrency,
	}
}

type convertOptions struct {
	format      string
	quality     string
	outputDir   string
	sameFolder  bool
	overwrite   bool
	workers     int
	retryFailed bool
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert audio files with ffmpeg",
		Long: "Convert audio files in parallel. Formats: " + strings.Join(config.ConversionFormats, ", ") +
			". Lossless formats ignore --quality.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerFor(cmd)

			record, err := buildConvertRecord(cmd, ctx, cfg, opts, args)
			if err != nil {
				return err
			}
			if len(record.Inputs) == 0 {
				if opts.retryFailed {
					fmt.Fprintln(cmd.OutOrStdout(), "Nessun file fallito da riprovare.")
					return nil
				}
				return errors.New("specify at least one input file")
			}

			ffmpegPath := deps.ResolveFFmpeg(cfg.Tools.FFmpeg)
			client, err := ffmpeg.New(ffmpegPath,
				ffmpeg.WithFFprobe(deps.ResolveFFprobe(cfg.Tools.FFprobe, ffmpegPath)),
				ffmpeg.WithTimeout(time.Duration(cfg.Conversion.TimeoutSeconds)*time.Second),
				ffmpeg.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			runner := convert.NewRunner(client,
				convert.WithPreflight(preflight.Output(cfg.MinFreeBytes())),
				convert.WithLogger(logger),
			)

			run, err := history.NewRun(history.KindConvert, record, len(record.Inputs))
			if err != nil {
				return err
			}
			runCtx := services.WithRunID(cmd.Context(), run.ID)

			view := newProgressView(cmd.ErrOrStderr())
			out := runner.Run(runCtx, record.spec(), ctx.flag, view.Reporter())
			view.Close()

			runLogger := logging.WithContext(runCtx, logger)
			run = recordRun(runCtx, ctx, runLogger, run, out)
			notifyRun(runCtx, ctx, runLogger, run)
			return printOutcome(cmd.OutOrStdout(), out,
				fmt.Sprintf("Conversione completata: %d file.", len(out.Results)))
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format (default from config)")
	cmd.Flags().StringVarP(&opts.quality, "quality", "q", "", "Bitrate such as 320k, or lossless")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Shared output folder (default from config)")
	cmd.Flags().BoolVar(&opts.sameFolder, "same-folder", false, "Write each output next to its input")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace existing outputs")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Parallel conversions (default from config)")
	cmd.Flags().BoolVar(&opts.retryFailed, "retry-failed", false, "Retry the failed files of the last conversion")
	return cmd
}

func buildConvertRecord(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, opts convertOptions, args []string) (convertRecord, error) {
	var record convertRecord
	if opts.retryFailed {
		run, failed, err := latestFailed(cmd.Context(), ctx, history.KindConvert)
		if err != nil {
			if errors.Is(err, history.ErrRunNotFound) {
				return convertRecord{}, nil
			}
			return convertRecord{}, err
		}
		if err := run.DecodeSpec(&record); err != nil {
			return convertRecord{}, err
		}
		record.Inputs = failed
	} else {
		record = convertRecord{
			Format:      cfg.Conversion.Format,
			Quality:     cfg.Conversion.Quality,
			OutputDir:   cfg.Paths.OutputDir,
			SameFolder:  cfg.Conversion.SameFolder,
			Overwrite:   cfg.Conversion.Overwrite,
			Concurrency: cfg.Conversion.Workers,
		}
		for _, arg := range args {
			path, err := config.ExpandPath(arg)
			if err != nil {
				return convertRecord{}, err
			}
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			record.Inputs = append(record.Inputs, path)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		format := ffmpeg.NormalizeFormat(opts.format)
		if !slices.Contains(config.ConversionFormats, format) {
			return convertRecord{}, fmt.Errorf("unsupported format %q (choose one of %s)", opts.format, strings.Join(config.ConversionFormats, ", "))
		}
		record.Format = format
	}
	if flags.Changed("quality") {
		if !config.ValidQuality(opts.quality) {
			return convertRecord{}, fmt.Errorf("invalid quality %q", opts.quality)
		}
		record.Quality = opts.quality
	}
	if flags.Changed("output") {
		dir, err := config.ExpandPath(opts.outputDir)
		if err != nil {
			return convertRecord{}, err
		}
		record.OutputDir = dir
		record.SameFolder = false
	}
	if flags.Changed("same-folder") {
		record.SameFolder = opts.sameFolder
	}
	if flags.Changed("overwrite") {
		record.Overwrite = opts.overwrite
	}
	if flags.Changed("workers") {
		if opts.workers <= 0 {
			return convertRecord{}, errors.New("--workers must be positive")
		}
		record.Concurrency = opts.workers
	}
	return record, nil
}
