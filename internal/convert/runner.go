package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"downconv/internal/jobs"
	"downconv/internal/logging"
	"downconv/internal/preflight"
	"downconv/internal/services"
	"downconv/internal/services/ffmpeg"
)

// Option configures a Runner.
type Option func(*Runner)

// WithPreflight replaces the output directory check.
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

// Runner executes conversion batches.
type Runner struct {
	conv      ffmpeg.Converter
	preflight preflight.Func
	logger    *slog.Logger
}

// NewRunner constructs a Runner around conv.
func NewRunner(conv ffmpeg.Converter, opts ...Option) *Runner {
	r := &Runner{
		conv:      conv,
		preflight: preflight.Output(preflight.MinFreeBytes),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "convert")
	return r
}

// Run converts every input of spec and returns the terminal outcome.
// flag may be nil; report may be nil.
func (r *Runner) Run(ctx context.Context, spec Spec, flag *jobs.Flag, report jobs.Reporter) (out jobs.Outcome) {
	ctx = services.WithStage(ctx, "convert")
	logger := logging.WithContext(ctx, r.logger)
	defer func() {
		if rec := recover(); rec != nil {
			logging.ErrorWithContext(logger, "conversion run panicked", "conversion_panic",
				logging.String("panic", fmt.Sprint(rec)),
			)
			out = jobs.Outcome{Message: fmt.Sprintf("Errore imprevisto: %v", rec)}
		}
	}()

	spec = spec.Normalize()
	total := len(spec.Inputs)
	if total == 0 {
		return jobs.Outcome{Success: true}
	}

	dir := spec.PrimaryDir()
	if res := r.preflight(dir); !res.Passed {
		logging.WarnWithContext(logger, "conversion preflight failed", "conversion_preflight_failed",
			logging.String("output_dir", dir),
			logging.String("check", res.Name),
			logging.String("error_message", res.Detail),
			logging.String(logging.FieldErrorHint, "choose another output folder or free space"),
			logging.String(logging.FieldImpact, "no files were converted"),
		)
		return jobs.Outcome{Message: res.Detail}
	}

	logger.Info("conversion started",
		logging.Int("input_count", total),
		logging.String("format", spec.Format),
		logging.String("quality", spec.Quality),
		logging.Int("workers", spec.Concurrency),
	)
	start := time.Now()

	emit := func(ev jobs.Event) {
		if !flag.Cancelled() {
			report.Emit(ev)
		}
	}

	var (
		mu        sync.Mutex
		results   = make([]jobs.ItemResult, 0, total)
		completed int
	)
	record := func(res jobs.ItemResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, res)
		completed++
		// Emitted under the lock so Current never goes backwards.
		emit(jobs.Event{Kind: jobs.EventItemDone, Current: completed, Total: total, Label: filepath.Base(res.Item)})
	}

	work := make(chan string)
	var wg sync.WaitGroup
	for range spec.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range work {
				record(r.convertOne(ctx, spec, input, total == 1, emit))
			}
		}()
	}

	cancelled := false
	for _, input := range spec.Inputs {
		if flag.Cancelled() {
			cancelled = true
			break
		}
		work <- input
	}
	close(work)
	wg.Wait()

	logger.Info("conversion finished",
		logging.Int("succeeded", jobs.Succeeded(results)),
		logging.Int("failed", len(jobs.Failures(results))),
		logging.Bool("cancelled", cancelled),
		logging.Duration("elapsed", time.Since(start)),
	)

	if cancelled {
		return jobs.Outcome{Message: jobs.CancelledMessage, Cancelled: true, Results: results}
	}

	ok, msg := jobs.Summarize(results, jobs.SummaryOptions{Noun: "file", Label: filepath.Base})
	out = jobs.Outcome{Success: ok, Message: msg, Results: results}
	for _, f := range jobs.Failures(results) {
		out.Failed = append(out.Failed, f.Item)
	}
	return out
}

func (r *Runner) convertOne(ctx context.Context, spec Spec, input string, single bool, emit func(jobs.Event)) (res jobs.ItemResult) {
	ctx = services.WithItem(ctx, filepath.Base(input))
	logger := logging.WithContext(ctx, r.logger)
	res = jobs.ItemResult{Item: input}
	defer func() {
		if rec := recover(); rec != nil {
			logging.ErrorWithContext(logger, "conversion panicked", "conversion_panic",
				logging.String("panic", fmt.Sprint(rec)),
			)
			res = jobs.ItemResult{Item: input, Detail: fmt.Sprint(rec)}
		}
	}()

	var sink func(float64)
	if single {
		label := filepath.Base(input)
		sink = func(pct float64) {
			emit(jobs.Event{Kind: jobs.EventPercent, Current: 0, Total: 1, Label: label, Percent: pct})
		}
	}

	_, err := r.conv.Convert(ctx, ffmpeg.Request{
		Input:     input,
		Output:    spec.OutputPath(input),
		Format:    spec.Format,
		Quality:   spec.Quality,
		Overwrite: spec.Overwrite,
	}, sink)
	if err != nil {
		msg := services.UserMessage(err)
		logging.WarnWithContext(logger, "conversion failed", "conversion_failed",
			append(logging.FailureAttrs(err, services.KindOf(err).Error(), msg),
				logging.String(logging.FieldErrorHint, "inspect the input file or ffmpeg output"),
				logging.String(logging.FieldImpact, "file skipped; batch continues"),
			)...,
		)
		res.Detail = msg
		return res
	}
	res.Success = true
	logger.Debug("conversion succeeded")
	return res
}
