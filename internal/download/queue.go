package download

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"downconv/internal/jobs"
	"downconv/internal/logging"
	"downconv/internal/services"
	"downconv/internal/services/ytdlp"
	"downconv/internal/textutil"
)

// RunQueue downloads every URL of qs in order and returns the terminal
// outcome. flag may be nil; report may be nil.
func (r *Runner) RunQueue(ctx context.Context, qs QueueSpec, flag *jobs.Flag, report jobs.Reporter) (out jobs.Outcome) {
	ctx = services.WithStage(ctx, "download")
	logger := logging.WithContext(ctx, r.logger)
	defer func() {
		if rec := recover(); rec != nil {
			logging.ErrorWithContext(logger, "download queue panicked", "download_panic",
				logging.String("panic", fmt.Sprint(rec)),
			)
			out = jobs.Outcome{Message: fmt.Sprintf("Errore imprevisto: %v", rec)}
		}
	}()

	urls := cleanURLs(qs.URLs)
	total := len(urls)
	if total == 0 {
		return jobs.Outcome{Success: true}
	}

	if res := r.preflight(qs.Dir); !res.Passed {
		logging.WarnWithContext(logger, "download preflight failed", "download_preflight_failed",
			logging.String("download_dir", qs.Dir),
			logging.String("check", res.Name),
			logging.String("error_message", res.Detail),
			logging.String(logging.FieldErrorHint, "choose another download folder or free space"),
			logging.String(logging.FieldImpact, "no URLs were downloaded"),
		)
		return jobs.Outcome{Message: res.Detail}
	}

	logger.Info("download queue started",
		logging.Int("url_count", total),
		logging.String("format", qs.Format),
	)
	start := time.Now()
	emit := func(ev jobs.Event) {
		if !flag.Cancelled() {
			report.Emit(ev)
		}
	}

	results := make([]jobs.ItemResult, 0, total)
	for i, url := range urls {
		if flag.Cancelled() {
			logger.Info("download queue cancelled",
				logging.Int("completed", i),
				logging.Int("url_count", total),
			)
			return jobs.Outcome{Message: jobs.CancelledMessage, Cancelled: true}
		}
		emit(jobs.Event{Kind: jobs.EventItemStarted, Current: i, Total: total, Label: fmt.Sprintf("Scaricando %d di %d...", i+1, total)})
		res := r.downloadItem(ctx, qs.Job(url), i, total, emit)
		results = append(results, res)
		emit(jobs.Event{Kind: jobs.EventItemDone, Current: i + 1, Total: total, Label: jobs.ShortenURL(url)})
	}

	logger.Info("download queue finished",
		logging.Int("succeeded", jobs.Succeeded(results)),
		logging.Int("failed", len(jobs.Failures(results))),
		logging.Duration("elapsed", time.Since(start)),
	)

	ok, msg := jobs.Summarize(results, jobs.SummaryOptions{Noun: "URL", Label: jobs.ShortenURL, BareSingle: true})
	out = jobs.Outcome{Success: ok, Message: msg, Results: results}
	for _, f := range jobs.Failures(results) {
		out.Failed = append(out.Failed, f.Item)
	}
	return out
}

func (r *Runner) downloadItem(ctx context.Context, spec JobSpec, index, total int, emit func(jobs.Event)) (res jobs.ItemResult) {
	ctx = services.WithItem(ctx, jobs.ShortenURL(spec.URL))
	logger := logging.WithContext(ctx, r.logger)
	res = jobs.ItemResult{Item: spec.URL}
	defer func() {
		if rec := recover(); rec != nil {
			logging.ErrorWithContext(logger, "download panicked", "download_panic",
				logging.String("panic", fmt.Sprint(rec)),
			)
			res = jobs.ItemResult{Item: spec.URL, Detail: fmt.Sprint(rec)}
		}
	}()

	sampler := logging.NewProgressSampler(10)
	onProgress := func(p ytdlp.Progress) {
		pct := progressPercent(p)
		label := StatusText(index+1, total, p)
		if sampler.ShouldLog(p.Status, pct) {
			logger.Debug("download progress",
				logging.Float64(logging.FieldProgressPercent, pct),
				logging.Int64("downloaded_bytes", p.DownloadedBytes),
				logging.Int64("total_bytes", p.TotalBytes),
			)
		}
		emit(jobs.Event{Kind: jobs.EventStatus, Current: index, Total: total, Label: label, Percent: pct})
	}

	if err := r.Download(ctx, spec, onProgress); err != nil {
		msg := services.UserMessage(err)
		logging.WarnWithContext(logger, "download failed", "download_failed",
			append(logging.FailureAttrs(err, services.KindOf(err).Error(), msg),
				logging.String(logging.FieldErrorHint, "check the URL or retry the failed subset"),
				logging.String(logging.FieldImpact, "URL skipped; queue continues"),
			)...,
		)
		res.Detail = msg
		return res
	}
	res.Success = true
	logger.Info("download completed")
	return res
}

// StatusText renders the per-URL status line from whichever fields p
// carries. The result is ASCII only.
func StatusText(current, total int, p ytdlp.Progress) string {
	parts := []string{fmt.Sprintf("%d di %d", current, total)}
	if pct := strings.TrimSpace(p.PercentText); pct != "" {
		parts = append(parts, pct)
	}
	if speed := strings.TrimSpace(p.SpeedText); speed != "" {
		parts = append(parts, speed)
	}
	if eta := strings.TrimSpace(p.ETAText); eta != "" {
		parts = append(parts, "fine tra "+eta)
	}
	return textutil.ASCII(strings.Join(parts, " | "))
}

// progressPercent returns the event's completion in [0,100], or -1 when
// unknown.
func progressPercent(p ytdlp.Progress) float64 {
	if p.Status == "finished" {
		return 100
	}
	if text := strings.TrimSuffix(strings.TrimSpace(p.PercentText), "%"); text != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return min(max(v, 0), 100)
		}
	}
	if p.TotalBytes > 0 {
		return min(float64(p.DownloadedBytes)/float64(p.TotalBytes)*100, 100)
	}
	return -1
}
