package main

import (
	"context"
	"log/slog"

	"downconv/internal/history"
	"downconv/internal/jobs"
	"downconv/internal/logging"
	"downconv/internal/notifications"
)

// recordRun completes run with out and persists it for --retry-failed and
// history. Failures are logged; they never change the command result.
func recordRun(ctx context.Context, c *commandContext, logger *slog.Logger, run history.Run, out jobs.Outcome) history.Run {
	failed := run.Complete(out)
	store, err := c.historyStore()
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable; run not recorded", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "--retry-failed will not see this run"),
		)
		return run
	}
	if err := store.Record(ctx, run, failed); err != nil {
		logging.WarnWithContext(logger, "history write failed; run not recorded", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "--retry-failed will not see this run"),
		)
		return run
	}
	logger.Debug("run recorded", logging.String(logging.FieldRunID, run.ID), logging.Int("failed", len(failed)))
	return run
}

// latestFailed returns the latest run of kind and its failed items.
func latestFailed(ctx context.Context, c *commandContext, kind history.Kind) (history.Run, []string, error) {
	store, err := c.historyStore()
	if err != nil {
		return history.Run{}, nil, err
	}
	run, err := store.Latest(ctx, kind)
	if err != nil {
		return history.Run{}, nil, err
	}
	items, err := store.FailedItems(ctx, run.ID)
	if err != nil {
		return history.Run{}, nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Item)
	}
	return run, out, nil
}

// notifyRun pushes the run summary when notifications are configured.
// Cancelled runs are not announced.
func notifyRun(ctx context.Context, c *commandContext, logger *slog.Logger, run history.Run) {
	if run.Cancelled {
		return
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return
	}
	svc := notifications.NewService(cfg)
	if run.Total > 0 && run.Succeeded+run.Failed > 0 {
		err = svc.NotifyRunCompleted(ctx, string(run.Kind), run.Succeeded, run.Failed, run.Duration())
	} else {
		err = svc.NotifyRunAborted(ctx, string(run.Kind), run.Message)
	}
	if err != nil {
		logging.WarnWithContext(logger, "run notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "no push sent for this run"),
		)
	}
}
