package logging

import (
	"context"
	"log/slog"

	"downconv/internal/services"
)

// Standard attribute keys.
const (
	FieldComponent       = "component"
	FieldRunID           = "run_id"
	FieldItem            = "item"
	FieldStage           = "stage"
	FieldEventType       = "event_type"
	FieldErrorHint       = "error_hint"
	FieldImpact          = "impact"
	FieldErrorKind       = "error_kind"
	FieldProgressPercent = "progress_percent"
)

// ContextFields returns the run, item and stage attributes carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	for _, f := range []struct {
		key string
		get func(context.Context) (string, bool)
	}{
		{FieldRunID, services.RunIDFromContext},
		{FieldItem, services.ItemFromContext},
		{FieldStage, services.StageFromContext},
	} {
		if v, ok := f.get(ctx); ok {
			fields = append(fields, slog.String(f.key, v))
		}
	}
	return fields
}

// WithContext returns logger tagged with the fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
