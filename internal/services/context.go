package services

import "context"

type contextKey int

const (
	runIDKey contextKey = iota
	itemKey
	stageKey
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithRunID tags ctx with the history run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return withString(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier, if any.
func RunIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, runIDKey) }

// WithItem tags ctx with the input file name or URL being processed.
func WithItem(ctx context.Context, item string) context.Context {
	return withString(ctx, itemKey, item)
}

// ItemFromContext returns the item label, if any.
func ItemFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, itemKey) }

// WithStage tags ctx with the job stage (convert, download, probe).
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage name, if any.
func StageFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, stageKey) }
