package history

import (
	"errors"
	"time"
)

const runColumns = "id, kind, started_at, finished_at, total, succeeded, failed, cancelled, message, spec_json"

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		kind        string
		startedRaw  string
		finishedRaw string
		cancelled   int64
	)
	if err := scanner.Scan(
		&run.ID,
		&kind,
		&startedRaw,
		&finishedRaw,
		&run.Total,
		&run.Succeeded,
		&run.Failed,
		&cancelled,
		&run.Message,
		&run.SpecJSON,
	); err != nil {
		return Run{}, err
	}
	run.Kind = Kind(kind)
	run.Cancelled = cancelled != 0
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		value = time.Now()
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
