package logging

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// infoOrder lists the keys shown first on info and warning lines.
var infoOrder = []string{
	FieldEventType,
	"error_message",
	FieldErrorKind,
	FieldErrorHint,
	FieldImpact,
	"format",
	"quality",
	"input_count",
	"url_count",
	"succeeded",
	"failed",
	"cancelled",
	FieldProgressPercent,
	"extractor",
	"elapsed",
}

const maxInfoErrorLen = 200

// selectInfoFields orders fields for info-level output and counts the
// debug-only ones it hides.
func selectInfoFields(fields []field) ([]field, int) {
	rank := make(map[string]int, len(infoOrder))
	for i, key := range infoOrder {
		rank[key] = i
	}
	var first, rest []field
	hidden := 0
	for _, f := range fields {
		switch {
		case debugOnly(f.key):
			hidden++
		case hasRank(rank, f.key):
			first = append(first, f)
		default:
			rest = append(rest, f)
		}
	}
	sortByRank(first, rank)
	return append(first, rest...), hidden
}

func hasRank(rank map[string]int, key string) bool {
	_, ok := rank[key]
	return ok
}

func sortByRank(fields []field, rank map[string]int) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && rank[fields[j].key] < rank[fields[j-1].key]; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}

func debugOnly(key string) bool {
	switch key {
	case FieldRunID, "args", "command", "stderr_tail":
		return true
	}
	return strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir")
}

// formatField renders a value for the console. Info lines humanize sizes,
// durations and percentages and truncate long errors.
func formatField(f field, debug bool) string {
	v := f.value
	switch {
	case strings.HasSuffix(f.key, "_bytes") && v.Kind() == slog.KindInt64:
		if debug {
			return strconv.FormatInt(v.Int64(), 10)
		}
		return humanize.IBytes(uint64(max(v.Int64(), 0)))
	case f.key == FieldProgressPercent && v.Kind() == slog.KindFloat64:
		return humanize.FtoaWithDigits(v.Float64(), 1) + "%"
	case v.Kind() == slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case v.Kind() == slog.KindTime:
		return v.Time().Local().Format(time.DateTime)
	case v.Kind() == slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	}
	text := f.text()
	if !debug && (f.key == "error" || f.key == "error_message") {
		text = strings.TrimSpace(text)
		if runes := []rune(text); len(runes) > maxInfoErrorLen {
			text = string(runes[:maxInfoErrorLen]) + "…"
		}
	}
	return text
}
