package jobs

import (
	"fmt"
	"strings"
)

// MaxListedFailures caps the bulleted failure list.
const MaxListedFailures = 5

// SummaryOptions controls how Summarize renders failures.
type SummaryOptions struct {
	// Noun names the item kind in the header ("file", "URL").
	Noun string
	// Label maps an item identifier to its display form. Identity when nil.
	Label func(item string) string
	// BareSingle reports a lone failure as its detail only, without the label.
	BareSingle bool
}

// Summarize turns per-item results into (all succeeded, message). A single
// failure yields one line; several yield a bulleted list capped at
// MaxListedFailures plus a remainder count.
func Summarize(results []ItemResult, opts SummaryOptions) (bool, string) {
	failed := Failures(results)
	if len(failed) == 0 {
		return true, ""
	}
	label := opts.Label
	if label == nil {
		label = func(s string) string { return s }
	}
	noun := strings.TrimSpace(opts.Noun)
	if noun == "" {
		noun = "elementi"
	}

	if len(failed) == 1 {
		only := failed[0]
		if opts.BareSingle {
			return false, detailOrDefault(only.Detail)
		}
		return false, fmt.Sprintf("%s: %s", label(only.Item), detailOrDefault(only.Detail))
	}

	lines := make([]string, 0, MaxListedFailures+2)
	lines = append(lines, fmt.Sprintf("Errori su %d %s:", len(failed), noun))
	for i, r := range failed {
		if i == MaxListedFailures {
			break
		}
		lines = append(lines, fmt.Sprintf("  • %s: %s", label(r.Item), detailOrDefault(r.Detail)))
	}
	if extra := len(failed) - MaxListedFailures; extra > 0 {
		lines = append(lines, fmt.Sprintf("  ... e altri %d", extra))
	}
	return false, strings.Join(lines, "\n")
}

func detailOrDefault(detail string) string {
	if d := strings.TrimSpace(detail); d != "" {
		return d
	}
	return "errore sconosciuto"
}

// ShortenURL truncates long URLs for display: the first 60 characters
// followed by "...".
func ShortenURL(url string) string {
	const limit = 60
	runes := []rune(url)
	if len(runes) <= limit {
		return url
	}
	return string(runes[:limit]) + "..."
}
