package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"downconv/internal/jobs"
)

// Kind identifies which runner produced a run.
type Kind string

const (
	KindConvert  Kind = "convert"
	KindDownload Kind = "download"
)

// ParseKind validates a kind name.
func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindConvert, KindDownload:
		return k, nil
	default:
		return "", fmt.Errorf("unknown run kind %q", value)
	}
}

// Run is one recorded batch or queue.
type Run struct {
	ID         string
	Kind       Kind
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Failed     int
	Cancelled  bool
	Message    string
	SpecJSON   string
}

// FailedItem is one failed input or URL of a run.
type FailedItem struct {
	RunID    string
	Position int
	Item     string
	Detail   string
}

// NewRun starts a run record for kind with a fresh ID. spec is JSON-encoded
// so retries can rebuild it.
func NewRun(kind Kind, spec any, total int) (Run, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return Run{}, fmt.Errorf("encode run spec: %w", err)
	}
	return Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
		Total:     total,
		SpecJSON:  string(raw),
	}, nil
}

// Complete fills the terminal fields of r from out and returns the failed
// items to persist alongside it.
func (r *Run) Complete(out jobs.Outcome) []FailedItem {
	r.FinishedAt = time.Now().UTC()
	r.Cancelled = out.Cancelled
	r.Message = out.Message
	r.Succeeded = jobs.Succeeded(out.Results)
	r.Failed = len(jobs.Failures(out.Results))
	if out.Cancelled {
		return nil
	}

	details := make(map[string]string, len(out.Results))
	for _, res := range jobs.Failures(out.Results) {
		details[res.Item] = res.Detail
	}
	items := make([]FailedItem, 0, len(out.Failed))
	for i, item := range out.Failed {
		items = append(items, FailedItem{RunID: r.ID, Position: i, Item: item, Detail: details[item]})
	}
	return items
}

// DecodeSpec unmarshals the stored job spec into dst.
func (r Run) DecodeSpec(dst any) error {
	if err := json.Unmarshal([]byte(r.SpecJSON), dst); err != nil {
		return fmt.Errorf("decode run spec: %w", err)
	}
	return nil
}

// Status summarizes a run for listings.
func (r Run) Status() string {
	switch {
	case r.Cancelled:
		return "cancelled"
	case r.Failed > 0:
		return "failed"
	case r.Message != "":
		return "aborted"
	default:
		return "ok"
	}
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
