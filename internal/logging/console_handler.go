package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "15:04:05"

// consoleHandler renders one line per record:
//
//	14:02:11 WARN [convert] song.wav (convert) – conversion failed event_type=conversion_failed
//
// Info and above list the highlighted fields first and hide debug-only keys.
// Debug records list every field and, when enabled, the caller.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	pre       []field
	groups    []string
	addSource bool
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]field, 0, len(h.pre)+record.NumAttrs())
	fields = append(fields, h.pre...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.groups, attr)
		return true
	})
	fields = lastValueWins(fields)

	var component, item, stage string
	rest := make([]field, 0, len(fields))
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = f.text()
		case FieldItem:
			item = f.text()
		case FieldStage:
			stage = f.text()
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	if component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	if subject := FormatSubject(item, stage); subject != "" {
		b.WriteByte(' ')
		b.WriteString(subject)
	}
	b.WriteString(" – ")
	b.WriteString(message)

	debug := record.Level < slog.LevelInfo
	shown, hidden := rest, 0
	if !debug {
		shown, hidden = selectInfoFields(rest)
	}
	for _, f := range shown {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(formatField(f, debug)))
	}
	if hidden > 0 {
		fmt.Fprintf(&b, " (+%d hidden)", hidden)
	}
	if debug && h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.pre = append([]field(nil), h.pre...)
	for _, attr := range attrs {
		clone.pre = appendField(clone.pre, h.groups, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

const maxSubjectItem = 48

// FormatSubject joins the item and stage for the line header. Items longer
// than 48 runes keep their tail, where file names and video IDs live.
func FormatSubject(item, stage string) string {
	item = strings.TrimSpace(item)
	stage = strings.TrimSpace(stage)
	if runes := []rune(item); len(runes) > maxSubjectItem {
		item = "…" + string(runes[len(runes)-maxSubjectItem+1:])
	}
	switch {
	case item == "":
		return stage
	case stage == "":
		return item
	default:
		return item + " (" + stage + ")"
	}
}

type field struct {
	key   string
	value slog.Value
}

func (f field) text() string {
	if err, ok := f.value.Any().(error); ok && f.value.Kind() == slog.KindAny {
		return err.Error()
	}
	return f.value.String()
}

func appendField(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			groups = append(append([]string(nil), groups...), attr.Key)
		}
		for _, inner := range value.Group() {
			dst = appendField(dst, groups, inner)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(append(append([]string(nil), groups...), key), ".")
	}
	if key == "" {
		return dst
	}
	return append(dst, field{key: key, value: value})
}

// lastValueWins drops earlier duplicates of a key, keeping the first
// position and the latest value.
func lastValueWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
