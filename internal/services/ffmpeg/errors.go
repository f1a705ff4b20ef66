package ffmpeg

import (
	"strings"
)

const (
	msgToolNotFound = "FFmpeg non trovato. Installalo e aggiungilo al PATH."
	msgGeneric      = "Errore FFmpeg"
)

var errorKeywords = []string{"error", "invalid", "no such file", "permission denied"}

const stderrTailLines = 20

// stderrLog keeps what error classification needs from a potentially long
// stderr stream: the first diagnostic line, the last non-empty line, and a
// short tail for logging.
type stderrLog struct {
	firstMatch string
	last       string
	diskFull   bool
	tail       []string
}

func (s *stderrLog) add(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	lower := strings.ToLower(trimmed)
	if s.firstMatch == "" {
		for _, kw := range errorKeywords {
			if strings.Contains(lower, kw) {
				s.firstMatch = trimmed
				break
			}
		}
	}
	if strings.Contains(lower, "no space left on device") {
		s.diskFull = true
	}
	s.last = trimmed
	if len(s.tail) == stderrTailLines {
		s.tail = s.tail[1:]
	}
	s.tail = append(s.tail, trimmed)
}

// message returns the user-facing diagnostic extracted from stderr.
func (s *stderrLog) message() string {
	switch {
	case s.firstMatch != "":
		return s.firstMatch
	case s.last != "":
		return s.last
	default:
		return msgGeneric
	}
}

// ParseError extracts the diagnostic line from a complete stderr capture.
func ParseError(stderr string) string {
	var log stderrLog
	for _, line := range strings.Split(stderr, "\n") {
		log.add(line)
	}
	return log.message()
}
