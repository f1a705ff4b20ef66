package ytdlp

import (
	"errors"
	"io/fs"
	"os/exec"
	"regexp"
	"strings"
	"syscall"

	"downconv/internal/services"
)

// User-facing messages for each failure kind.
const (
	MsgUnavailable    = "Video non disponibile (privato, eliminato o rimosso)"
	MsgGeoRestricted  = "Video non disponibile nella tua area geografica"
	MsgExtraction     = "Impossibile estrarre informazioni. Verifica l'URL."
	MsgPostProcessing = "Errore elaborazione file (FFmpeg)"
	MsgIncomplete     = "Download incompleto (connessione interrotta?)"
	MsgNetwork        = "Errore di rete. Riprova."
	MsgSSL            = "Errore certificato SSL"
	MsgDownload       = "Errore download"
	MsgGeneric        = "Errore yt-dlp"
	MsgToolNotFound   = "yt-dlp non trovato. Installalo e aggiungilo al PATH."
)

type rule struct {
	kind     error
	message  string
	patterns []string
}

// Rules are evaluated in order against the lower-cased ERROR text with the
// extractor prefix and URLs removed; the first rule with a matching pattern
// wins.
var rules = []rule{
	{services.ErrExtraction, MsgExtraction, []string{"unsupported url", "is not a valid url"}},
	{services.ErrGeoRestricted, MsgGeoRestricted, []string{"geo restrict", "geo-restrict", "not available in your country", "from your location"}},
	{services.ErrUnavailable, MsgUnavailable, []string{"video unavailable", "private video", "has been removed", "been terminated", "is not available", "is unavailable", "members-only", "this video has been deleted"}},
	{services.ErrSSL, MsgSSL, []string{"[ssl", "ssl:", "ssl error", "certificate verify failed"}},
	{services.ErrMergeFailed, MsgPostProcessing, []string{"could not merge", "merging of", "merger", "requested merging"}},
	{services.ErrPostProcessing, MsgPostProcessing, []string{"postprocessing", "post-processing", "ffmpeg", "ffprobe", "audio conversion failed"}},
	{services.ErrIncomplete, MsgIncomplete, []string{"content too short", "did not get any data", "incomplete", "fragment"}},
	{services.ErrAlreadyExists, services.MsgAlreadyExists, []string{"same file", "already exists"}},
	{services.ErrNetwork, MsgNetwork, []string{"http error", "urlopen error", "timed out", "connection", "network", "getaddrinfo", "name resolution", "unable to connect", "transporterror"}},
	{services.ErrExtraction, MsgExtraction, []string{"unable to extract", "extractor", "no video formats", "requested format is not available"}},
	{services.ErrDownload, MsgDownload, []string{"unable to download", "download"}},
}

var (
	// extractorPrefix matches "[youtube] dQw4w9WgXcQ: " at the start of a line.
	extractorPrefix = regexp.MustCompile(`^\[[^\]]+\]\s*[^\s:]+:\s*`)
	urlPattern      = regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://\S+`)
)

// matchText reduces ERROR lines to the words yt-dlp chose, so a URL or a
// video ID cannot steer the classification.
func matchText(lines []string) string {
	cleaned := make([]string, len(lines))
	for i, line := range lines {
		line = extractorPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		cleaned[i] = urlPattern.ReplaceAllString(line, "<url>")
	}
	return strings.ToLower(strings.Join(cleaned, "\n"))
}

// Classify maps an invocation error and the collected ERROR lines into a
// services.Failure. Exhausted disk space takes precedence over any rule.
func Classify(err error, errorLines []string) error {
	return classify(err, errorLines, false)
}

// classify is Classify with knowledge of whether yt-dlp had started its
// Merger step. A post-processing failure during a merge is reported as
// services.ErrMergeFailed, since yt-dlp only relays ffmpeg's last line.
func classify(err error, errorLines []string, merging bool) error {
	if err == nil {
		return nil
	}
	var failure *services.Failure
	if errors.As(err, &failure) {
		return err
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return services.Fail(services.ErrToolNotFound, MsgToolNotFound, err)
	}
	text := matchText(errorLines)
	if strings.Contains(text, "no space left on device") || errors.Is(err, syscall.ENOSPC) {
		return services.DiskFull(toolError(err, errorLines))
	}
	for _, r := range rules {
		for _, pattern := range r.patterns {
			if strings.Contains(text, pattern) {
				cause := toolError(err, errorLines)
				kind, message := r.kind, r.message
				if merging && kind == services.ErrPostProcessing {
					kind = services.ErrMergeFailed
				}
				if kind == services.ErrMergeFailed {
					cause = errors.Join(services.ErrPostProcessing, cause)
				}
				return services.Fail(kind, message, cause)
			}
		}
	}
	return services.Fail(services.ErrNonZeroExit, MsgGeneric, toolError(err, errorLines))
}

type invocationError struct {
	err   error
	lines []string
}

func (e *invocationError) Error() string {
	if len(e.lines) == 0 {
		return e.err.Error()
	}
	return e.err.Error() + ": " + e.lines[len(e.lines)-1]
}

func (e *invocationError) Unwrap() error { return e.err }

func toolError(err error, lines []string) error {
	if len(lines) == 0 {
		return err
	}
	return &invocationError{err: err, lines: append([]string(nil), lines...)}
}

// mergeStarted reports whether a stdout line announces yt-dlp's Merger step.
func mergeStarted(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "[Merger]")
}

// errorText strips the ERROR: prefix yt-dlp puts on fatal diagnostics.
func errorText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "ERROR:")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
