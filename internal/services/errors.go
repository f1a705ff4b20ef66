package services

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// MsgDiskFull is shown whenever a job runs out of space, regardless of which
// tool reported it.
const MsgDiskFull = "Spazio disco esaurito. Libera spazio nella cartella output."

// Messages shared by the conversion and download paths.
const (
	MsgAlreadyExists    = "File già esistente (usa opzione sovrascrivi)"
	MsgPermissionDenied = "Impossibile scrivere nella cartella. Verifica i permessi."
)

// Markers for failures raised inside the orchestration layer and its tool
// adapters. Each user-facing failure carries exactly one of them.
var (
	ErrToolNotFound     = errors.New("tool not found")
	ErrTimeout          = errors.New("timeout")
	ErrNonZeroExit      = errors.New("non-zero exit")
	ErrDiskFull         = errors.New("disk full")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNetwork          = errors.New("network error")
	ErrExtraction       = errors.New("extraction error")
	ErrMergeFailed      = errors.New("merge failed")
	ErrCancelled        = errors.New("cancelled")
	ErrUnexpected       = errors.New("unexpected error")

	ErrUnavailable    = errors.New("unavailable")
	ErrGeoRestricted  = errors.New("geo restricted")
	ErrPostProcessing = errors.New("post-processing error")
	ErrIncomplete     = errors.New("incomplete download")
	ErrAlreadyExists  = errors.New("already exists")
	ErrSSL            = errors.New("ssl error")
	ErrDownload       = errors.New("download error")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Failure is a classified, user-presentable error. Error returns the message
// meant for the end user; the marker and the underlying cause stay reachable
// through errors.Is and errors.As.
type Failure struct {
	Kind    error
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if msg := strings.TrimSpace(f.Message); msg != "" {
		return msg
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	if f.Kind != nil {
		return f.Kind.Error()
	}
	return "failure"
}

func (f *Failure) Unwrap() []error {
	if f == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if f.Kind != nil {
		out = append(out, f.Kind)
	}
	if f.Err != nil {
		out = append(out, f.Err)
	}
	return out
}

// Fail builds a Failure. A nil kind is recorded as ErrUnexpected.
func Fail(kind error, message string, cause error) error {
	if kind == nil {
		kind = ErrUnexpected
	}
	return &Failure{Kind: kind, Message: message, Err: cause}
}

// DiskFull builds the out-of-space failure. The result matches both
// ErrDiskFull and syscall.ENOSPC.
func DiskFull(cause error) error {
	if cause == nil || !errors.Is(cause, syscall.ENOSPC) {
		cause = errors.Join(syscall.ENOSPC, cause)
	}
	return Fail(ErrDiskFull, MsgDiskFull, cause)
}

// IsDiskFull reports whether any error in err's chain signals exhausted space.
func IsDiskFull(err error) bool {
	return errors.Is(err, syscall.ENOSPC) || errors.Is(err, ErrDiskFull)
}

// UserMessage returns the message of the outermost Failure in err's chain,
// falling back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Error()
	}
	return err.Error()
}

// KindOf reports the marker of the outermost Failure in err's chain.
func KindOf(err error) error {
	var failure *Failure
	if errors.As(err, &failure) && failure.Kind != nil {
		return failure.Kind
	}
	if err == nil {
		return nil
	}
	return ErrUnexpected
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrUnexpected
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
