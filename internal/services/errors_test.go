package services_test

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"testing"

	"downconv/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConfiguration, "history", "open", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"history", "open", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestFailureExposesKindAndCause(t *testing.T) {
	cause := fmt.Errorf("write: %w", syscall.ENOSPC)
	err := services.Fail(services.ErrNonZeroExit, "No space left on device", cause)

	if err.Error() != "No space left on device" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, services.ErrNonZeroExit) {
		t.Fatal("expected kind marker")
	}
	if !errors.Is(err, syscall.ENOSPC) {
		t.Fatal("expected ENOSPC through cause chain")
	}
	if services.KindOf(err) != services.ErrNonZeroExit {
		t.Fatalf("unexpected kind %v", services.KindOf(err))
	}
}

func TestUserMessageUsesOutermostFailure(t *testing.T) {
	inner := services.Fail(services.ErrExtraction, "Impossibile estrarre informazioni. Verifica l'URL.", nil)
	wrapped := fmt.Errorf("download %s: %w", "https://example.com", inner)
	if got := services.UserMessage(wrapped); got != "Impossibile estrarre informazioni. Verifica l'URL." {
		t.Fatalf("unexpected user message %q", got)
	}
	if got := services.UserMessage(errors.New("plain")); got != "plain" {
		t.Fatalf("unexpected fallback %q", got)
	}
	if got := services.UserMessage(nil); got != "" {
		t.Fatalf("expected empty message for nil, got %q", got)
	}
}

func TestFailDefaultsKind(t *testing.T) {
	err := services.Fail(nil, "", errors.New("raw"))
	if !errors.Is(err, services.ErrUnexpected) {
		t.Fatal("expected ErrUnexpected default")
	}
	if err.Error() != "raw" {
		t.Fatalf("expected cause text, got %q", err.Error())
	}
	if services.KindOf(errors.New("x")) != services.ErrUnexpected {
		t.Fatal("expected unexpected kind for plain error")
	}
}

func TestDiskFullMatchesENOSPC(t *testing.T) {
	err := services.DiskFull(errors.New("No space left on device"))
	if !errors.Is(err, syscall.ENOSPC) || !errors.Is(err, services.ErrDiskFull) {
		t.Fatalf("expected ENOSPC and ErrDiskFull in chain, got %v", err)
	}
	if services.UserMessage(err) != services.MsgDiskFull {
		t.Fatalf("unexpected message %q", services.UserMessage(err))
	}

	wrapped := fmt.Errorf("write: %w", &os.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC})
	if !services.IsDiskFull(wrapped) {
		t.Fatal("expected raw ENOSPC to count as disk full")
	}
	if services.IsDiskFull(errors.New("other")) {
		t.Fatal("unexpected disk full match")
	}
}
