package ytdlp

import (
	"errors"
	"os/exec"
	"testing"

	"downconv/internal/services"
)

func TestClassifyRules(t *testing.T) {
	exitErr := errors.New("exit status 1")
	cases := []struct {
		name    string
		line    string
		kind    error
		message string
	}{
		{"unavailable", "[youtube] abc: Video unavailable", services.ErrUnavailable, MsgUnavailable},
		{"private", "[youtube] abc: Private video. Sign in", services.ErrUnavailable, MsgUnavailable},
		{"geo", "The uploader has not made this video available in your country; geo restricted", services.ErrGeoRestricted, MsgGeoRestricted},
		{"ssl", "Unable to download webpage: [SSL: CERTIFICATE_VERIFY_FAILED] certificate verify failed", services.ErrSSL, MsgSSL},
		{"merge", "Could not merge formats", services.ErrMergeFailed, MsgPostProcessing},
		{"postprocessing", "Postprocessing: Conversion failed!", services.ErrPostProcessing, MsgPostProcessing},
		{"incomplete", "content too short (expected 100 bytes and served 10)", services.ErrIncomplete, MsgIncomplete},
		{"network", "Unable to download webpage: HTTP Error 503: Service Unavailable", services.ErrNetwork, MsgNetwork},
		{"unsupported", "Unsupported URL: https://example.com", services.ErrExtraction, MsgExtraction},
		{"generic", "something odd happened", services.ErrNonZeroExit, MsgGeneric},
		{"url with network", "Unsupported URL: https://example.com/network-news/clip", services.ErrExtraction, MsgExtraction},
		{"url with ssl", "Unsupported URL: https://classlessons.example.org/v/1", services.ErrExtraction, MsgExtraction},
		{"url with ffmpeg", "Unsupported URL: http://ffmpeg-fragments.example/download", services.ErrExtraction, MsgExtraction},
		{"id with network", "[youtube] network_clip: Video unavailable", services.ErrUnavailable, MsgUnavailable},
		{"url in unavailable", "[generic] Unable to download webpage: HTTP Error 404: Not Found (caused by <HTTPError 404> for https://connection-tips.example/ssl)", services.ErrNetwork, MsgNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Classify(exitErr, []string{tc.line})
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected kind %v, got %v", tc.kind, services.KindOf(err))
			}
			if got := services.UserMessage(err); got != tc.message {
				t.Fatalf("message = %q, want %q", got, tc.message)
			}
			if !errors.Is(err, exitErr) {
				t.Fatal("cause should remain reachable")
			}
		})
	}
}

func TestMatchTextStripsPrefixAndURLs(t *testing.T) {
	got := matchText([]string{"[youtube] dQw4w9WgXcQ: Video unavailable", "Unsupported URL: https://a.example/ssl?x=1"})
	want := "video unavailable\nunsupported url: <url>"
	if got != want {
		t.Fatalf("matchText = %q, want %q", got, want)
	}
}

func TestClassifyMergeIsPostProcessing(t *testing.T) {
	err := Classify(errors.New("exit status 1"), []string{"Could not merge formats"})
	if !errors.Is(err, services.ErrPostProcessing) {
		t.Fatal("merge failure should also match post-processing")
	}
}

func TestClassifyDiskFullWins(t *testing.T) {
	err := Classify(errors.New("exit status 1"), []string{
		"Unable to download webpage: HTTP Error 500",
		"[Errno 28] No space left on device",
	})
	if !services.IsDiskFull(err) {
		t.Fatalf("expected disk full, got %v", err)
	}
	if services.UserMessage(err) != services.MsgDiskFull {
		t.Fatalf("unexpected message %q", services.UserMessage(err))
	}
}

func TestClassifyToolNotFound(t *testing.T) {
	err := Classify(&exec.Error{Name: "yt-dlp", Err: exec.ErrNotFound}, nil)
	if !errors.Is(err, services.ErrToolNotFound) {
		t.Fatalf("expected tool not found, got %v", err)
	}
}

func TestClassifyKeepsExistingFailure(t *testing.T) {
	original := services.Fail(services.ErrTimeout, "slow", errors.New("deadline"))
	if got := Classify(original, []string{"Video unavailable"}); got != original {
		t.Fatalf("expected failure to pass through, got %v", got)
	}
}

func TestErrorText(t *testing.T) {
	if text, ok := errorText("ERROR: [generic] boom"); !ok || text != "[generic] boom" {
		t.Fatalf("errorText = %q, %v", text, ok)
	}
	if _, ok := errorText("WARNING: meh"); ok {
		t.Fatal("warnings are not errors")
	}
}
