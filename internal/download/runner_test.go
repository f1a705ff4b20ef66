package download_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"syscall"
	"testing"

	"downconv/internal/download"
	"downconv/internal/preflight"
	"downconv/internal/services"
	"downconv/internal/services/ytdlp"
)

type fakeDownloader struct {
	mu       sync.Mutex
	requests []ytdlp.Request
	probes   []string
	errs     map[string][]error
	progress []ytdlp.Progress
	info     ytdlp.Info
	probeErr error
	onCall   func(req ytdlp.Request)
}

func (f *fakeDownloader) Download(_ context.Context, req ytdlp.Request, onProgress func(ytdlp.Progress)) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	var err error
	if queue := f.errs[req.URL]; len(queue) > 0 {
		err = queue[0]
		f.errs[req.URL] = queue[1:]
	}
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(req)
	}
	for _, p := range f.progress {
		if onProgress != nil {
			onProgress(p)
		}
	}
	return err
}

func (f *fakeDownloader) Probe(_ context.Context, url string) (ytdlp.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, url)
	return f.info, f.probeErr
}

func (f *fakeDownloader) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func failWith(kind error, msg string) error {
	return services.Fail(kind, msg, errors.New("exit status 1"))
}

func passPreflight(calls *int) preflight.Func {
	return func(string) preflight.Result {
		*calls++
		return preflight.Result{Name: "stub", Passed: true}
	}
}

func newRunner(dl download.Downloader) *download.Runner {
	var checks int
	return download.NewRunner(dl, download.WithPreflight(passPreflight(&checks)))
}

func TestRunBestAliasDropsPostProcessors(t *testing.T) {
	dl := &fakeDownloader{}
	ok, msg := newRunner(dl).Run(context.Background(), download.JobSpec{
		URL:            "https://example.com/a",
		Dir:            "/tmp",
		Format:         download.FormatBest,
		PostProcessors: []ytdlp.PostProcessor{{Key: ytdlp.ExtractAudio, Codec: "mp3"}},
	}, nil)
	if !ok || msg != "" {
		t.Fatalf("unexpected result (%v, %q)", ok, msg)
	}
	req := dl.requests[0]
	if req.Format != "bestaudio/best" || len(req.PostProcessors) != 0 {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestRunBestVideoAliasMergesToMP4(t *testing.T) {
	dl := &fakeDownloader{}
	newRunner(dl).Run(context.Background(), download.JobSpec{URL: "u", Dir: "/tmp", Format: download.FormatBestVideo}, nil)
	req := dl.requests[0]
	if req.Format != "bestvideo+bestaudio/best" || req.MergeFormat != "mp4" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestRunOptimalUsesExtractorPolicyAndCachesProbe(t *testing.T) {
	dl := &fakeDownloader{info: ytdlp.Info{ExtractorKey: "Bandcamp"}}
	runner := newRunner(dl)
	spec := download.JobSpec{URL: "https://artist.bandcamp.com/track/x", Dir: "/tmp", Format: download.FormatOptimal}

	for range 2 {
		if ok, msg := runner.Run(context.Background(), spec, nil); !ok {
			t.Fatalf("unexpected failure %q", msg)
		}
	}
	if len(dl.probes) != 1 {
		t.Fatalf("expected one cached probe, got %d", len(dl.probes))
	}
	if got := dl.requests[1].Format; got != download.OptimalFormat("Bandcamp") || !strings.Contains(got, "acodec=flac") {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestRunOptimalProbeFailureFallsBackToGeneric(t *testing.T) {
	dl := &fakeDownloader{probeErr: errors.New("boom")}
	newRunner(dl).Run(context.Background(), download.JobSpec{URL: "u", Dir: "/tmp", Format: download.FormatOptimal}, nil)
	if got := dl.requests[0].Format; got != download.OptimalFormat("") {
		t.Fatalf("expected generic order, got %q", got)
	}
}

func TestRunMergeFailureRetriesOnceWithBest(t *testing.T) {
	dl := &fakeDownloader{errs: map[string][]error{
		"u": {failWith(services.ErrMergeFailed, ytdlp.MsgPostProcessing)},
	}}
	ok, msg := newRunner(dl).Run(context.Background(), download.JobSpec{
		URL: "u", Dir: "/tmp", Format: "bestvideo+bestaudio/best", MergeFormat: "mkv",
	}, nil)
	if !ok {
		t.Fatalf("expected retry to succeed, got %q", msg)
	}
	if dl.calls() != 2 {
		t.Fatalf("expected two attempts, got %d", dl.calls())
	}
	retry := dl.requests[1]
	if retry.Format != "best" || retry.RemuxFormat != "mkv" || retry.MergeFormat != "" {
		t.Fatalf("unexpected retry request %+v", retry)
	}
}

// mergeFailingExecutor fails its first run the way yt-dlp does when ffmpeg
// cannot merge the selected streams, then succeeds.
type mergeFailingExecutor struct {
	args [][]string
}

func (e *mergeFailingExecutor) Run(_ context.Context, _ string, args []string, onStdout, onStderr func(string)) error {
	e.args = append(e.args, args)
	if len(e.args) > 1 {
		return nil
	}
	onStdout(`[Merger] Merging formats into "/tmp/x/Title.mkv"`)
	onStderr("ERROR: Postprocessing: Conversion failed!")
	return errors.New("exit status 1")
}

func TestRunMergeFailureFromToolOutputRetries(t *testing.T) {
	exec := &mergeFailingExecutor{}
	client, err := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("ytdlp.New: %v", err)
	}
	ok, msg := newRunner(client).Run(context.Background(), download.JobSpec{
		URL: "https://example.com/v", Dir: t.TempDir(), Format: "bestvideo+bestaudio/best", MergeFormat: "mkv",
	}, nil)
	if !ok {
		t.Fatalf("expected the remux retry to succeed, got %q", msg)
	}
	if len(exec.args) != 2 {
		t.Fatalf("expected two invocations, got %d", len(exec.args))
	}
	if !strings.Contains(strings.Join(exec.args[1], " "), "--remux-video mkv") {
		t.Fatalf("retry should remux into mkv: %v", exec.args[1])
	}
}

func TestRunMergeFailureWithoutMergeFormatDoesNotRetry(t *testing.T) {
	dl := &fakeDownloader{errs: map[string][]error{
		"u": {failWith(services.ErrMergeFailed, ytdlp.MsgPostProcessing)},
	}}
	ok, msg := newRunner(dl).Run(context.Background(), download.JobSpec{URL: "u", Dir: "/tmp", Format: "bestaudio/best"}, nil)
	if ok || msg != ytdlp.MsgPostProcessing {
		t.Fatalf("unexpected result (%v, %q)", ok, msg)
	}
	if dl.calls() != 1 {
		t.Fatalf("expected single attempt, got %d", dl.calls())
	}
}

func TestRunDiskFullOverridesClassification(t *testing.T) {
	cause := fmt.Errorf("write chunk: %w", syscall.ENOSPC)
	dl := &fakeDownloader{errs: map[string][]error{
		"u": {services.Fail(services.ErrNetwork, ytdlp.MsgNetwork, cause)},
	}}
	ok, msg := newRunner(dl).Run(context.Background(), download.JobSpec{URL: "u", Dir: "/tmp", Format: "best"}, nil)
	if ok || msg != services.MsgDiskFull {
		t.Fatalf("unexpected result (%v, %q)", ok, msg)
	}
}

func TestRunRejectsInvalidSpec(t *testing.T) {
	dl := &fakeDownloader{}
	ok, _ := newRunner(dl).Run(context.Background(), download.JobSpec{URL: "  ", Dir: "/tmp"}, nil)
	if ok || dl.calls() != 0 {
		t.Fatal("expected validation failure without downloader calls")
	}
}

func TestRunRecoversPanic(t *testing.T) {
	dl := &fakeDownloader{onCall: func(ytdlp.Request) { panic("kaboom") }}
	ok, msg := newRunner(dl).Run(context.Background(), download.JobSpec{URL: "u", Dir: "/tmp", Format: "best"}, nil)
	if ok || !strings.Contains(msg, "kaboom") {
		t.Fatalf("unexpected result (%v, %q)", ok, msg)
	}
}
