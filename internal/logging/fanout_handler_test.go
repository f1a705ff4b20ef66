package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestCombineHandlersCollapses(t *testing.T) {
	if _, ok := combineHandlers(nil, nil).(noopHandler); !ok {
		t.Fatal("expected noop handler when every input is nil")
	}
	inner := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if got := combineHandlers(nil, inner); got != inner {
		t.Fatalf("single handler should be returned as is, got %T", got)
	}
}

func TestCombineHandlersRoutesByLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	logger := slog.New(combineHandlers(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)).With("run_id", "r1").WithGroup("ffmpeg")

	logger.Debug("probe", "exit", 0)
	logger.Info("converted", "exit", 0)

	if strings.Contains(infoBuf.String(), "probe") {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	for _, want := range []string{"msg=probe", "msg=converted", "run_id=r1", "ffmpeg.exit=0"} {
		if !strings.Contains(debugBuf.String(), want) {
			t.Fatalf("debug output missing %q: %s", want, debugBuf.String())
		}
	}
	if !strings.Contains(infoBuf.String(), "run_id=r1") {
		t.Fatalf("attrs not propagated: %s", infoBuf.String())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled when any handler accepts it")
	}
}
