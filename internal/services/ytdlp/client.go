package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"downconv/internal/logging"
	"downconv/internal/services"
)

// ProbeTimeout bounds metadata-only invocations.
const ProbeTimeout = 60 * time.Second

// Info is the subset of yt-dlp metadata the download policy needs.
type Info struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Extractor    string  `json:"extractor"`
	ExtractorKey string  `json:"extractor_key"`
	WebpageURL   string  `json:"webpage_url"`
	Duration     float64 `json:"duration"`
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithAria2c delegates transfers to the given aria2c binary. Empty disables.
func WithAria2c(path string) Option {
	return func(c *Client) {
		c.aria2c = strings.TrimSpace(path)
	}
}

// WithTuning overrides DefaultTuning.
func WithTuning(t Tuning) Option {
	return func(c *Client) {
		c.tuning = t
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary string
	aria2c string
	tuning Tuning
	exec   Executor
	logger *slog.Logger
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary: binary,
		tuning: DefaultTuning(),
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "ytdlp")
	return client, nil
}

// Download runs one download. onProgress receives decoded progress events.
// Cancelling ctx does not interrupt a running download.
func (c *Client) Download(ctx context.Context, req Request, onProgress func(Progress)) error {
	args := BuildArgs(req, c.tuning, c.aria2c)
	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("yt-dlp command", logging.String("command", c.binary), logging.Any("args", args))

	var mu sync.Mutex
	var errorLines []string
	var merging bool
	onStdout := func(line string) {
		if p, ok := ParseProgress(line); ok {
			if onProgress != nil {
				onProgress(p)
			}
			return
		}
		if mergeStarted(line) {
			mu.Lock()
			merging = true
			mu.Unlock()
		}
		logger.Debug("yt-dlp output", logging.String("line", line))
	}
	onStderr := func(line string) {
		if text, ok := errorText(line); ok {
			mu.Lock()
			errorLines = append(errorLines, text)
			mu.Unlock()
			return
		}
		logger.Debug("yt-dlp stderr", logging.String("line", line))
	}

	err := c.exec.Run(context.WithoutCancel(ctx), c.binary, args, onStdout, onStderr)
	if err == nil {
		return nil
	}
	mu.Lock()
	lines := append([]string(nil), errorLines...)
	merged := merging
	mu.Unlock()
	failure := classify(err, lines, merged)
	logger.Debug("yt-dlp failed",
		logging.Error(err),
		logging.String(logging.FieldErrorKind, services.KindOf(failure).Error()),
		logging.String("stderr_tail", strings.Join(lines, "\n")),
	)
	return failure
}

// Probe fetches metadata for url without downloading.
func (c *Client) Probe(ctx context.Context, url string) (Info, error) {
	args := []string{"--dump-single-json", "--skip-download", "--no-playlist", "--no-warnings", "--", url}
	out, lines, err := c.capture(ctx, args)
	if err != nil {
		return Info{}, Classify(err, lines)
	}
	var info Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return Info{}, services.Fail(services.ErrExtraction, MsgExtraction, fmt.Errorf("decode yt-dlp metadata: %w", err))
	}
	return info, nil
}

// Supported reports whether a dedicated extractor (not the generic one)
// accepts url.
func (c *Client) Supported(ctx context.Context, url string) bool {
	args := []string{"--simulate", "--no-playlist", "--no-warnings", "--print", "extractor_key", "--", url}
	out, _, err := c.capture(ctx, args)
	if err != nil {
		return false
	}
	key := strings.TrimSpace(out)
	return key != "" && !strings.EqualFold(key, "Generic")
}

// Version returns the yt-dlp version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, lines, err := c.capture(ctx, []string{"--version"})
	if err != nil {
		return "", Classify(err, lines)
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) capture(ctx context.Context, args []string) (string, []string, error) {
	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ProbeTimeout)
	defer cancel()

	var mu sync.Mutex
	var stdout strings.Builder
	var errorLines []string
	err := c.exec.Run(probeCtx, c.binary, args, func(line string) {
		mu.Lock()
		stdout.WriteString(line)
		stdout.WriteByte('\n')
		mu.Unlock()
	}, func(line string) {
		if text, ok := errorText(line); ok {
			mu.Lock()
			errorLines = append(errorLines, text)
			mu.Unlock()
		}
	})
	if err != nil && errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
		err = services.Fail(services.ErrTimeout, MsgNetwork, err)
	}
	mu.Lock()
	defer mu.Unlock()
	return stdout.String(), errorLines, err
}
