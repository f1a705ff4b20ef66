package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"downconv/internal/logging"
	"downconv/internal/media/ffprobe"
	"downconv/internal/services"
)

// DefaultTimeout bounds a single conversion.
const DefaultTimeout = 600 * time.Second

// Request describes one conversion.
type Request struct {
	Input     string
	Output    string
	Format    string
	Quality   string
	Overwrite bool
}

// Result reports the path actually written, after extension normalization.
type Result struct {
	Output string
}

// Converter is the behaviour the batch runner depends on.
type Converter interface {
	Convert(ctx context.Context, req Request, sink func(percent float64)) (Result, error)
}

// Prober returns a media duration in seconds; false disables interim progress.
type Prober func(ctx context.Context, path string) (float64, bool)

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

// WithProber replaces the ffprobe duration lookup.
func WithProber(p Prober) Option {
	return func(c *Client) {
		if p != nil {
			c.probe = p
		}
	}
}

// WithFFprobe sets the ffprobe binary used for duration lookups.
func WithFFprobe(binary string) Option {
	return func(c *Client) {
		binary = strings.TrimSpace(binary)
		c.probe = func(ctx context.Context, path string) (float64, bool) {
			return ffprobe.ProbeDuration(ctx, binary, path)
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
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

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
	probe   Prober
	logger  *slog.Logger
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: DefaultTimeout,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	client.probe = func(ctx context.Context, path string) (float64, bool) {
		return ffprobe.ProbeDuration(ctx, "", path)
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "ffmpeg")
	return client, nil
}

// Convert runs one conversion. sink, when non-nil, receives percentages as
// ffmpeg reports progress, followed by 100 on success or 0 on failure.
//
// Cancelling ctx does not stop a running conversion; only the client
// timeout terminates ffmpeg.
func (c *Client) Convert(ctx context.Context, req Request, sink func(percent float64)) (Result, error) {
	format := NormalizeFormat(req.Format)
	output := OutputPath(req.Output, format)
	logger := logging.WithContext(ctx, c.logger)

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return Result{}, fsFailure(err)
	}

	inPlace := samePath(req.Input, output)
	if !req.Overwrite && fileExists(output) {
		return Result{}, services.Fail(services.ErrAlreadyExists, services.MsgAlreadyExists, fmt.Errorf("output %s exists", output))
	}

	// Replacing an existing file goes through a hidden sibling so a failed
	// run leaves the previous content untouched.
	target := output
	staged := inPlace || (req.Overwrite && fileExists(output))
	if staged {
		ext := filepath.Ext(output)
		stem := strings.TrimSuffix(filepath.Base(output), ext)
		tmp, err := os.CreateTemp(filepath.Dir(output), "."+stem+"_*"+ext)
		if err != nil {
			return Result{}, fsFailure(err)
		}
		target = tmp.Name()
		_ = tmp.Close()
	}

	var parser *ProgressParser
	if sink != nil {
		duration, _ := c.probe(ctx, req.Input)
		parser = NewProgressParser(duration, sink)
	}

	args := BuildArgs(req.Input, target, format, req.Quality, req.Overwrite || inPlace, sink != nil)
	logger.Debug("ffmpeg command",
		logging.String("command", c.binary),
		logging.Any("args", args),
		logging.Bool("in_place", inPlace),
		logging.Bool("staged", staged),
	)

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	var stderr stderrLog
	err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		stderr.add(line)
		parser.Feed(line)
	})
	if err != nil {
		_ = os.Remove(target)
		parser.Finish(false)
		failure := c.classify(runCtx, err, &stderr)
		logger.Debug("ffmpeg failed",
			logging.Error(err),
			logging.String("stderr_tail", strings.Join(stderr.tail, "\n")),
		)
		return Result{}, failure
	}

	if staged {
		if err := os.Rename(target, output); err != nil {
			_ = os.Remove(target)
			parser.Finish(false)
			return Result{}, fsFailure(err)
		}
	}
	parser.Finish(true)
	return Result{Output: output}, nil
}

func (c *Client) classify(runCtx context.Context, err error, stderr *stderrLog) error {
	var exitErr interface{ ExitCode() int }
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		msg := fmt.Sprintf("Timeout: file troppo lungo o problematico (oltre %s)", timeoutLabel(c.timeout))
		return services.Fail(services.ErrTimeout, msg, err)
	case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
		return services.Fail(services.ErrToolNotFound, msgToolNotFound, err)
	case stderr.diskFull || errors.Is(err, syscall.ENOSPC):
		return services.DiskFull(err)
	case errors.As(err, &exitErr):
		return services.Fail(services.ErrNonZeroExit, stderr.message(), err)
	default:
		logging.WarnWithContext(c.logger, "ffmpeg invocation failed unexpectedly", "ffmpeg_unexpected",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the ffmpeg binary and input file"),
			logging.String(logging.FieldImpact, "file was not converted"),
		)
		return services.Fail(services.ErrUnexpected, err.Error(), err)
	}
}

// timeoutLabel renders d in whole minutes, or in seconds rounded up below
// a minute.
func timeoutLabel(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d s", int((d+time.Second-1)/time.Second))
	}
	return fmt.Sprintf("%d min", int(d/time.Minute))
}

func fsFailure(err error) error {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return services.DiskFull(err)
	case errors.Is(err, fs.ErrPermission):
		return services.Fail(services.ErrPermissionDenied, services.MsgPermissionDenied, err)
	default:
		return services.Fail(services.ErrUnexpected, err.Error(), err)
	}
}

func samePath(a, b string) bool {
	return resolvePath(a) == resolvePath(b)
}

func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
