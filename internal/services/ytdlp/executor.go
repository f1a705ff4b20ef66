package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// Executor abstracts command execution for testability. onStdout and
// onStderr receive complete lines and may be called concurrently.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// maxLineBytes bounds one output line; yt-dlp JSON dumps can be large.
const maxLineBytes = 4 << 20

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	detach(cmd)
	cmd.WaitDelay = 5 * time.Second
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	scanErrs := make(chan error, 2)
	go func() { scanErrs <- forwardLines(stdout, onStdout) }()
	go func() { scanErrs <- forwardLines(stderr, onStderr) }()
	scanErr := errors.Join(<-scanErrs, <-scanErrs)

	if err := cmd.Wait(); err != nil {
		return err
	}
	if scanErr != nil {
		return fmt.Errorf("read yt-dlp output: %w", scanErr)
	}
	return nil
}

// forwardLines hands each line of r to fn. After a scan error the rest of
// r is drained so the child never blocks on a full pipe.
func forwardLines(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	for scanner.Scan() {
		if fn != nil {
			fn(scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}
