package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"downconv/internal/jobs"
)

const exitInterrupted = 130

func main() {
	flag := &jobs.Flag{}
	stop := watchInterrupts(flag, os.Stderr, func() { os.Exit(exitInterrupted) })
	defer stop()

	cmd, release := buildRootCommand(flag)
	err := cmd.Execute()
	release()
	if err != nil {
		switch {
		case errors.Is(err, errCancelled):
			stop()
			os.Exit(exitInterrupted)
		case errors.Is(err, errJobFailed):
		case !errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

// watchInterrupts sets flag on the first interrupt and calls exit on the
// second. The returned function stops watching.
func watchInterrupts(flag *jobs.Flag, w io.Writer, exit func()) func() {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		received := 0
		for {
			select {
			case <-done:
				return
			case <-sigs:
				received++
				if received == 1 {
					flag.Cancel()
					fmt.Fprintln(w, "Annullamento in corso: attendo la fine delle operazioni attive (premi di nuovo Ctrl-C per uscire subito).")
					continue
				}
				exit()
				return
			}
		}
	}()
	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		signal.Stop(sigs)
		close(done)
	}
}
