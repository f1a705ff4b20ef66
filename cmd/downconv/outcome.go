package main

import (
	"fmt"
	"io"
	"strings"

	"downconv/internal/jobs"
)

// printOutcome writes the terminal message of a run and maps it onto the
// command error.
func printOutcome(w io.Writer, out jobs.Outcome, successText string) error {
	colorize := isTerminal(w)
	switch {
	case out.Cancelled:
		fmt.Fprintln(w, paint(out.Message, ansiYellow, colorize))
		if n := jobs.Succeeded(out.Results); n > 0 {
			fmt.Fprintf(w, "Completati prima dell'annullamento: %d\n", n)
		}
		return errCancelled
	case out.Success:
		fmt.Fprintln(w, paint(successText, ansiGreen, colorize))
		return nil
	default:
		fmt.Fprintln(w, paint(strings.TrimRight(out.Message, "\n"), ansiRed, colorize))
		if len(out.Failed) > 0 {
			fmt.Fprintf(w, "Usa --retry-failed per riprovare %d elementi falliti.\n", len(out.Failed))
		}
		return errJobFailed
	}
}

func paint(text, color string, colorize bool) string {
	if !colorize || text == "" {
		return text
	}
	return color + text + ansiReset
}
