package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"downconv/internal/jobs"
)

const eventBuffer = 64

// progressView consumes runner events on its own goroutine and renders them
// as a progress bar on terminals or as plain lines elsewhere.
type progressView struct {
	w      io.Writer
	events chan jobs.Event
	done   chan struct{}
	wg     sync.WaitGroup
	bar    *progressbar.ProgressBar

	doneTotal, doneCount int
}

func newProgressView(w io.Writer) *progressView {
	v := &progressView{
		w:      w,
		events: make(chan jobs.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	if isTerminal(w) {
		v.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowDescriptionAtLineEnd(),
			progressbar.OptionClearOnFinish(),
		)
	}
	v.wg.Add(1)
	go v.loop()
	return v
}

// Reporter returns the runner-side sink. Sends never block once the view
// has stopped.
func (v *progressView) Reporter() jobs.Reporter {
	return jobs.ChannelReporter(v.events, v.done)
}

// Close drains pending events and stops rendering. Call it after the runner
// has returned.
func (v *progressView) Close() {
	close(v.events)
	v.wg.Wait()
	if v.bar != nil {
		_ = v.bar.Finish()
	}
}

func (v *progressView) loop() {
	defer v.wg.Done()
	defer close(v.done)
	for ev := range v.events {
		if ev.Kind == jobs.EventItemDone && v.stale(ev) {
			continue
		}
		if v.bar != nil {
			v.renderBar(ev)
			continue
		}
		v.renderLine(ev)
	}
}

// stale reports whether ev carries a completion count below one already
// rendered for the same batch.
func (v *progressView) stale(ev jobs.Event) bool {
	if ev.Total == v.doneTotal && ev.Current <= v.doneCount {
		return true
	}
	v.doneTotal, v.doneCount = ev.Total, ev.Current
	return false
}

func (v *progressView) renderBar(ev jobs.Event) {
	switch ev.Kind {
	case jobs.EventPercent, jobs.EventStatus:
		if ev.Percent >= 0 {
			_ = v.bar.Set(int(ev.Percent))
		}
		v.bar.Describe(ev.Label)
	case jobs.EventItemStarted:
		_ = v.bar.Set(0)
		v.bar.Describe(ev.Label)
	case jobs.EventItemDone:
		if ev.Total > 0 {
			_ = v.bar.Set(ev.Current * 100 / ev.Total)
		}
		v.bar.Describe(fmt.Sprintf("%d di %d  %s", ev.Current, ev.Total, ev.Label))
	}
}

func (v *progressView) renderLine(ev jobs.Event) {
	switch ev.Kind {
	case jobs.EventItemStarted:
		fmt.Fprintln(v.w, ev.Label)
	case jobs.EventItemDone:
		fmt.Fprintf(v.w, "[%d/%d] %s\n", ev.Current, ev.Total, ev.Label)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
