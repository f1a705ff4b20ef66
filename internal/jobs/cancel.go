package jobs

import "sync/atomic"

// Flag is a cooperative cancellation flag. The consumer sets it; runners poll
// it before scheduling new work and never interrupt work already in flight.
type Flag struct {
	set atomic.Bool
}

// Cancel requests cancellation. Safe to call more than once.
func (f *Flag) Cancel() {
	if f == nil {
		return
	}
	f.set.Store(true)
}

// Cancelled reports whether cancellation was requested. A nil flag is never
// cancelled.
func (f *Flag) Cancelled() bool {
	if f == nil {
		return false
	}
	return f.set.Load()
}
