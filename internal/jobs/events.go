package jobs

// EventKind identifies the shape of a progress Event.
type EventKind int

const (
	// EventItemStarted marks the start of item Current (0-based) of Total.
	EventItemStarted EventKind = iota
	// EventItemDone carries the completed count (1-based) of Total.
	EventItemDone
	// EventPercent carries an intra-item percentage in Percent.
	EventPercent
	// EventStatus carries free-form status text for item Current of Total.
	EventStatus
)

func (k EventKind) String() string {
	switch k {
	case EventItemStarted:
		return "item_started"
	case EventItemDone:
		return "item_done"
	case EventPercent:
		return "percent"
	case EventStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Event is a transient progress notification.
type Event struct {
	Kind    EventKind
	Current int
	Total   int
	Label   string
	Percent float64
}

// Reporter receives progress events. Implementations must be safe for
// concurrent use when handed to the conversion runner.
type Reporter func(Event)

// Emit delivers ev when r is non-nil.
func (r Reporter) Emit(ev Event) {
	if r != nil {
		r(ev)
	}
}

// ChannelReporter returns a Reporter that forwards events to ch. A send
// blocks until the consumer receives it or done is closed.
func ChannelReporter(ch chan<- Event, done <-chan struct{}) Reporter {
	return func(ev Event) {
		select {
		case ch <- ev:
		case <-done:
		}
	}
}
