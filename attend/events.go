package attend

type EventKind int

const (
	// EventTagObserved is published for every tag a reader reports.
	EventTagObserved EventKind = iota
	// EventCountChanged is published when the pending count or the
	// reconciled total moves.
	EventCountChanged
)

type Event struct {
	Kind EventKind
	// Tag is the canonical tag id, set for EventTagObserved.
	Tag string
	// Pending is the current size of the unreconciled set.
	Pending int
	// Reconciled is the running total of reconciled identifiers.
	Reconciled int64
}

// EventBus feeds the presentation layer. Publish never blocks: when the
// consumer lags, events are dropped rather than stalling ingestion.
type EventBus struct {
	ch chan Event
}

func NewEventBus(size int) *EventBus {
	if size <= 0 {
		size = 64
	}
	return &EventBus{ch: make(chan Event, size)}
}

func (b *EventBus) Publish(ev Event) {
	if b == nil {
		return
	}
	select {
	case b.ch <- ev:
	default:
	}
}

func (b *EventBus) Events() <-chan Event {
	return b.ch
}
