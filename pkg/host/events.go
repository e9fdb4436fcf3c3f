// Package host connects the reminder to the flashcard application it nudges
// the user back into: activity events, review state, deck lookup and launching
// a review.
package host

import (
	"context"
	"fmt"

	"github.com/borgmon/review-nudger/pkg/logger"
)

// EventKind is the kind of activity reported by the host
type EventKind int

const (
	ProfileOpened EventKind = iota
	ItemAnswered
	StateChanged
)

func (k EventKind) String() string {
	switch k {
	case ProfileOpened:
		return "profile_opened"
	case ItemAnswered:
		return "item_answered"
	case StateChanged:
		return "state_changed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one activity notification from the host
type Event struct {
	Kind  EventKind
	State string // new state name, only for StateChanged
}

// ActivitySink receives activity. The scheduler implements it.
type ActivitySink interface {
	OnActivity()
	OnStateChange(newState string)
}

// Dispatch maps a host event onto the sink
func Dispatch(sink ActivitySink, ev Event) {
	switch ev.Kind {
	case ProfileOpened, ItemAnswered:
		sink.OnActivity()
	case StateChanged:
		sink.OnStateChange(ev.State)
	default:
		logger.Debug("Ignoring unknown host event", "kind", ev.Kind)
		return
	}
	logger.Debug("Host event", "kind", ev.Kind, "state", ev.State)
}

// Pump dispatches events until the channel closes or ctx is cancelled
func Pump(ctx context.Context, events <-chan Event, sink ActivitySink) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			Dispatch(sink, ev)
		}
	}
}
