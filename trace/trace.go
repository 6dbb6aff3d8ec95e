// Package trace provides an optional, low-overhead event log for the PHY state machines,
// generalizing the original firmware's DEBUG_IR_TX_PHY GPIO toggle into something a desktop or
// bench build can actually read back.
package trace

import (
	"fmt"
	"sync"
	"time"
)

// Sink receives timestamped trace events from the Tx and Rx PHY state machines. Tracef must be
// safe to call from whatever goroutine drives a Timer's OnOverflow or an EdgeInput's OnEdge
// callback; implementations are expected to be cheap enough to call unconditionally from a hot
// path, the way the firmware's GPIO toggle was.
type Sink interface {
	Tracef(format string, args ...interface{})
}

// noop discards every event; it is the zero-cost default when no sink is configured.
type noop struct{}

func (noop) Tracef(string, ...interface{}) {}

// Noop is a Sink that discards every event.
var Noop Sink = noop{}

// Event is one recorded trace line.
type Event struct {
	At  time.Time
	Txt string
}

// Ring is an in-memory Sink that keeps the last N events, mirroring rfm69's package-level debug
// buffer but scoped to a single PHY instance and bounded so a runaway bench session can't grow
// without limit.
type Ring struct {
	mu   sync.Mutex
	buf  []Event
	size int
}

// NewRing returns a Ring retaining at most size events.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{size: size}
}

// Tracef implements Sink.
func (r *Ring) Tracef(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, Event{At: time.Now(), Txt: fmt.Sprintf(format, args...)})
	if len(r.buf) > r.size {
		r.buf = r.buf[len(r.buf)-r.size:]
	}
}

// Events returns a copy of the currently retained events, oldest first.
func (r *Ring) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.buf))
	copy(out, r.buf)
	return out
}

// Print writes the retained events to w-shaped output via fmt.Printf, one per line, with
// timestamps relative to the first event - the same rendering rfm69's dbgPrint used for its
// radio traces.
func (r *Ring) Print() {
	evs := r.Events()
	if len(evs) == 0 {
		fmt.Printf("no trace events recorded\n")
		return
	}
	t0 := evs[0].At
	for _, ev := range evs {
		fmt.Printf("%.6fs: %s\n", ev.At.Sub(t0).Seconds(), ev.Txt)
	}
}
