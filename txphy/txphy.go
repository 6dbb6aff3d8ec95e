// Package txphy implements the Tx PHY state machine: it drains txqueue descriptors into
// carrier on/off gating, timed by a hardware (or simulated) overflow timer, honoring bounded
// and unbounded repeat blocks.
package txphy

import (
	"sync"

	"github.com/tve/irphy"
	"github.com/tve/irphy/carrier"
	"github.com/tve/irphy/trace"
	"github.com/tve/irphy/txqueue"
)

// PHY is the Tx PHY: only two externally visible states, idle (tx_in_progress == false) and
// busy (true). The zero value is not usable; use New.
type PHY struct {
	timer      irphy.Timer
	modu       *carrier.Modulator
	queue      *txqueue.Queue
	trace      trace.Sink
	mu         sync.Mutex // guards inProgress, mirrors the original's critical-section pairing
	inProgress bool
}

// New wires a Tx PHY to a timer and a carrier modulator and registers the timer's overflow
// callback. sink may be nil to disable tracing.
func New(timer irphy.Timer, modu *carrier.Modulator, sink trace.Sink) *PHY {
	p := &PHY{timer: timer, modu: modu, queue: txqueue.New(), trace: sink}
	timer.OnOverflow(p.overflow)
	timer.Stop()
	return p
}

// Fill appends one descriptor to the Tx program. It returns irphy.StatusBusy if a
// transmission is already in progress (fills are rejected while tx_in_progress, exactly as
// the firmware's embx_ir_tx_phy_descriptor_fill does by consulting
// embx_ir_tx_phy_get_state first), or irphy.StatusOverflow if the queue is full.
func (p *PHY) Fill(reset bool, kind irphy.Interval, usec uint16, maxRepeat int16, decrement uint8) irphy.Status {
	if p.GetState() {
		return irphy.StatusBusy
	}
	return p.queue.Fill(reset, kind, usec, maxRepeat, decrement)
}

// GetState reports whether a transmission is currently in progress.
func (p *PHY) GetState() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inProgress
}

// Send starts transmitting the queued descriptor program. It returns irphy.StatusBusy if
// already transmitting. An empty queue is not an error: Send silently leaves the PHY idle.
func (p *PHY) Send() irphy.Status {
	p.mu.Lock()
	if p.inProgress {
		p.mu.Unlock()
		return irphy.StatusBusy
	}
	p.mu.Unlock()

	p.timer.Stop()

	d, st := p.queue.Get()
	if st != irphy.StatusOK {
		p.modu.Stop()
		return irphy.StatusOK
	}

	p.mu.Lock()
	p.inProgress = true
	p.mu.Unlock()

	p.gate(d.Kind)
	p.timer.Start(uint32(d.Period))
	return irphy.StatusOK
}

// overflow is the timer's compare-match callback: it advances the descriptor index (honoring
// repeat/decrement) and re-gates the modulator, or, once the queue drains, stops everything
// and clears tx_in_progress.
func (p *PHY) overflow() {
	d, st := p.queue.Get()
	if st != irphy.StatusOK {
		p.modu.Stop()
		p.timer.Stop()
		p.mu.Lock()
		p.inProgress = false
		p.mu.Unlock()
		p.tracef("tx idle")
		return
	}

	p.timer.Stop()

	if d.RepeatCnt < d.MaxRepeatCnt {
		d.RepeatCnt++
		p.queue.DecrementTxIndex(d.Decrement)
	} else if d.MaxRepeatCnt == txqueue.Forever {
		p.queue.DecrementTxIndex(d.Decrement)
	}

	p.gate(d.Kind)
	p.timer.Restart(uint32(d.Period))
}

func (p *PHY) gate(kind irphy.Interval) {
	switch kind {
	case irphy.Mark:
		p.modu.Start()
	case irphy.Space:
		p.modu.Stop()
	}
	p.tracef("tx gate %s", kind)
}

func (p *PHY) tracef(format string, args ...interface{}) {
	if p.trace != nil {
		p.trace.Tracef(format, args...)
	}
}
