// Package sim is a software stand-in for the irphy.Timer/Carrier/EdgeInput hardware interfaces,
// for running the PHY core on a desktop without real silicon: cmd/ir-phy-demo's -sim mode and
// any integration test that wants real wall-clock timing rather than hand-driven fakes. Edge
// injection is decoupled from callback delivery by a worker goroutine reading off a channel,
// the same shape sx1231.Radio.worker uses to turn a GPIO interrupt into a channel event.
package sim

import (
	"sync"
	"time"
)

// Clock converts timer ticks to real time for every Timer this package creates, so a whole PHY
// built on it runs at (an optionally scaled) real speed.
type Clock struct {
	UsecPerTick uint32
	Scale       float64 // 1.0 = real time; >1 speeds up, <1 slows down, for bench tooling
}

func (c Clock) ticksToDuration(ticks uint32) time.Duration {
	scale := c.Scale
	if scale <= 0 {
		scale = 1
	}
	usec := float64(ticks) * float64(c.UsecPerTick) / scale
	return time.Duration(usec * float64(time.Microsecond))
}

// Timer implements irphy.Timer using time.AfterFunc against a Clock.
type Timer struct {
	clock Clock

	mu      sync.Mutex
	top     uint32
	startAt time.Time
	running bool
	timer   *time.Timer
	cb      func()
}

// NewTimer returns a stopped Timer ticking at clock's rate.
func NewTimer(clock Clock) *Timer {
	return &Timer{clock: clock}
}

func (t *Timer) OnOverflow(cb func()) {
	t.mu.Lock()
	t.cb = cb
	t.mu.Unlock()
}

func (t *Timer) Start(top uint32)   { t.arm(top) }
func (t *Timer) Restart(top uint32) { t.arm(top) }

func (t *Timer) arm(top uint32) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.top = top
	t.startAt = time.Now()
	t.running = true
	cb := t.cb
	t.timer = time.AfterFunc(t.clock.ticksToDuration(top), func() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
	t.mu.Unlock()
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.running = false
}

// Read reports the elapsed ticks since the timer was last (re)started, saturating at top.
func (t *Timer) Read() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return t.top
	}
	elapsedUsec := float64(time.Since(t.startAt)) / float64(time.Microsecond) * scaleOrOne(t.clock.Scale)
	ticks := uint32(elapsedUsec / float64(t.clock.UsecPerTick))
	if ticks > t.top {
		ticks = t.top
	}
	return ticks
}

func scaleOrOne(s float64) float64 {
	if s <= 0 {
		return 1
	}
	return s
}

// Carrier implements irphy.Carrier as a state flag plus a recorded period, for a demo tool that
// wants to print (or LED-blink) the modulation state rather than actually oscillate anything.
type Carrier struct {
	mu      sync.Mutex
	running bool
	period  uint8
	onState func(running bool, period uint8)
}

// NewCarrier returns a stopped Carrier. onState, if non-nil, is invoked on every state change -
// a demo tool can use it to print "carrier on/off" trace lines.
func NewCarrier(onState func(running bool, period uint8)) *Carrier {
	return &Carrier{onState: onState}
}

func (c *Carrier) Start() { c.setRunning(true) }
func (c *Carrier) Stop()  { c.setRunning(false) }

func (c *Carrier) setRunning(running bool) {
	c.mu.Lock()
	c.running = running
	period := c.period
	cb := c.onState
	c.mu.Unlock()
	if cb != nil {
		cb(running, period)
	}
}

func (c *Carrier) SetFreq(period uint8) {
	c.mu.Lock()
	c.period = period
	c.mu.Unlock()
}

// Running reports whether the carrier is currently gated on.
func (c *Carrier) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// EdgeInput implements irphy.EdgeInput with an injectable event channel, decoupling edge
// injection (Fire, called by whatever feeds this simulated GPIO - a recorded capture, a demo
// script) from callback delivery, mirroring sx1231.Radio.worker's intrChan pattern.
type EdgeInput struct {
	mu      sync.Mutex
	enabled bool
	cb      func(rising bool)
	events  chan bool
	stop    chan struct{}
}

// NewEdgeInput returns a disabled EdgeInput.
func NewEdgeInput() *EdgeInput {
	e := &EdgeInput{events: make(chan bool, 16), stop: make(chan struct{})}
	go e.worker()
	return e
}

func (e *EdgeInput) worker() {
	for {
		select {
		case rising := <-e.events:
			e.mu.Lock()
			enabled, cb := e.enabled, e.cb
			e.mu.Unlock()
			if enabled && cb != nil {
				cb(rising)
			}
		case <-e.stop:
			return
		}
	}
}

func (e *EdgeInput) OnEdge(cb func(rising bool)) {
	e.mu.Lock()
	e.cb = cb
	e.mu.Unlock()
}

func (e *EdgeInput) Enable() {
	e.mu.Lock()
	e.enabled = true
	e.mu.Unlock()
}

func (e *EdgeInput) Disable() {
	e.mu.Lock()
	e.enabled = false
	e.mu.Unlock()
}

// Fire injects a simulated edge; rising=true for a rising edge, false for falling. Safe to call
// from any goroutine, including a timer callback.
func (e *EdgeInput) Fire(rising bool) {
	e.events <- rising
}

// Close stops the internal worker goroutine.
func (e *EdgeInput) Close() {
	close(e.stop)
}
