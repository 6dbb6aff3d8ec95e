// Package periph wires the irphy core to real GPIO hardware via periph.io's v3 conn/host split,
// the modern replacement for the legacy periph.io/x/periph module the teacher's cmd/sx1231-test
// used. It is meant for a Linux host (e.g. a Raspberry Pi) driving an external IR LED driver and
// demodulator rather than bare-metal MCU register access - there is no portable periph.io
// abstraction for a hardware compare-match timer or a PWM-driven carrier oscillator, so Timer
// uses Go's runtime timer and Carrier gates an external oscillator's enable pin, exactly the way
// lcd.go and input.go in the reference pack drive their own GPIO pins directly.
package periph

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Init must be called once before opening any pin, mirroring every periph.io v3 consumer in the
// reference pack (input.Open, lcd.Open) calling host.Init() first.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph: host.Init: %w", err)
	}
	return nil
}

// Timer implements irphy.Timer on top of time.AfterFunc; there is no periph.io abstraction for a
// hardware compare-match timer, so this is a stdlib fallback, recorded in DESIGN.md's
// hw/periph entry rather than left as a silent gap.
type Timer struct {
	usecPerTick uint32

	mu      sync.Mutex
	top     uint32
	startAt time.Time
	running bool
	timer   *time.Timer
	cb      func()
}

// NewTimer returns a stopped Timer ticking at usecPerTick microseconds per tick.
func NewTimer(usecPerTick uint32) *Timer {
	return &Timer{usecPerTick: usecPerTick}
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
	d := time.Duration(top) * time.Duration(t.usecPerTick) * time.Microsecond
	t.timer = time.AfterFunc(d, func() {
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

func (t *Timer) Read() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return t.top
	}
	elapsed := uint32(time.Since(t.startAt).Microseconds()) / t.usecPerTick
	if elapsed > t.top {
		elapsed = t.top
	}
	return elapsed
}

// Carrier gates an external carrier oscillator's enable pin. SetFreq is a no-op: the oscillator
// frequency is fixed in hardware on this backend, unlike a microcontroller's own PWM-capable
// timer; callers that need a configurable carrier frequency should instead select a Freq at
// board design time and wire it through config.Config's CarrierFreq for documentation purposes
// only.
type Carrier struct {
	pin gpio.PinOut
}

// OpenCarrier opens the named GPIO pin and configures it as a low output (carrier off).
func OpenCarrier(pinName string) (*Carrier, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("periph: no such carrier pin %q", pinName)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("periph: configure carrier pin %q: %w", pinName, err)
	}
	return &Carrier{pin: pin}, nil
}

func (c *Carrier) Start()              { c.pin.Out(gpio.High) }
func (c *Carrier) Stop()               { c.pin.Out(gpio.Low) }
func (c *Carrier) SetFreq(period uint8) {}

// EdgeInput implements irphy.EdgeInput on a periph.io gpio.PinIn configured for both-edge
// interrupts, converting WaitForEdge into a callback via a dedicated goroutine - the same
// per-pin goroutine shape input.Open uses for each button.
type EdgeInput struct {
	pin gpio.PinIn

	mu      sync.Mutex
	enabled bool
	cb      func(rising bool)
	stop    chan struct{}
	done    chan struct{}
}

// OpenEdgeInput opens the named GPIO pin and configures it with a pull-up and both-edge
// interrupts.
func OpenEdgeInput(pinName string) (*EdgeInput, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("periph: no such edge pin %q", pinName)
	}
	if err := pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("periph: configure edge pin %q: %w", pinName, err)
	}
	return &EdgeInput{pin: pin, stop: make(chan struct{}), done: make(chan struct{})}, nil
}

func (e *EdgeInput) OnEdge(cb func(rising bool)) {
	e.mu.Lock()
	e.cb = cb
	e.mu.Unlock()
}

// Enable starts the goroutine that waits for edges and delivers them to the registered
// callback. Calling Enable more than once without an intervening Disable has no extra effect.
func (e *EdgeInput) Enable() {
	e.mu.Lock()
	if e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = true
	e.stop = make(chan struct{})
	done := make(chan struct{})
	e.done = done
	e.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-e.stop:
				return
			default:
			}
			if e.pin.WaitForEdge(time.Second) {
				e.mu.Lock()
				enabled, cb := e.enabled, e.cb
				e.mu.Unlock()
				if enabled && cb != nil {
					cb(e.pin.Read() == gpio.High)
				}
			}
		}
	}()
}

// Disable stops the edge-waiting goroutine.
func (e *EdgeInput) Disable() {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = false
	stop := e.stop
	done := e.done
	e.mu.Unlock()
	close(stop)
	<-done
}
