// Package embd wires the irphy core to GPIO hardware via github.com/kidoman/embd, the legacy
// backend the teacher repo's shim.go used before the periph.io v3 split (see hw/periph for the
// modern equivalent). Unlike periph.io's polling WaitForEdge, embd.DigitalPin.Watch delivers
// edges via a driver-level callback, so EdgeInput here needs no dedicated goroutine of its own -
// the same shape shim.go's gpio.edgeCB used, generalized from a single buffered "something
// happened" channel to a real rising/falling distinction. embd has no periodic hardware-timer
// abstraction, so this package has no Timer type; an embd-backed board pairs its Carrier/
// EdgeInput with hw/periph.Timer (or hw/sim.Timer for bench use), both plain time.AfterFunc
// wrappers with no GPIO dependency of their own.
package embd

import (
	"fmt"
	"sync"

	"github.com/kidoman/embd"
)

// Init calls embd.InitGPIO, matching cmd/mqttradio/main.go's embd.InitGPIO() call before opening
// any pin. Callers that also want a specific board's pin mapping (e.g. C.H.I.P.) should still
// import that board package for its side effects the way cmd/mqttradio imports
// github.com/kidoman/embd/host/chip.
func Init() error {
	if err := embd.InitGPIO(); err != nil {
		return fmt.Errorf("embd: InitGPIO: %w", err)
	}
	return nil
}

// Carrier gates an external carrier oscillator's enable pin, exactly like hw/periph.Carrier:
// embd has no portable PWM abstraction either, so SetFreq is a no-op and frequency is fixed by
// the board's external oscillator.
type Carrier struct {
	pin embd.DigitalPin
}

// OpenCarrier opens pin name as a low output.
func OpenCarrier(name string) (*Carrier, error) {
	pin, err := embd.NewDigitalPin(name)
	if err != nil {
		return nil, fmt.Errorf("embd: open carrier pin %s: %w", name, err)
	}
	if err := pin.SetDirection(embd.Out); err != nil {
		return nil, fmt.Errorf("embd: direction carrier pin %s: %w", name, err)
	}
	if err := pin.Write(embd.Low); err != nil {
		return nil, fmt.Errorf("embd: write carrier pin %s: %w", name, err)
	}
	return &Carrier{pin: pin}, nil
}

func (c *Carrier) Start()              { c.pin.Write(embd.High) }
func (c *Carrier) Stop()               { c.pin.Write(embd.Low) }
func (c *Carrier) SetFreq(period uint8) {}

// EdgeInput implements irphy.EdgeInput on an embd.DigitalPin configured for both-edge watching.
type EdgeInput struct {
	pin embd.DigitalPin

	mu      sync.Mutex
	enabled bool
	cb      func(rising bool)
}

// OpenEdgeInput opens pin name as an input and registers a both-edge Watch callback. The pin
// starts disarmed; Enable/Disable gate whether edges reach the registered callback, matching
// irphy.EdgeInput's contract.
func OpenEdgeInput(name string) (*EdgeInput, error) {
	pin, err := embd.NewDigitalPin(name)
	if err != nil {
		return nil, fmt.Errorf("embd: open edge pin %s: %w", name, err)
	}
	if err := pin.SetDirection(embd.In); err != nil {
		return nil, fmt.Errorf("embd: direction edge pin %s: %w", name, err)
	}
	e := &EdgeInput{pin: pin}
	if err := pin.Watch(embd.EdgeBoth, e.onWatch); err != nil {
		return nil, fmt.Errorf("embd: watch edge pin %s: %w", name, err)
	}
	return e, nil
}

func (e *EdgeInput) onWatch(pin embd.DigitalPin) {
	e.mu.Lock()
	enabled, cb := e.enabled, e.cb
	e.mu.Unlock()
	if !enabled || cb == nil {
		return
	}
	v, err := pin.Read()
	if err != nil {
		return
	}
	cb(v == embd.High)
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
