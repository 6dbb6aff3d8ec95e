// Package carrier controls the IR carrier modulator: the auto-toggling timer output that
// produces the actual IR LED modulation frequency (e.g. 38kHz) the Tx PHY gates on and off.
package carrier

import (
	"fmt"

	"github.com/tve/irphy"
)

// Freq enumerates the common IR demodulator tuning points and their counter periods at
// irphy.ClockHz with no prescaler (carrier = ClockHz / (2 * period)), mirroring the original
// firmware's embx_ir_tx_mod_freq_t enum.
type Freq uint8

const (
	KHz30 Freq = 132 // ~30.3kHz
	KHz33 Freq = 120 // ~33.3kHz
	KHz36 Freq = 110 // ~36.4kHz
	KHz38 Freq = 104 // ~38.5kHz
	KHz40 Freq = 99  // ~40.4kHz
	KHz56 Freq = 70  // ~57.1kHz
)

// FreqByName maps the config file's carrier_freq strings to a Freq, for callers decoding
// config.Config without needing their own copy of the frequency table.
func FreqByName(name string) (Freq, error) {
	switch name {
	case "30khz":
		return KHz30, nil
	case "33khz":
		return KHz33, nil
	case "36khz":
		return KHz36, nil
	case "38khz":
		return KHz38, nil
	case "40khz":
		return KHz40, nil
	case "56khz":
		return KHz56, nil
	default:
		return 0, fmt.Errorf("carrier: unknown frequency name %q", name)
	}
}

// MinPeriod and MaxPeriod bound the carrier timer's top value.
const (
	MinPeriod = 25
	MaxPeriod = 255
)

// PeriodForHz computes period = GCLK_FREQ / (2 * hz), clamped to [MinPeriod, MaxPeriod]. It is
// provided for callers that want a carrier frequency not in the Freq enum's common set.
func PeriodForHz(gclkHz uint32, hz uint32) uint8 {
	if hz == 0 {
		return MaxPeriod
	}
	period := gclkHz / (2 * hz)
	switch {
	case period < MinPeriod:
		return MinPeriod
	case period > MaxPeriod:
		return MaxPeriod
	default:
		return uint8(period)
	}
}

// Modulator drives an irphy.Carrier at a configured frequency. It holds no hardware state of
// its own beyond the currently configured period; Start/Stop are forwarded straight through.
type Modulator struct {
	carrier irphy.Carrier
	freq    Freq
}

// New wires a Modulator to a hardware Carrier and programs the initial frequency. If startNow
// is true the carrier begins oscillating immediately; otherwise it is left stopped until the
// first Start, matching embx_ir_tx_modulator_init's start_counting parameter.
func New(c irphy.Carrier, freq Freq, startNow bool) *Modulator {
	m := &Modulator{carrier: c, freq: freq}
	c.SetFreq(uint8(freq))
	if !startNow {
		c.Stop()
	}
	return m
}

// Start turns the carrier on.
func (m *Modulator) Start() { m.carrier.Start() }

// Stop turns the carrier off.
func (m *Modulator) Stop() { m.carrier.Stop() }

// SetFreq changes the modulation frequency; it may be called while the carrier is running.
func (m *Modulator) SetFreq(freq Freq) {
	m.freq = freq
	m.carrier.SetFreq(uint8(freq))
}

// Freq returns the currently configured frequency enum value.
func (m *Modulator) Freq() Freq { return m.freq }
