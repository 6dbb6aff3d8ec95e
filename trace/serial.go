package trace

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// Serial streams trace events as plain text lines over a UART, for bench setups that wire a
// logic analyzer or a second MCU to the same port the firmware's DEBUG_IR_TX_PHY trace pin
// would have toggled. It never blocks callers on a write error; errors are swallowed so a flaky
// debug link cannot back-pressure the PHY state machines.
type Serial struct {
	port *serial.Port
	t0   time.Time
}

// OpenSerial opens dev at baud and returns a Sink writing to it.
func OpenSerial(dev string, baud int) (*Serial, error) {
	port, err := serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", dev, err)
	}
	return &Serial{port: port, t0: time.Now()}, nil
}

// Tracef implements Sink.
func (s *Serial) Tracef(format string, args ...interface{}) {
	line := fmt.Sprintf("%.6fs: %s\n", time.Since(s.t0).Seconds(), fmt.Sprintf(format, args...))
	_, _ = s.port.Write([]byte(line))
}

// Close closes the underlying serial port.
func (s *Serial) Close() error { return s.port.Close() }
