// Package config decodes the TOML configuration file describing how a single IR transceiver
// instance is wired: which GPIO pins the carrier and edge input use, what carrier frequency to
// drive, and where to send trace output, the same struct-with-toml-tags shape
// cmd/mqttradio/main.go uses for its own Config/RadioConfig/MqttConfig.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for an ir-phy-demo or ir-mqtt-bridge instance.
type Config struct {
	Debug   bool
	Backend string // "periph", "embd", or "sim"

	Tx    TxConfig
	Rx    RxConfig
	Trace TraceConfig
	Mqtt  MqttConfig
}

// TxConfig configures the Tx PHY's carrier modulator.
type TxConfig struct {
	CarrierPin  string `toml:"carrier_pin"`
	CarrierFreq string `toml:"carrier_freq"` // one of "30khz", "33khz", "36khz", "38khz", "40khz", "56khz"
	ClockHz     uint32 `toml:"clock_hz"`
}

// RxConfig configures the Rx PHY's edge input and timing.
type RxConfig struct {
	EdgePin             string `toml:"edge_pin"`
	SyncDelay           uint32 `toml:"sync_delay"`
	MarkDelay           uint32 `toml:"mark_delay"`
	SpaceDelay          uint32 `toml:"space_delay"`
	TimerOverflowsMark  uint8  `toml:"timer_overflows_mark"`
	TimerOverflowsSpace uint8  `toml:"timer_overflows_space"`
}

// TraceConfig configures the optional debug trace sink.
type TraceConfig struct {
	Enabled  bool
	Serial   string // device path, e.g. "/dev/ttyUSB0"; the bundled commands do not open a serial sink
	Baud     int
	RingSize int `toml:"ring_size"`
}

// MqttConfig configures the optional MQTT bridge command.
type MqttConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Prefix   string
}

// Load reads and decodes a TOML config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := &Config{}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// CarrierFreqHz maps a CarrierFreq string to its frequency in Hz, for callers that want the
// nominal value for logging; the carrier package itself only ever needs the Freq enum/period.
var CarrierFreqHz = map[string]uint32{
	"30khz": 30000,
	"33khz": 33000,
	"36khz": 36000,
	"38khz": 38000,
	"40khz": 40000,
	"56khz": 56000,
}
