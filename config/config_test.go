package config

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "irphy.toml")
	const doc = `
debug = true
backend = "sim"

[tx]
carrier_pin = "GPIO18"
carrier_freq = "38khz"
clock_hz = 8000000

[rx]
edge_pin = "GPIO17"
sync_delay = 2500
mark_delay = 1125
space_delay = 1125
timer_overflows_mark = 2
timer_overflows_space = 2

[trace]
enabled = true
serial = "/dev/ttyUSB0"
baud = 115200
ring_size = 256

[mqtt]
host = "localhost"
port = 1883
prefix = "ir"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || cfg.Backend != "sim" {
		t.Fatalf("top-level: got %+v", cfg)
	}
	if cfg.Tx.CarrierPin != "GPIO18" || cfg.Tx.CarrierFreq != "38khz" || cfg.Tx.ClockHz != 8000000 {
		t.Fatalf("tx: got %+v", cfg.Tx)
	}
	if cfg.Rx.EdgePin != "GPIO17" || cfg.Rx.SyncDelay != 2500 || cfg.Rx.TimerOverflowsSpace != 2 {
		t.Fatalf("rx: got %+v", cfg.Rx)
	}
	if !cfg.Trace.Enabled || cfg.Trace.Serial != "/dev/ttyUSB0" || cfg.Trace.Baud != 115200 {
		t.Fatalf("trace: got %+v", cfg.Trace)
	}
	if cfg.Mqtt.Host != "localhost" || cfg.Mqtt.Port != 1883 || cfg.Mqtt.Prefix != "ir" {
		t.Fatalf("mqtt: got %+v", cfg.Mqtt)
	}
}

func Test_Load_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/irphy.toml"); err == nil {
		t.Fatalf("Load on missing file: want error, got nil")
	}
}

func Test_CarrierFreqHz(t *testing.T) {
	if CarrierFreqHz["38khz"] != 38000 {
		t.Fatalf("CarrierFreqHz[38khz] = %d, want 38000", CarrierFreqHz["38khz"])
	}
}
