// Command ir-phy-demo is a bench tool for the Tx and Rx PHY, mirroring the original firmware's
// embx_time_tb/embx_ir_rx_phy_tb test benches: it fills a small repeating Tx program and sends
// it again whenever the Tx PHY is idle, with the Rx PHY enabled alongside; captured Rx frames
// are not printed. With -sim it runs entirely in
// software via hw/sim so it needs no hardware to exercise the state machines end to end, the way
// cmd/sx1231-test's shape is otherwise driven against real SPI/GPIO hardware.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tve/irphy"
	"github.com/tve/irphy/carrier"
	"github.com/tve/irphy/config"
	"github.com/tve/irphy/hw/embd"
	"github.com/tve/irphy/hw/periph"
	"github.com/tve/irphy/hw/sim"
	"github.com/tve/irphy/rxbuf"
	"github.com/tve/irphy/rxphy"
	"github.com/tve/irphy/trace"
	"github.com/tve/irphy/txphy"
)

func run(cfgPath string, useSim bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	var sink trace.Sink = trace.Noop
	if cfg.Trace.Enabled {
		ring := trace.NewRing(cfg.Trace.RingSize)
		sink = ring
		defer ring.Print()
	}

	var txTimer, rxTimer irphy.Timer
	var txCarrier irphy.Carrier
	var edge irphy.EdgeInput

	freq, err := carrier.FreqByName(cfg.Tx.CarrierFreq)
	if err != nil {
		return err
	}

	backend := cfg.Backend
	if useSim {
		backend = "sim"
	}

	switch backend {
	case "sim":
		clk := sim.Clock{UsecPerTick: irphy.UsecPerTick, Scale: 20}
		txTimer = sim.NewTimer(clk)
		rxTimer = sim.NewTimer(clk)
		txCarrier = sim.NewCarrier(func(running bool, period uint8) {
			log.Printf("carrier running=%v period=%d", running, period)
		})
		simEdge := sim.NewEdgeInput()
		edge = simEdge
	case "periph":
		if err := periph.Init(); err != nil {
			return err
		}
		txTimer = periph.NewTimer(irphy.UsecPerTick)
		rxTimer = periph.NewTimer(irphy.UsecPerTick)
		pc, err := periph.OpenCarrier(cfg.Tx.CarrierPin)
		if err != nil {
			return err
		}
		txCarrier = pc
		pe, err := periph.OpenEdgeInput(cfg.Rx.EdgePin)
		if err != nil {
			return err
		}
		edge = pe
	case "embd":
		if err := embd.Init(); err != nil {
			return err
		}
		txTimer = periph.NewTimer(irphy.UsecPerTick)
		rxTimer = periph.NewTimer(irphy.UsecPerTick)
		ec, err := embd.OpenCarrier(cfg.Tx.CarrierPin)
		if err != nil {
			return err
		}
		txCarrier = ec
		ee, err := embd.OpenEdgeInput(cfg.Rx.EdgePin)
		if err != nil {
			return err
		}
		edge = ee
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}

	modu := carrier.New(txCarrier, freq, false)
	tx := txphy.New(txTimer, modu, sink)

	bank := rxbuf.New()
	rxCfg := rxphy.Config{
		SyncDelay:           cfg.Rx.SyncDelay,
		MarkDelay:           cfg.Rx.MarkDelay,
		SpaceDelay:          cfg.Rx.SpaceDelay,
		TimerOverflowsMark:  cfg.Rx.TimerOverflowsMark,
		TimerOverflowsSpace: cfg.Rx.TimerOverflowsSpace,
	}
	if rxCfg.SyncDelay == 0 {
		rxCfg = rxphy.DefaultConfig()
	}
	rx := rxphy.New(rxTimer, edge, bank, rxCfg, sink)
	rx.Enable()

	log.Printf("ir-phy-demo running on backend=%s carrier=%s", backend, cfg.Tx.CarrierFreq)

	for {
		if !tx.GetState() {
			tx.Fill(true, irphy.Mark, 384, 0, 0)
			tx.Fill(false, irphy.Space, 1192, 1, 2)
			if st := tx.Send(); st != irphy.StatusOK {
				log.Printf("send: %s", st)
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func main() {
	cfgPath := flag.String("config", "irphy.toml", "path to config file")
	useSim := flag.Bool("sim", false, "force the software simulation backend regardless of config")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s:\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()

	if err := run(*cfgPath, *useSim); err != nil {
		fmt.Fprintf(os.Stderr, "Exiting due to error: %s\n", err)
		os.Exit(2)
	}
}
