// Command ir-mqtt-bridge bridges the IR PHY to an MQTT broker: every completed Rx buffer is
// published as a JSON frame, and Tx descriptor programs can be filled and sent by publishing to
// a pair of control topics. It is retargeted from cmd/mqttradio's radio-packet bridge to this
// package's IR frames/descriptors, keeping the same connect-then-publish-and-subscribe shape.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tve/irphy"
	"github.com/tve/irphy/carrier"
	"github.com/tve/irphy/config"
	"github.com/tve/irphy/hw/sim"
	"github.com/tve/irphy/rxbuf"
	"github.com/tve/irphy/rxphy"
	"github.com/tve/irphy/trace"
	"github.com/tve/irphy/txphy"
)

// rxFrame is the JSON shape published for each completed Rx buffer.
type rxFrame struct {
	Status string    `json:"status"`
	Size   int       `json:"size"`
	Elems  []rxElem  `json:"elems"`
	At     time.Time `json:"at"`
}

type rxElem struct {
	Kind   string `json:"kind"`
	Ticks  uint32 `json:"ticks"`
	TimeUs uint32 `json:"time_us"`
}

func connectMQTT(conf config.MqttConfig) (mqtt.Client, error) {
	mqtt.ERROR = log.New(os.Stderr, "", 0)
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", conf.Host, conf.Port))
	opts.ClientID = "ir-mqtt-bridge"
	opts.Username = conf.User
	opts.Password = conf.Password

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(10 * time.Second) {
		if err := token.Error(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("mqtt: connect timed out")
	}
	return client, nil
}

// pollAndPublish polls bank for newly completed buffers and publishes + resets each one.
func pollAndPublish(client mqtt.Client, prefix string, bank *rxbuf.Bank) {
	topic := prefix + "/rx"
	var idx uint8
	for {
		time.Sleep(50 * time.Millisecond)
		buf := bank.Buffer(idx)
		if !buf.Full() {
			continue
		}
		frame := rxFrame{Status: buf.Status.String(), Size: int(buf.Size), At: time.Now()}
		for i := uint16(0); i < buf.Size; i++ {
			e := buf.Elem[i]
			frame.Elems = append(frame.Elems, rxElem{Kind: e.Kind.String(), Ticks: e.Ticks, TimeUs: e.TimeUs})
		}
		payload, err := json.Marshal(frame)
		if err != nil {
			log.Printf("marshal rx frame: %s", err)
		} else {
			client.Publish(topic, 0, false, payload)
		}
		bank.Reset(idx)
		idx++
		if int(idx) == rxbuf.NumBuffers {
			idx = 0
		}
	}
}

// txFillMsg is the JSON payload accepted on the <prefix>/tx/fill topic.
type txFillMsg struct {
	Reset     bool   `json:"reset"`
	Kind      string `json:"kind"` // "mark" or "space"
	Usec      uint16 `json:"usec"`
	MaxRepeat int16  `json:"max_repeat"`
	Decrement uint8  `json:"decrement"`
}

func subscribeTxControl(client mqtt.Client, prefix string, tx *txphy.PHY) {
	client.Subscribe(prefix+"/tx/fill", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m txFillMsg
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("tx/fill: bad payload: %s", err)
			return
		}
		kind := irphy.Space
		if strings.EqualFold(m.Kind, "mark") {
			kind = irphy.Mark
		}
		if st := tx.Fill(m.Reset, kind, m.Usec, m.MaxRepeat, m.Decrement); st != irphy.StatusOK {
			log.Printf("tx/fill: %s", st)
		}
	})
	client.Subscribe(prefix+"/tx/send", 0, func(_ mqtt.Client, _ mqtt.Message) {
		if st := tx.Send(); st != irphy.StatusOK {
			log.Printf("tx/send: %s", st)
		}
	})
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	var sink trace.Sink = trace.Noop
	if cfg.Trace.Enabled {
		sink = trace.NewRing(cfg.Trace.RingSize)
	}

	freq, err := carrier.FreqByName(cfg.Tx.CarrierFreq)
	if err != nil {
		return err
	}

	clk := sim.Clock{UsecPerTick: irphy.UsecPerTick, Scale: 1}
	txTimer := sim.NewTimer(clk)
	txCarrier := sim.NewCarrier(nil)
	modu := carrier.New(txCarrier, freq, false)
	tx := txphy.New(txTimer, modu, sink)

	rxTimer := sim.NewTimer(clk)
	edge := sim.NewEdgeInput()
	bank := rxbuf.New()
	rxCfg := rxphy.DefaultConfig()
	if cfg.Rx.SyncDelay != 0 {
		rxCfg = rxphy.Config{
			SyncDelay:           cfg.Rx.SyncDelay,
			MarkDelay:           cfg.Rx.MarkDelay,
			SpaceDelay:          cfg.Rx.SpaceDelay,
			TimerOverflowsMark:  cfg.Rx.TimerOverflowsMark,
			TimerOverflowsSpace: cfg.Rx.TimerOverflowsSpace,
		}
	}
	rx := rxphy.New(rxTimer, edge, bank, rxCfg, sink)
	rx.Enable()

	client, err := connectMQTT(cfg.Mqtt)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	prefix := cfg.Mqtt.Prefix
	if prefix == "" {
		prefix = "ir"
	}
	subscribeTxControl(client, prefix, tx)
	log.Printf("ir-mqtt-bridge connected, prefix=%s", prefix)

	pollAndPublish(client, prefix, bank) // blocks forever
	return nil
}

func main() {
	cfgPath := flag.String("config", "irphy.toml", "path to config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s:\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "Exiting due to error: %s\n", err)
		os.Exit(2)
	}
}

