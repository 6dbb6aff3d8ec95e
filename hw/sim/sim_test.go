package sim

import (
	"testing"
	"time"
)

func Test_Timer_FiresAfterTop(t *testing.T) {
	clk := Clock{UsecPerTick: 1, Scale: 1000} // 1000x real time so the test is fast
	tm := NewTimer(clk)

	fired := make(chan struct{}, 1)
	tm.OnOverflow(func() { fired <- struct{}{} })
	tm.Start(1000) // 1000 ticks * 1us / 1000x speed = 1ms

	select {
	case <-fired:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timer never fired")
	}
}

func Test_Timer_StopPreventsCallback(t *testing.T) {
	clk := Clock{UsecPerTick: 1, Scale: 1000}
	tm := NewTimer(clk)

	fired := make(chan struct{}, 1)
	tm.OnOverflow(func() { fired <- struct{}{} })
	tm.Start(10000)
	tm.Stop()

	select {
	case <-fired:
		t.Fatalf("callback fired after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_Carrier_ReportsState(t *testing.T) {
	var got []bool
	c := NewCarrier(func(running bool, period uint8) { got = append(got, running) })
	c.SetFreq(104)
	c.Start()
	c.Stop()
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Fatalf("state callbacks = %v, want [true false]", got)
	}
	if c.Running() {
		t.Fatalf("Running() = true after Stop")
	}
}

func Test_EdgeInput_DeliversWhenEnabled(t *testing.T) {
	e := NewEdgeInput()
	defer e.Close()

	got := make(chan bool, 1)
	e.OnEdge(func(rising bool) { got <- rising })
	e.Enable()
	e.Fire(true)

	select {
	case rising := <-got:
		if !rising {
			t.Fatalf("got falling, want rising")
		}
	case <-time.After(time.Second):
		t.Fatalf("edge never delivered")
	}
}

func Test_EdgeInput_SuppressedWhenDisabled(t *testing.T) {
	e := NewEdgeInput()
	defer e.Close()

	got := make(chan bool, 1)
	e.OnEdge(func(rising bool) { got <- rising })
	e.Fire(true) // disabled by default

	select {
	case <-got:
		t.Fatalf("edge delivered while disabled")
	case <-time.After(50 * time.Millisecond):
	}
}
