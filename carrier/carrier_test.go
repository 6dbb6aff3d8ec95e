package carrier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCarrier struct {
	running bool
	freq    uint8
	starts  int
	stops   int
}

func (f *fakeCarrier) Start()              { f.running = true; f.starts++ }
func (f *fakeCarrier) Stop()                { f.running = false; f.stops++ }
func (f *fakeCarrier) SetFreq(period uint8) { f.freq = period }

func Test_New_StartNowFalse_LeavesCarrierStopped(t *testing.T) {
	fc := &fakeCarrier{running: true}
	m := New(fc, KHz38, false)

	assert.False(t, fc.running)
	assert.Equal(t, uint8(KHz38), fc.freq)
	assert.Equal(t, KHz38, m.Freq())
}

func Test_New_StartNowTrue_LeavesCarrierAlone(t *testing.T) {
	fc := &fakeCarrier{}
	New(fc, KHz36, true)

	assert.Equal(t, 0, fc.stops)
}

func Test_StartStop_Forwarded(t *testing.T) {
	fc := &fakeCarrier{}
	m := New(fc, KHz38, false)

	m.Start()
	assert.True(t, fc.running)

	m.Stop()
	assert.False(t, fc.running)
}

func Test_SetFreq_UpdatesCarrierAndModulator(t *testing.T) {
	fc := &fakeCarrier{}
	m := New(fc, KHz38, false)

	m.SetFreq(KHz56)
	assert.Equal(t, uint8(KHz56), fc.freq)
	assert.Equal(t, KHz56, m.Freq())
}

func Test_FreqByName(t *testing.T) {
	f, err := FreqByName("38khz")
	require.NoError(t, err)
	assert.Equal(t, KHz38, f)

	_, err = FreqByName("bogus")
	assert.Error(t, err)
}

func Test_PeriodForHz_ClampsToBounds(t *testing.T) {
	assert.Equal(t, uint8(MaxPeriod), PeriodForHz(8000000, 0))
	assert.Equal(t, uint8(MaxPeriod), PeriodForHz(8000000, 1))
	assert.Equal(t, uint8(MinPeriod), PeriodForHz(8000000, 1000000))
}
