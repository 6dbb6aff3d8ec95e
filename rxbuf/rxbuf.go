// Package rxbuf implements the Rx PHY's capture buffer bank: a fixed ring of fixed-size
// buffers, written by the Rx PHY's edge/timeout callbacks and handed off to the foreground for
// decoding once full.
package rxbuf

import "github.com/tve/irphy"

// NumBuffers is the number of buffers in the bank, EMBX_IR_RX_NUMBER_OF_BUFFERS in the original
// firmware.
const NumBuffers = 4

// Size is the number of elements per buffer, EMBX_IR_RX_BUF_SZ.
const Size = 256

// state is a buffer's lifecycle: Empty buffers accept new elements, Full buffers are awaiting
// the foreground and are never written to until Reset.
type state int

const (
	stateEmpty state = iota
	stateFull
)

// Elem records one mark or space interval captured from the edge/timeout state machine.
type Elem struct {
	Kind   irphy.Interval
	Ticks  uint32
	TimeUs uint32
}

// Buffer is one capture buffer: a status, a size, a full/empty state, and the backing element
// array. The zero value is an empty, zero-length buffer whose elements have Kind irphy.Space
// (Interval's zero value); Reset sets every element's Kind to irphy.Unknown instead.
type Buffer struct {
	Status irphy.Status
	Size   uint16
	state  state
	Elem   [Size]Elem
}

// Full reports whether the foreground may read this buffer (and the ISR side may not write to
// it until Reset).
func (b *Buffer) Full() bool { return b.state == stateFull }

// Bank is the fixed bank of buffers plus the single producer index used by the Rx PHY's
// interrupt-equivalent callbacks. The zero value is not usable; use New.
type Bank struct {
	bufs      [NumBuffers]Buffer
	isrIdx    uint8
	overflows uint32 // AcquireElem called on a full buffer's element array
	noMemory  uint32 // AcquireElem called while the current buffer is Full
}

// New returns a freshly initialized Bank: every buffer reset, stats zeroed, producer index 0.
func New() *Bank {
	b := &Bank{}
	b.Init()
	return b
}

// Reset restores buffer idx to its initial empty state: size 0, every element's Kind set to
// irphy.Unknown. It returns irphy.StatusNoMemory if idx is out of range, matching the firmware's
// boundary-checked embx_ir_rx_phy_buf_reset.
func (b *Bank) Reset(idx uint8) irphy.Status {
	if int(idx) >= NumBuffers {
		return irphy.StatusNoMemory
	}
	buf := &b.bufs[idx]
	buf.state = stateEmpty
	buf.Status = irphy.StatusOK
	buf.Size = 0
	for i := range buf.Elem {
		buf.Elem[i].Kind = irphy.Unknown
	}
	return irphy.StatusOK
}

// Init resets every buffer, clears the error counters, and rewinds the producer index to 0.
func (b *Bank) Init() {
	for i := 0; i < NumBuffers; i++ {
		b.Reset(uint8(i))
	}
	b.overflows = 0
	b.noMemory = 0
	b.isrIdx = 0
}

// AcquireElem returns the next free element in the current buffer, to be filled in by the
// caller, and advances that buffer's size. It returns irphy.StatusOverflow if the current
// buffer's element array is exhausted (data is dropped; the buffer stays Empty so the caller
// can still Complete it with whatever it already captured), or irphy.StatusNoMemory if the
// current buffer is Full (still awaiting the foreground); other buffers are not checked.
func (b *Bank) AcquireElem() (*Elem, irphy.Status) {
	buf := &b.bufs[b.isrIdx]
	var rval irphy.Status
	var elem *Elem

	if buf.state == stateEmpty {
		if buf.Size < Size {
			elem = &buf.Elem[buf.Size]
			buf.Size++
			rval = irphy.StatusOK
		} else {
			b.overflows++
			rval = irphy.StatusOverflow
		}
	} else {
		b.noMemory++
		rval = irphy.StatusNoMemory
	}

	buf.Status = rval
	return elem, rval
}

// Complete marks the current buffer Full with the given status and advances the producer index,
// wrapping at NumBuffers. The foreground is expected to read the now-full buffer via Buffer
// and eventually call Reset on it to return it to the pool.
func (b *Bank) Complete(status irphy.Status) irphy.Status {
	buf := &b.bufs[b.isrIdx]
	buf.state = stateFull
	buf.Status = status
	b.isrIdx++
	if int(b.isrIdx) == NumBuffers {
		b.isrIdx = 0
	}
	return irphy.StatusOK
}

// Buffer returns a pointer to buffer idx for foreground inspection/decoding. The caller must not
// mutate Elem entries beyond reading them, and must call Reset once done.
func (b *Bank) Buffer(idx uint8) *Buffer { return &b.bufs[idx] }

// ISRIndex returns the buffer index the next AcquireElem/Complete pair will act on.
func (b *Bank) ISRIndex() uint8 { return b.isrIdx }

// Overflows returns the count of AcquireElem calls that found the current buffer's elements
// exhausted.
func (b *Bank) Overflows() uint32 { return b.overflows }

// NoMemory returns the count of AcquireElem calls that found the current buffer Full.
func (b *Bank) NoMemory() uint32 { return b.noMemory }
