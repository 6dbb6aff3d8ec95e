// Package txqueue implements the Tx PHY's descriptor queue: a bounded array of mark/space
// descriptors with rewind-for-repeat semantics, filled by the foreground and drained by the
// Tx PHY's timer-overflow callback.
package txqueue

import "github.com/tve/irphy"

// Size is the number of descriptor slots, Q_SZ in the original firmware.
const Size = 20

// Forever is the max_repeat_cnt sentinel requesting a perpetual rewind.
const Forever int16 = -1

// Descriptor is one entry in the Tx "program": a mark or a space of a given duration, with
// optional rewind-for-repeat instructions.
type Descriptor struct {
	Kind irphy.Interval // mark or space

	Usec uint16 // nominal duration, as filled

	// Period is the value programmed into the timer's top/compare register:
	// usec / irphy.UsecPerTick, truncated to the low 8 bits of a multi-tick rollover.
	Period uint8

	// Overflows is usec / 256 (in microseconds, not timer ticks).
	// Computed at fill time but, per the original firmware and this port alike, never
	// consulted by the callback - see SPEC_FULL.md open questions.
	Overflows uint8

	RepeatCnt    int16 // current repeat count, starts at 0
	MaxRepeatCnt int16 // Forever, or the number of times to repeat
	Decrement    uint8 // how far back a repeat rewinds
}

// Queue is the bounded, rewindable descriptor queue. The zero value is not usable; use New.
type Queue struct {
	slots     [Size]Descriptor
	fillIndex uint8 // producer
	txIndex   uint8 // consumer
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Fill appends a descriptor to the queue. If reset is true the queue is cleared first, so the
// new descriptor becomes D0. A negative maxRepeat is coerced to Forever. A decrement greater
// than the current fill position + 1 is replaced by 0, so a rewind can never address a
// negative slot.
//
// Fill returns irphy.StatusOverflow if the queue is already full (fillIndex == Size). Callers
// are expected to have already checked that the Tx PHY is not busy - txphy.PHY's own Fill
// wrapper enforces that; this package has no notion of "busy" on its own.
func (q *Queue) Fill(reset bool, kind irphy.Interval, usec uint16, maxRepeat int16, decrement uint8) irphy.Status {
	if reset {
		q.fillIndex = 0
		q.txIndex = 0
	}

	if q.fillIndex >= Size {
		return irphy.StatusOverflow
	}

	d := &q.slots[q.fillIndex]
	d.Kind = kind
	d.Usec = usec
	d.Period = uint8(usec / irphy.UsecPerTick)
	d.Overflows = uint8(usec / 256)

	if maxRepeat >= 0 {
		d.MaxRepeatCnt = maxRepeat
	} else {
		d.MaxRepeatCnt = Forever
	}
	d.RepeatCnt = 0

	if uint16(decrement) <= uint16(q.fillIndex)+1 {
		d.Decrement = decrement
	} else {
		d.Decrement = 0
	}

	q.fillIndex++
	return irphy.StatusOK
}

// Get returns the descriptor at txIndex and advances txIndex, or reports StatusBadData once
// the queue is drained (txIndex == fillIndex). The returned pointer aliases the queue's
// internal storage, matching the firmware's by-reference semantics - the Tx PHY callback
// mutates RepeatCnt in place through it.
func (q *Queue) Get() (*Descriptor, irphy.Status) {
	if q.txIndex < q.fillIndex {
		d := &q.slots[q.txIndex]
		q.txIndex++
		return d, irphy.StatusOK
	}
	return nil, irphy.StatusBadData
}

// DecrementTxIndex performs a saturating subtraction of n from txIndex, used by the Tx PHY
// callback to rewind for a repeat block.
func (q *Queue) DecrementTxIndex(n uint8) {
	if uint16(q.txIndex) >= uint16(n) {
		q.txIndex -= n
	} else {
		q.txIndex = 0
	}
}

// FillIndex returns the current producer index, for tests and invariant checks.
func (q *Queue) FillIndex() uint8 { return q.fillIndex }

// TxIndex returns the current consumer index, for tests and invariant checks.
func (q *Queue) TxIndex() uint8 { return q.txIndex }
