package rxbuf

import (
	"testing"

	"github.com/tve/irphy"
)

func Test_AcquireComplete_Sequence(t *testing.T) {
	b := New()

	e, st := b.AcquireElem()
	if st != irphy.StatusOK {
		t.Fatalf("AcquireElem 1: got %v, want ok", st)
	}
	e.Kind = irphy.Mark
	e.Ticks = 10
	e.TimeUs = 80

	if st := b.Complete(irphy.StatusOK); st != irphy.StatusOK {
		t.Fatalf("Complete: got %v, want ok", st)
	}

	if !b.Buffer(0).Full() {
		t.Fatalf("buffer 0 not marked full after Complete")
	}
	if b.Buffer(0).Size != 1 {
		t.Fatalf("buffer 0 size = %d, want 1", b.Buffer(0).Size)
	}
	if b.ISRIndex() != 1 {
		t.Fatalf("ISR index = %d, want 1", b.ISRIndex())
	}
}

func Test_AcquireElem_OverflowWhenBufferFull(t *testing.T) {
	b := New()
	for i := 0; i < Size; i++ {
		if _, st := b.AcquireElem(); st != irphy.StatusOK {
			t.Fatalf("AcquireElem %d: got %v, want ok", i, st)
		}
	}
	if _, st := b.AcquireElem(); st != irphy.StatusOverflow {
		t.Fatalf("AcquireElem past Size: got %v, want overflow", st)
	}
	if b.Overflows() != 1 {
		t.Fatalf("Overflows = %d, want 1", b.Overflows())
	}
}

func Test_AcquireElem_NoMemoryWhenAllBuffersFull(t *testing.T) {
	b := New()
	for i := 0; i < NumBuffers; i++ {
		b.AcquireElem()
		b.Complete(irphy.StatusOK)
	}
	if _, st := b.AcquireElem(); st != irphy.StatusNoMemory {
		t.Fatalf("AcquireElem with all buffers full: got %v, want no_memory", st)
	}
	if b.NoMemory() != 1 {
		t.Fatalf("NoMemory = %d, want 1", b.NoMemory())
	}
}

func Test_Reset_ReturnsBufferToPool(t *testing.T) {
	b := New()
	b.AcquireElem()
	b.Complete(irphy.StatusOK)

	if st := b.Reset(0); st != irphy.StatusOK {
		t.Fatalf("Reset: got %v, want ok", st)
	}
	if b.Buffer(0).Full() {
		t.Fatalf("buffer 0 still full after Reset")
	}
	if b.Buffer(0).Size != 0 {
		t.Fatalf("buffer 0 size after Reset = %d, want 0", b.Buffer(0).Size)
	}
	if b.Buffer(0).Elem[0].Kind != irphy.Unknown {
		t.Fatalf("buffer 0 elem 0 kind after Reset = %v, want Unknown", b.Buffer(0).Elem[0].Kind)
	}
}

func Test_Reset_OutOfRangeIndex(t *testing.T) {
	b := New()
	if st := b.Reset(NumBuffers); st != irphy.StatusNoMemory {
		t.Fatalf("Reset out of range: got %v, want no_memory", st)
	}
}

func Test_ISRIndex_WrapsAfterComplete(t *testing.T) {
	b := New()
	for i := 0; i < NumBuffers; i++ {
		b.AcquireElem()
		b.Complete(irphy.StatusOK)
	}
	if b.ISRIndex() != 0 {
		t.Fatalf("ISR index after wrapping = %d, want 0", b.ISRIndex())
	}
}
