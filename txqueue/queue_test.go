package txqueue

import (
	"testing"

	"github.com/tve/irphy"
)

func Test_FillGet_Sequence(t *testing.T) {
	q := New()
	if st := q.Fill(true, irphy.Mark, 9000, 0, 0); st != irphy.StatusOK {
		t.Fatalf("Fill 1: got %v, want ok", st)
	}
	if st := q.Fill(false, irphy.Space, 4500, 0, 0); st != irphy.StatusOK {
		t.Fatalf("Fill 2: got %v, want ok", st)
	}

	d0, st := q.Get()
	if st != irphy.StatusOK {
		t.Fatalf("Get 1: got %v, want ok", st)
	}
	if d0.Kind != irphy.Mark || d0.Period != (9000/8)%256 {
		t.Fatalf("Get 1: got %+v", d0)
	}

	d1, st := q.Get()
	if st != irphy.StatusOK {
		t.Fatalf("Get 2: got %v, want ok", st)
	}
	if d1.Kind != irphy.Space || d1.Period != (4500/8)%256 {
		t.Fatalf("Get 2: got %+v", d1)
	}

	if _, st := q.Get(); st != irphy.StatusBadData {
		t.Fatalf("Get 3: got %v, want bad_data", st)
	}
}

func Test_Fill_Overflow(t *testing.T) {
	q := New()
	for i := 0; i < Size; i++ {
		if st := q.Fill(i == 0, irphy.Mark, 100, 0, 0); st != irphy.StatusOK {
			t.Fatalf("Fill %d: got %v, want ok", i, st)
		}
	}
	if q.FillIndex() != Size {
		t.Fatalf("FillIndex = %d, want %d", q.FillIndex(), Size)
	}
	if st := q.Fill(false, irphy.Mark, 100, 0, 0); st != irphy.StatusOverflow {
		t.Fatalf("Fill 21: got %v, want overflow", st)
	}
	if q.FillIndex() != Size {
		t.Fatalf("FillIndex after overflow = %d, want %d", q.FillIndex(), Size)
	}
}

func Test_Fill_DecrementClamp(t *testing.T) {
	q := New()
	q.Fill(true, irphy.Mark, 100, 0, 5) // position 0: any decrement > 1 clamps to 0
	if q.slots[0].Decrement != 0 {
		t.Fatalf("slot 0 decrement = %d, want 0", q.slots[0].Decrement)
	}
	q.Fill(false, irphy.Space, 100, 0, 2) // position 1: decrement <= 2 is kept
	if q.slots[1].Decrement != 2 {
		t.Fatalf("slot 1 decrement = %d, want 2", q.slots[1].Decrement)
	}
}

func Test_Fill_NegativeMaxRepeatCoercesToForever(t *testing.T) {
	q := New()
	q.Fill(true, irphy.Mark, 100, -5, 0)
	if q.slots[0].MaxRepeatCnt != Forever {
		t.Fatalf("MaxRepeatCnt = %d, want Forever", q.slots[0].MaxRepeatCnt)
	}
}

func Test_DecrementTxIndex_Saturates(t *testing.T) {
	q := New()
	q.Fill(true, irphy.Mark, 100, 0, 0)
	q.Fill(false, irphy.Mark, 100, 0, 0)
	q.Get()
	q.Get()
	q.DecrementTxIndex(10)
	if q.TxIndex() != 0 {
		t.Fatalf("TxIndex = %d, want 0", q.TxIndex())
	}
}

func Test_Fill_ResetClearsBothIndices(t *testing.T) {
	q := New()
	q.Fill(true, irphy.Mark, 100, 0, 0)
	q.Fill(false, irphy.Mark, 100, 0, 0)
	q.Get()
	q.Fill(true, irphy.Space, 200, 0, 0)
	if q.FillIndex() != 1 || q.TxIndex() != 0 {
		t.Fatalf("after reset fill: FillIndex=%d TxIndex=%d, want 1,0", q.FillIndex(), q.TxIndex())
	}
}
