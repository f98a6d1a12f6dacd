package order

import (
	"testing"
	"time"
)

func TestAckTable_LazyCreateAndComplete(t *testing.T) {
	tbl := NewAckTable(time.Minute)
	defer tbl.close()

	if tbl.lookup("1.0") != nil {
		t.Fatalf("expected no entry before first observation")
	}

	bm := tbl.updateAck("1.0", 1, 3)
	if bm.complete() {
		t.Fatalf("bitmap should not be complete after one slot")
	}

	tbl.updateAck("1.0", 0, 3)
	tbl.updateAck("1.0", 2, 3)

	if !tbl.lookup("1.0").complete() {
		t.Fatalf("bitmap should be complete once every slot is set")
	}
}

func TestAckTable_ReapRemovesEntry(t *testing.T) {
	tbl := NewAckTable(time.Minute)
	defer tbl.close()

	tbl.updateAck("2.0", 0, 2)
	tbl.reap("2.0")

	if tbl.lookup("2.0") != nil {
		t.Fatalf("expected entry to be gone after reap")
	}
}

func TestAckTable_EnsureIsIdempotent(t *testing.T) {
	tbl := NewAckTable(time.Minute)
	defer tbl.close()

	first := tbl.ensure("3.0", 4)
	second := tbl.ensure("3.0", 4)
	if first != second {
		t.Fatalf("ensure should return the same bitmap on repeated calls")
	}
}
