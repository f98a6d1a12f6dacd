package order

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/opmusic/KVStore/internal/clock"
	"github.com/opmusic/KVStore/internal/store"
)

// pollUntil retries cond every 2ms up to 500ms, failing the test if it
// never becomes true. The delivery loop runs on its own goroutine with
// a 5ms poll fallback, so tests must wait rather than assert instantly.
func pollUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition never became true")
	}
}

func stampedRecord(counter uint64, node clock.NodeID, key, value string) *Record {
	stamp := clock.Stamp{Counter: counter, Node: node}
	return &Record{
		ID:     MessageID(stamp),
		Origin: node,
		Stamp:  stamp,
		Key:    key,
		Value:  value,
	}
}

// TestSequential_AcksOutOfOrder covers spec scenario 2: N=3, node 0
// broadcasts stamp (5,0); acks arrive from node 1, node 0, node 2 in
// that order. Delivery must not happen until all three slots are set.
func TestSequential_AcksOutOfOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := store.New()
	s := NewSequentialScheduler(3, st, nil)
	defer s.Stop()

	rec := stampedRecord(5, 0, "x", "1")
	s.AddTask(rec)

	// let the first pass fire the ack-request gate
	pollUntil(t, func() bool { return rec.State() == AcksRequested })

	s.UpdateAck(rec.ID, 1)
	time.Sleep(10 * time.Millisecond)
	if _, ok := st.Get("x"); ok {
		t.Fatalf("delivered with only one ack set")
	}

	s.UpdateAck(rec.ID, 0)
	time.Sleep(10 * time.Millisecond)
	if _, ok := st.Get("x"); ok {
		t.Fatalf("delivered with only two acks set")
	}

	s.UpdateAck(rec.ID, 2)
	pollUntil(t, func() bool {
		v, ok := st.Get("x")
		return ok && v == "1"
	})
}

// TestSequential_HeadOfLine covers spec scenario 3: two writes with
// stamps (3,0) and (3,1). The ack for (3,1) completes first but it must
// not deliver before (3,0), the queue minimum.
func TestSequential_HeadOfLine(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := store.New()
	s := NewSequentialScheduler(2, st, nil)
	defer s.Stop()

	first := stampedRecord(3, 0, "x", "first")
	second := stampedRecord(3, 1, "x", "second")

	s.AddTask(first)
	s.AddTask(second)

	pollUntil(t, func() bool { return second.State() == AcksRequested })
	s.UpdateAck(second.ID, 0)
	s.UpdateAck(second.ID, 1)

	time.Sleep(15 * time.Millisecond)
	if v, ok := st.Get("x"); ok && v == "second" {
		t.Fatalf("second record delivered ahead of queue minimum")
	}

	pollUntil(t, func() bool { return first.State() == AcksRequested })
	s.UpdateAck(first.ID, 0)
	s.UpdateAck(first.ID, 1)

	pollUntil(t, func() bool {
		v, ok := st.Get("x")
		return ok && v == "second"
	})
}

// TestSequential_TwoNodeTotalOrder covers spec scenario 1: both
// candidate stamps delivered in (counter, nodeId) order regardless of
// ack arrival order.
func TestSequential_TwoNodeTotalOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := store.New()
	s := NewSequentialScheduler(2, st, nil)
	defer s.Stop()

	x := stampedRecord(1, 0, "x", "1")
	y := stampedRecord(1, 1, "y", "2")

	s.AddTask(y)
	s.AddTask(x)

	pollUntil(t, func() bool { return x.State() == AcksRequested && y.State() == AcksRequested })
	s.UpdateAck(y.ID, 0)
	s.UpdateAck(y.ID, 1)
	s.UpdateAck(x.ID, 0)
	s.UpdateAck(x.ID, 1)

	pollUntil(t, func() bool {
		vx, okx := st.Get("x")
		vy, oky := st.Get("y")
		return okx && oky && vx == "1" && vy == "2"
	})
}

func TestSequential_UpdateAckIdempotent(t *testing.T) {
	st := store.New()
	s := NewSequentialScheduler(3, st, nil)
	defer s.Stop()

	id := "7.0"
	first := s.UpdateAck(id, 1)
	second := s.UpdateAck(id, 1)
	if first.slots[1] != second.slots[1] {
		t.Fatalf("replaying updateAck changed the bitmap")
	}
}
