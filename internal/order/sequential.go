package order

import (
	"time"

	"github.com/opmusic/KVStore/internal/clock"
	"github.com/opmusic/KVStore/internal/logging"
	"github.com/opmusic/KVStore/internal/store"
)

// pollInterval bounds how long the delivery loop can go without
// re-checking the head even if every signal were somehow missed.
const pollInterval = 5 * time.Millisecond

// ackReapTTL is how long an ack-table entry survives if it is never
// explicitly reaped because its record never delivers (e.g. the known
// liveness limitation documented in spec.md section 7).
const ackReapTTL = 10 * time.Minute

// SequentialScheduler orders writes under the total-order (Lamport)
// discipline: a record delivers only once it is the queue minimum and
// every peer has acknowledged it.
type SequentialScheduler struct {
	size  int
	queue *seqQueue
	acks  *AckTable
	store *store.Store
	log   logging.Logger
	loop  *deliveryLoop
}

// NewSequentialScheduler creates a scheduler for a cluster of the given
// size and starts its delivery loop.
func NewSequentialScheduler(size int, st *store.Store, log logging.Logger) *SequentialScheduler {
	s := &SequentialScheduler{
		size:  size,
		queue: newSeqQueue(),
		acks:  NewAckTable(ackReapTTL),
		store: st,
		log:   log,
		loop:  newDeliveryLoopWithLogger(log),
	}
	s.loop.start(pollInterval, s.tick)
	return s
}

// AddTask atomically inserts rec into the priority queue. Never blocks
// on delivery; safe under concurrent callers.
func (s *SequentialScheduler) AddTask(rec *Record) {
	s.acks.ensure(rec.ID, s.size)
	s.queue.insert(rec)
	s.loop.signal()
}

// UpdateAck marks sender's slot for the message identified by id and
// wakes the delivery loop to re-evaluate.
func (s *SequentialScheduler) UpdateAck(id string, sender clock.NodeID) *bitmap {
	bm := s.acks.updateAck(id, sender, s.size)
	s.loop.signal()
	return bm
}

// ifAllowDeliver is the pure predicate from spec.md 4.2: true iff rec
// is the queue head and its ack bitmap is fully set. The first time a
// record is inspected as head, its attached ack task (if any) fires
// exactly once and this call reports false for that pass — delivery
// only happens once its own ack arrives and completes the bitmap.
func (s *SequentialScheduler) ifAllowDeliver(rec *Record) bool {
	head := s.queue.peekHead()
	if head == nil || head.ID != rec.ID {
		return false
	}

	if rec.fireAckOnce() {
		rec.setState(AcksRequested)
		return false
	}

	bm := s.acks.lookup(rec.ID)
	if bm == nil || !bm.complete() {
		return false
	}
	rec.setState(Ready)
	return true
}

// tick is one pass of the delivery loop: inspect the head, deliver it
// if eligible, and keep going as long as delivering unblocks the new
// head (acks for the next record may already be complete).
func (s *SequentialScheduler) tick() {
	for {
		head := s.queue.peekHead()
		if head == nil {
			return
		}
		if !s.ifAllowDeliver(head) {
			return
		}
		s.store.Set(head.Key, head.Value)
		head.setState(Delivered)
		s.queue.remove(head.ID)
		s.acks.reap(head.ID)
		if s.log != nil {
			s.log.Debugf("delivered %s (%s=%s)", head.ID, head.Key, head.Value)
		}
	}
}

// Len reports how many records are currently queued, for tests.
func (s *SequentialScheduler) Len() int {
	return s.queue.len()
}

// Stop halts the delivery loop and releases the ack table's resources.
func (s *SequentialScheduler) Stop() {
	s.loop.stop()
	s.acks.close()
}
