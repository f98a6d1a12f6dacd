package order

import (
	"sync"

	"github.com/wangjia184/sortedset"

	"github.com/opmusic/KVStore/internal/clock"
)

// seqQueue is the Sequential scheduler's priority queue, ordered by
// (counter, nodeId) ascending. Backed by a sorted set so the head is
// always the current candidate minimum and insertions stay O(log n),
// the same data structure choice the teacher's received-queue makes
// for an identical reason.
type seqQueue struct {
	mutex sync.Mutex
	set   *sortedset.SortedSet
}

func newSeqQueue() *seqQueue {
	return &seqQueue{set: sortedset.New()}
}

// score encodes (counter, nodeId) into a single comparable score,
// reserving the low 16 bits for the node id so ties break by node id
// ascending. Cluster sizes in this system are small and bounded, so a
// 16-bit reservation never collides with a real node id.
func score(stamp clock.Stamp) int64 {
	return int64(stamp.Counter)<<16 | int64(stamp.Node&0xFFFF)
}

func (q *seqQueue) insert(rec *Record) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.set.AddOrUpdate(rec.ID, sortedset.SCORE(score(rec.Stamp)), rec)
}

// peekHead returns the record with the lowest (counter, nodeId), or
// nil if the queue is empty.
func (q *seqQueue) peekHead() *Record {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	node := q.set.PeekMin()
	if node == nil {
		return nil
	}
	return node.Value.(*Record)
}

func (q *seqQueue) remove(id string) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.set.Remove(id)
}

func (q *seqQueue) get(id string) *Record {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	node := q.set.GetByKey(id)
	if node == nil {
		return nil
	}
	return node.Value.(*Record)
}

func (q *seqQueue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.set.GetCount()
}
