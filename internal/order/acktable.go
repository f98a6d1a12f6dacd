package order

import (
	"sync"
	"time"

	"github.com/ReneKroon/ttlcache"

	"github.com/opmusic/KVStore/internal/clock"
)

// bitmap is one ack-table entry: which of the N peers have acknowledged
// a given message. Mutated under its own lock so the table lock is
// only ever held for the lookup/create step.
type bitmap struct {
	mutex sync.Mutex
	slots []bool
}

func newBitmap(size int) *bitmap {
	return &bitmap{slots: make([]bool, size)}
}

func (b *bitmap) set(node clock.NodeID) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if int(node) >= 0 && int(node) < len(b.slots) {
		b.slots[node] = true
	}
}

func (b *bitmap) complete() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, acked := range b.slots {
		if !acked {
			return false
		}
	}
	return true
}

// AckTable maps a sequential message identity to its ack bitmap. Entries
// are reaped on delivery via a TTL cache, resolving the open question
// that the source never reaps them: a bounded implementation should.
type AckTable struct {
	mutex sync.Mutex
	cache *ttlcache.Cache
}

// NewAckTable creates an ack table whose entries expire ttl after their
// last touch if never explicitly reaped.
func NewAckTable(ttl time.Duration) *AckTable {
	c := ttlcache.NewCache()
	c.SetTTL(ttl)
	return &AckTable{cache: c}
}

// ensure creates the bitmap for id if it doesn't exist yet, idempotent
// on first-observer-wins: either the first ack or the first sighting of
// the corresponding broadcast record creates the entry.
func (t *AckTable) ensure(id string, size int) *bitmap {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if existing, ok := t.cache.Get(id); ok {
		return existing.(*bitmap)
	}
	bm := newBitmap(size)
	t.cache.Set(id, bm)
	return bm
}

// updateAck marks sender's slot for id, creating the entry lazily, and
// returns the resulting bitmap.
func (t *AckTable) updateAck(id string, sender clock.NodeID, size int) *bitmap {
	bm := t.ensure(id, size)
	bm.set(sender)
	return bm
}

// lookup returns the bitmap for id, or nil if no ack or broadcast has
// been observed for it yet.
func (t *AckTable) lookup(id string) *bitmap {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	v, ok := t.cache.Get(id)
	if !ok {
		return nil
	}
	return v.(*bitmap)
}

// reap drops the entry for id. Safe to call after delivery; correctness
// never depends on an entry surviving past that point.
func (t *AckTable) reap(id string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.cache.Remove(id)
}

func (t *AckTable) close() {
	t.cache.Close()
}
