package order

import (
	"sync"

	"github.com/opmusic/KVStore/internal/clock"
	"github.com/opmusic/KVStore/internal/logging"
	"github.com/opmusic/KVStore/internal/store"
)

// LocalIssuer fans a locally-issued write out to every other peer once
// it has been stamped with the local vector. Causal mode never sends
// to itself — the local apply already happened synchronously.
type LocalIssuer interface {
	BroadcastWrite(vec []uint64, key, value string)
}

// CausalScheduler orders writes under the happens-before discipline: a
// remote record from sender s delivers only once the local view has
// seen every earlier write from every sender the record's vector
// depends on.
type CausalScheduler struct {
	self   clock.NodeID
	vector *clock.Vector
	store  *store.Store
	issuer LocalIssuer
	log    logging.Logger
	loop   *deliveryLoop

	mutex   sync.Mutex
	pending []*Record
}

// NewCausalScheduler creates a causal scheduler for node self in a
// cluster of the given size and starts its delivery loop. issuer may be
// nil until wired, in which case locally-issued writes are applied but
// not fanned out (useful in isolation tests).
func NewCausalScheduler(self clock.NodeID, size int, st *store.Store, issuer LocalIssuer, log logging.Logger) *CausalScheduler {
	c := &CausalScheduler{
		self:   self,
		vector: clock.NewVector(self, size),
		store:  st,
		issuer: issuer,
		log:    log,
		loop:   newDeliveryLoopWithLogger(log),
	}
	c.loop.start(pollInterval, c.tick)
	return c
}

// AddTask implements the two cases from spec.md 4.3. A zero-vector
// record whose Origin is this node is a locally-issued write: it is
// stamped, applied immediately, and fanned out. Anything else is a
// remote broadcast-write, enqueued for the predicate to evaluate,
// unless it's stale, a duplicate, or this node's own broadcast echoing
// back to itself.
func (c *CausalScheduler) AddTask(rec *Record) {
	if rec.Origin == c.self && rec.isZeroVector() {
		vec := c.vector.IncrementSelf()
		rec.Vec = vec
		c.store.Set(rec.Key, rec.Value)
		rec.setState(Delivered)
		if c.issuer != nil {
			c.issuer.BroadcastWrite(vec, rec.Key, rec.Value)
		}
		return
	}

	if rec.Origin == c.self {
		// Our own broadcast-write returning to us: already applied
		// synchronously when it was issued.
		if c.log != nil {
			c.log.Debugf("dropping self-originated echo for %s", rec.Key)
		}
		return
	}

	if rec.Vec[rec.Origin] <= c.vector.At(rec.Origin) {
		if c.log != nil {
			c.log.Debugf("dropping stale/duplicate broadcast from node %d", rec.Origin)
		}
		return
	}

	c.mutex.Lock()
	c.pending = append(c.pending, rec)
	c.mutex.Unlock()
	c.loop.signal()
}

// ifAllowDeliver is the pure predicate from spec.md 4.3: a record from
// sender s with vector V delivers only when V[s] == localView[s]+1 and
// V[k] <= localView[k] for every k != s.
func (c *CausalScheduler) ifAllowDeliver(rec *Record) bool {
	return clock.DeliverablePredicate(rec.Origin, rec.Vec, c.vector.Snapshot())
}

// tick scans every pending record each wake-up, because causal
// readiness is partial-ordered: a later arrival from one sender can be
// deliverable while an earlier arrival from another sender isn't. It
// keeps sweeping until a full pass makes no progress, since delivering
// one record can unblock another queued behind it.
func (c *CausalScheduler) tick() {
	for {
		progressed := false

		c.mutex.Lock()
		candidates := make([]*Record, len(c.pending))
		copy(candidates, c.pending)
		c.mutex.Unlock()

		for _, rec := range candidates {
			if !c.ifAllowDeliver(rec) {
				continue
			}
			c.vector.MergeMaxFrom(rec.Vec)
			c.store.Set(rec.Key, rec.Value)
			rec.setState(Delivered)
			c.removePending(rec)
			progressed = true
			if c.log != nil {
				c.log.Debugf("delivered causal write from node %d (%s=%s)", rec.Origin, rec.Key, rec.Value)
			}
		}

		if !progressed {
			return
		}
	}
}

func (c *CausalScheduler) removePending(target *Record) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i, rec := range c.pending {
		if rec == target {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// Len reports how many records are currently pending, for tests.
func (c *CausalScheduler) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.pending)
}

// Stop halts the delivery loop.
func (c *CausalScheduler) Stop() {
	c.loop.stop()
}
