// Package clock implements the two logical-timestamp disciplines the
// ordering core is parameterised over: a scalar Lamport clock for
// Sequential mode and a vector clock for Causal mode. Both share the
// same small capability set (zero, increment-self, merge-max, compare)
// so the schedulers built on top of them stay symmetric.
package clock

import "sync"

// NodeID identifies a replica by its index in the cluster configuration.
type NodeID int

// Scalar is a Lamport timestamp: (counter, nodeId), totally ordered by
// counter with ties broken by nodeId. It never decreases.
type Scalar struct {
	mutex   sync.Mutex
	counter uint64
	node    NodeID
}

// NewScalar creates a zeroed scalar clock for the given node.
func NewScalar(node NodeID) *Scalar {
	return &Scalar{node: node}
}

// Stamp is an immutable snapshot of a Scalar clock at some instant.
type Stamp struct {
	Counter uint64
	Node    NodeID
}

// Less orders two stamps by counter, ties broken by node id, as
// required by the Sequential priority queue comparator.
func (s Stamp) Less(other Stamp) bool {
	if s.Counter != other.Counter {
		return s.Counter < other.Counter
	}
	return s.Node < other.Node
}

// IncrementAndGet advances the local counter by one and returns the new
// stamp. Used when a client write is issued locally.
func (c *Scalar) IncrementAndGet() Stamp {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.counter++
	return Stamp{Counter: c.counter, Node: c.node}
}

// UpdateAndIncrement sets the local counter to max(local, sender)+1.
// Used whenever a broadcast-write or ack is received.
func (c *Scalar) UpdateAndIncrement(sender uint64) Stamp {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if sender > c.counter {
		c.counter = sender
	}
	c.counter++
	return Stamp{Counter: c.counter, Node: c.node}
}

// Tock reads the current counter without mutating it.
func (c *Scalar) Tock() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.counter
}

// Vector is a length-N vector clock, indexed by node id, plus the
// owning node's own id.
type Vector struct {
	mutex sync.Mutex
	self  NodeID
	vec   []uint64
}

// NewVector creates a zeroed vector clock of the given cluster size.
func NewVector(self NodeID, size int) *Vector {
	return &Vector{self: self, vec: make([]uint64, size)}
}

// IncrementSelf bumps this node's own component and returns a copy of
// the resulting vector.
func (v *Vector) IncrementSelf() []uint64 {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.vec[v.self]++
	return v.copyLocked()
}

// Snapshot returns a copy of the current vector.
func (v *Vector) Snapshot() []uint64 {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.copyLocked()
}

// At reads a single component.
func (v *Vector) At(node NodeID) uint64 {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.vec[node]
}

// MergeMaxFrom raises every component of the local vector to the max of
// itself and the given vector, used once a record has been delivered.
func (v *Vector) MergeMaxFrom(other []uint64) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	for i, c := range other {
		if c > v.vec[i] {
			v.vec[i] = c
		}
	}
}

func (v *Vector) copyLocked() []uint64 {
	out := make([]uint64, len(v.vec))
	copy(out, v.vec)
	return out
}

// VectorLE reports whether v is causally before-or-equal to w:
// every component of v is <= the corresponding component of w.
func VectorLE(v, w []uint64) bool {
	for i := range v {
		if v[i] > w[i] {
			return false
		}
	}
	return true
}

// DeliverablePredicate implements the causal delivery rule: a record
// from sender s with vector V is deliverable against localView iff
// V[s] == localView[s]+1 and V[k] <= localView[k] for every k != s.
func DeliverablePredicate(sender NodeID, v []uint64, localView []uint64) bool {
	if v[sender] != localView[sender]+1 {
		return false
	}
	for k := range v {
		if NodeID(k) == sender {
			continue
		}
		if v[k] > localView[k] {
			return false
		}
	}
	return true
}
