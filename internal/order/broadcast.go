package order

import "github.com/opmusic/KVStore/internal/wire"

// Fanout is the transport-level collaborator the ordering core sends
// broadcast-write and broadcast-ack RPCs through. It is implemented by
// internal/transport; the core never talks to the network directly.
type Fanout interface {
	SendWrite(peer int, msg wire.WriteReqBcast)
	SendAck(peer int, msg wire.AckReq)
}

// BroadcastWrite fans msg out to every peer in peers, one goroutine
// each, so a single slow peer never serializes the others. Individual
// failures are the Fanout implementation's concern to log; this layer
// never awaits quorum and never retries.
func BroadcastWrite(f Fanout, peers []int, msg wire.WriteReqBcast) {
	for _, peer := range peers {
		go f.SendWrite(peer, msg)
	}
}

// BroadcastAck fans msg out to every peer in peers, fired exactly once
// per record by the scheduler that owns it.
func BroadcastAck(f Fanout, peers []int, msg wire.AckReq) {
	for _, peer := range peers {
		go f.SendAck(peer, msg)
	}
}
