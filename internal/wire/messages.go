// Package wire holds the request/response shapes carried over the
// transport between the coordinator, the workers and their peers.
// Field ordering is not meaningful, only field semantics are.
package wire

// Mode selects the consistency discipline a write is ordered under.
type Mode string

const (
	Sequential Mode = "Sequential"
	Causal     Mode = "Causal"
)

// WriteReq is issued by a client against either the coordinator or,
// once forwarded, directly against the chosen worker.
type WriteReq struct {
	RequestID string `json:"requestId"`
	Mode      Mode   `json:"mode"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// WriteResp acknowledges receipt of a WriteReq. Status is always 0 on
// receipt today; it does not await delivery.
type WriteResp struct {
	Receiver int `json:"receiver"`
	Status   int `json:"status"`
}

// WriteReqBcast is the broadcast-write fan-out payload. SenderClock is
// populated for Sequential mode, Vts for Causal mode.
type WriteReqBcast struct {
	Mode        Mode   `json:"mode"`
	Sender      int    `json:"sender"`
	SenderClock uint64 `json:"senderClock"`
	Vts         []uint64 `json:"vts"`
	Key         string `json:"key"`
	Value       string `json:"value"`
}

// BcastResp acknowledges receipt of a WriteReqBcast.
type BcastResp struct {
	Receiver int `json:"receiver"`
	Status   int `json:"status"`
}

// AckReq carries a Sequential-mode acknowledgement of the message
// identified by (Clock, ID).
type AckReq struct {
	Mode        Mode   `json:"mode"`
	Sender      int    `json:"sender"`
	SenderClock uint64 `json:"senderClock"`
	Clock       uint64 `json:"clock"`
	ID          int    `json:"id"`
}

// AckResp acknowledges receipt of an AckReq.
type AckResp struct {
	Receiver int `json:"receiver"`
	Status   int `json:"status"`
}
