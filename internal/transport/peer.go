// Package transport is the out-of-scope RPC collaborator named in
// spec.md sections 1 and 6: it carries the wire messages over HTTP,
// one JSON endpoint per message pair, and implements order.Fanout so
// the ordering core never touches the network directly.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opmusic/KVStore/internal/logging"
	"github.com/opmusic/KVStore/internal/wire"
)

// defaultTimeout bounds each individual peer RPC so a single
// unreachable peer cannot hang its goroutine forever; the caller still
// treats the failure as fire-and-forget.
const defaultTimeout = 5 * time.Second

// PeerFanout dispatches broadcast-write and broadcast-ack RPCs to the
// worker addresses given at construction, one HTTP POST per call,
// matching the worker's node id to its index in addrs.
type PeerFanout struct {
	addrs  []string
	client *http.Client
	log    logging.Logger
}

// NewPeerFanout creates a fanout over the given ordered worker
// addresses (addrs[i] is the endpoint for node id i).
func NewPeerFanout(addrs []string, log logging.Logger) *PeerFanout {
	return &PeerFanout{
		addrs:  addrs,
		client: &http.Client{Timeout: defaultTimeout},
		log:    log,
	}
}

// SendWrite implements order.Fanout.
func (p *PeerFanout) SendWrite(peer int, msg wire.WriteReqBcast) {
	var resp wire.BcastResp
	if err := p.post(peer, "/bcast-write", msg, &resp); err != nil && p.log != nil {
		p.log.Errorf("broadcast-write to peer %d failed: %v", peer, err)
	}
}

// SendAck implements order.Fanout.
func (p *PeerFanout) SendAck(peer int, msg wire.AckReq) {
	var resp wire.AckResp
	if err := p.post(peer, "/ack", msg, &resp); err != nil && p.log != nil {
		p.log.Errorf("broadcast-ack to peer %d failed: %v", peer, err)
	}
}

func (p *PeerFanout) post(peer int, path string, body interface{}, out interface{}) error {
	if peer < 0 || peer >= len(p.addrs) {
		return fmt.Errorf("unknown peer %d", peer)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	url := "http://" + p.addrs[peer] + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("peer %d returned status %d", peer, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
