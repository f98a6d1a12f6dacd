package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/google/uuid"

	"github.com/opmusic/KVStore/internal/logging"
	"github.com/opmusic/KVStore/internal/wire"
)

// CoordinatorDispatcher accepts client writes and forwards each one to
// a uniformly randomly chosen worker, per spec.md section 6. It never
// retries and never awaits delivery, only receipt.
type CoordinatorDispatcher struct {
	workers []string
	client  *http.Client
	log     logging.Logger
}

// NewCoordinatorDispatcher creates a dispatcher over the given ordered
// worker addresses.
func NewCoordinatorDispatcher(workers []string, log logging.Logger) *CoordinatorDispatcher {
	return &CoordinatorDispatcher{
		workers: workers,
		client:  &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// Dispatch picks a worker uniformly at random and forwards req to it.
func (d *CoordinatorDispatcher) Dispatch(req wire.WriteReq) (wire.WriteResp, error) {
	if len(d.workers) == 0 {
		return wire.WriteResp{}, fmt.Errorf("no workers configured")
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	worker := d.workers[rand.Intn(len(d.workers))]
	if d.log != nil {
		d.log.Debugf("dispatching request %s to worker %s", req.RequestID, worker)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return wire.WriteResp{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	url := "http://" + worker + "/write"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return wire.WriteResp{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return wire.WriteResp{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wire.WriteResp{}, fmt.Errorf("worker %s returned status %d", worker, resp.StatusCode)
	}

	var out wire.WriteResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return wire.WriteResp{}, err
	}
	return out, nil
}
