// cmd/worker hosts one replica: the ordering core from internal/order,
// the live store, and the HTTP surface other workers and the
// coordinator talk to.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/opmusic/KVStore/internal/clock"
	"github.com/opmusic/KVStore/internal/config"
	"github.com/opmusic/KVStore/internal/logging"
	"github.com/opmusic/KVStore/internal/order"
	"github.com/opmusic/KVStore/internal/store"
	"github.com/opmusic/KVStore/internal/transport"
)

func main() {
	configPath := flag.String("config", "cluster.json", "path to the cluster configuration file")
	id := flag.Int("id", 0, "this worker's node id, its index in the configuration's worker list")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load cluster config: %v", err)
	}
	if *id < 0 || *id >= cfg.Size() {
		log.Fatalf("node id %d out of range for %d configured workers", *id, cfg.Size())
	}

	logger := logging.New(fmt.Sprintf("worker-%d", *id))
	logger.ToggleDebug(*debug)

	st := store.New()
	fanout := transport.NewPeerFanout(cfg.Workers, logger)
	node := order.NewNode(clock.NodeID(*id), cfg.Size(), st, fanout, logger)
	defer node.Stop()

	server := transport.NewWorkerServer(node, logger)

	r := gin.Default()
	server.Routes(r)

	addr := cfg.Workers[*id]
	logger.Infof("worker %d listening on %s", *id, addr)
	if err := r.Run(addr); err != nil {
		logger.Errorf("server exited: %v", err)
	}
}
