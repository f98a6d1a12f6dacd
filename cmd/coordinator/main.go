// cmd/coordinator accepts client writes and forwards each one to a
// uniformly randomly chosen worker, per spec.md section 6. It holds no
// ordering state of its own.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opmusic/KVStore/internal/config"
	"github.com/opmusic/KVStore/internal/logging"
	"github.com/opmusic/KVStore/internal/transport"
	"github.com/opmusic/KVStore/internal/wire"
)

func main() {
	configPath := flag.String("config", "cluster.json", "path to the cluster configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load cluster config: %v", err)
	}

	logger := logging.New("coordinator")
	logger.ToggleDebug(*debug)

	dispatcher := transport.NewCoordinatorDispatcher(cfg.Workers, logger)

	r := gin.Default()
	r.POST("/write", func(c *gin.Context) {
		var req wire.WriteReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resp, err := dispatcher.Dispatch(req)
		if err != nil {
			logger.Errorf("dispatch failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	logger.Infof("coordinator listening on %s", cfg.Master)
	if err := r.Run(cfg.Master); err != nil {
		logger.Errorf("server exited: %v", err)
	}
}
