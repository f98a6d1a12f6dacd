package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opmusic/KVStore/internal/logging"
	"github.com/opmusic/KVStore/internal/order"
	"github.com/opmusic/KVStore/internal/wire"
)

// WorkerServer exposes the three RPC handlers a worker implements for
// its peers and for the coordinator, as plain JSON endpoints.
type WorkerServer struct {
	node *order.Node
	log  logging.Logger
}

// NewWorkerServer wraps node for HTTP exposure.
func NewWorkerServer(node *order.Node, log logging.Logger) *WorkerServer {
	return &WorkerServer{node: node, log: log}
}

// Routes registers the worker's endpoints on r.
func (s *WorkerServer) Routes(r *gin.Engine) {
	r.POST("/write", s.handleWrite)
	r.POST("/bcast-write", s.handleBcastWrite)
	r.POST("/ack", s.handleAck)
	r.GET("/get/:key", s.handleGet)
}

func (s *WorkerServer) handleWrite(c *gin.Context) {
	var req wire.WriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.log != nil {
		s.log.Debugf("request %s: client write mode=%s key=%s", req.RequestID, req.Mode, req.Key)
	}
	c.JSON(http.StatusOK, s.node.OnClientWrite(req.Mode, req.Key, req.Value))
}

func (s *WorkerServer) handleBcastWrite(c *gin.Context) {
	var req wire.WriteReqBcast
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.node.OnBroadcastWrite(req))
}

func (s *WorkerServer) handleAck(c *gin.Context) {
	var req wire.AckReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.node.OnAck(req))
}

func (s *WorkerServer) handleGet(c *gin.Context) {
	key := c.Param("key")
	value, found := s.node.Get(key)
	c.JSON(http.StatusOK, gin.H{"value": value, "found": found})
}
