package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/response"
)

// Pinger is a dependency whose reachability gates readiness.
type Pinger func(ctx context.Context) error

// QueueDepth reports how many events wait for a worker.
type QueueDepth func(ctx context.Context) (int64, error)

// SystemHandler answers liveness and readiness probes.
type SystemHandler struct {
	deps      map[string]Pinger
	queue     QueueDepth
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(deps map[string]Pinger, queue QueueDepth, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		deps:      deps,
		queue:     queue,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready godoc
// GET /ready
// Pings every dependency and reports the stats queue backlog.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	ready := true
	for name, ping := range h.deps {
		if err := ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Readiness check failed")
			checks[name] = "down"
			ready = false
			continue
		}
		checks[name] = "up"
	}

	body := gin.H{"checks": checks}
	if h.queue != nil {
		if depth, err := h.queue(ctx); err == nil {
			body["stats_queue_depth"] = depth
		}
	}

	if !ready {
		response.FailWithData(c, http.StatusServiceUnavailable, response.ErrUnavailable, body)
		return
	}
	response.Success(c, http.StatusOK, body)
}
