package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// Pinger is satisfied by the Postgres service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	log        *logger.Logger
	db         Pinger
	started    time.Time
	production bool
	now        func() time.Time
}

func NewHealthHandler(log *logger.Logger, db Pinger, production bool) *HealthHandler {
	return &HealthHandler{
		log:        log.With("handler", "HealthHandler"),
		db:         db,
		started:    time.Now(),
		production: production,
		now:        time.Now,
	}
}

type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp,omitempty"`
	Uptime    float64 `json:"uptime,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	var err error
	if h.db != nil {
		err = h.db.Ping(ctx)
	}
	if err != nil {
		h.log.Warn("Health check failed", "error", err)
		msg := "Service unavailable"
		if !h.production {
			msg = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Error: msg})
		return
	}
	now := h.now()
	c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Uptime:    now.Sub(h.started).Seconds(),
	})
}
