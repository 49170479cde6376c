package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	ping func(ctx context.Context) error
	log  logrus.FieldLogger
}

func NewHealthHandler(ping func(ctx context.Context) error, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{ping: ping, log: log}
}

// Check answers 200 while the database is reachable and 503 otherwise.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		h.log.WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
