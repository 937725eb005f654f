package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BreakerReporter exposes the store circuit breaker state.
type BreakerReporter interface {
	BreakerState() string
}

type HealthHandler struct {
	breaker BreakerReporter
}

// NewHealthHandler accepts a nil reporter for stores without a breaker.
func NewHealthHandler(breaker BreakerReporter) *HealthHandler {
	return &HealthHandler{breaker: breaker}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.breaker != nil && h.breaker.BreakerState() == "open" {
		c.String(http.StatusServiceUnavailable, "store circuit open")
		return
	}
	c.String(http.StatusOK, "ok")
}
