package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the liveness body.
type HealthResponse struct {
	Success     bool    `json:"success" example:"true"`
	Status      string  `json:"status" example:"healthy"`
	Timestamp   string  `json:"timestamp" example:"2024-05-01T12:00:00.000Z"`
	Uptime      float64 `json:"uptime" example:"12.5"`
	Environment string  `json:"environment" example:"development"`
}

// Health godoc
// @ID          health
// @Summary     Liveness probe
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	t := now()
	c.JSON(http.StatusOK, HealthResponse{
		Success:     true,
		Status:      "healthy",
		Timestamp:   Timestamp(t),
		Uptime:      t.Sub(h.started).Seconds(),
		Environment: h.environment,
	})
}
