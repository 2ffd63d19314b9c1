package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-hub/scheduling-api/internal/models"
	"github.com/campus-hub/scheduling-api/pkg/response"
)

// StatsProvider is the service surface the handler depends on.
type StatsProvider interface {
	Stats(ctx context.Context) (*models.ScheduleStats, error)
}

// StatsHandler exposes assignment progress counters.
type StatsHandler struct {
	service StatsProvider
}

// NewStatsHandler constructs handler.
func NewStatsHandler(svc StatsProvider) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Stats godoc
// @Summary Aggregate room assignment statistics
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule/stats [get]
func (h *StatsHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
