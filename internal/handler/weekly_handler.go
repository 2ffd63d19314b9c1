package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-hub/scheduling-api/internal/models"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
	"github.com/campus-hub/scheduling-api/pkg/response"
)

// WeeklyResolver is the service surface the handler depends on.
type WeeklyResolver interface {
	Resolve(ctx context.Context, req models.WeeklyScheduleRequest) ([]models.WeeklyRow, error)
}

// WeeklyHandler exposes the effective weekly schedule.
type WeeklyHandler struct {
	service WeeklyResolver
}

// NewWeeklyHandler constructs handler.
func NewWeeklyHandler(svc WeeklyResolver) *WeeklyHandler {
	return &WeeklyHandler{service: svc}
}

// Weekly godoc
// @Summary Resolve the effective schedule for one week
// @Tags Schedule
// @Produce json
// @Param weekStartDate query string true "Any date inside the requested week (YYYY-MM-DD)"
// @Param departmentId query string false "Filter by department"
// @Param classId query string false "Filter by class"
// @Param teacherId query string false "Filter by teacher"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule/weekly [get]
func (h *WeeklyHandler) Weekly(c *gin.Context) {
	raw := c.Query("weekStartDate")
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStartDate is required"))
		return
	}
	weekStart, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStartDate must be formatted YYYY-MM-DD"))
		return
	}

	req := models.WeeklyScheduleRequest{
		WeekStartDate: weekStart,
		DepartmentID:  c.Query("departmentId"),
		ClassID:       c.Query("classId"),
		TeacherID:     c.Query("teacherId"),
		Viewer:        viewerFromContext(c),
	}

	rows, err := h.service.Resolve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
