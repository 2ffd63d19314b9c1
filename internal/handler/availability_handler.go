package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-hub/scheduling-api/internal/models"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
	"github.com/campus-hub/scheduling-api/pkg/response"
)

// AvailabilitySearcher is the service surface the handler depends on.
type AvailabilitySearcher interface {
	ListFreeRooms(ctx context.Context, criteria models.RoomSearchCriteria) (*models.RoomAvailabilityResult, error)
}

// AvailabilityHandler exposes the free-room search.
type AvailabilityHandler struct {
	service AvailabilitySearcher
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc AvailabilitySearcher) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// ListAvailable godoc
// @Summary List available rooms for a day and time slot
// @Tags Rooms
// @Produce json
// @Param dayOfWeek query int true "Day of week (1 = Sunday .. 7 = Saturday)"
// @Param timeSlotId query string true "Time slot ID"
// @Param date query string false "Specific date (YYYY-MM-DD); enables freed-room detection"
// @Param capacity query int false "Minimum capacity"
// @Param classRoomTypeId query string false "Filter by room type"
// @Param departmentId query string false "Filter by owning department"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /rooms/available [get]
func (h *AvailabilityHandler) ListAvailable(c *gin.Context) {
	criteria := models.RoomSearchCriteria{
		TimeSlotID:      c.Query("timeSlotId"),
		ClassRoomTypeID: c.Query("classRoomTypeId"),
		DepartmentID:    c.Query("departmentId"),
	}

	if day, err := strconv.Atoi(c.Query("dayOfWeek")); err == nil {
		criteria.DayOfWeek = day
	}
	if capacity, err := strconv.Atoi(c.DefaultQuery("capacity", "0")); err == nil {
		criteria.Capacity = capacity
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
			return
		}
		criteria.Date = &date
	}

	result, err := h.service.ListFreeRooms(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
