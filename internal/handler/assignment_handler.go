package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-hub/scheduling-api/internal/service"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
	"github.com/campus-hub/scheduling-api/pkg/response"
)

// RoomAssigner is the service surface the handler depends on.
type RoomAssigner interface {
	AssignRoom(ctx context.Context, req service.AssignRoomRequest) (*service.AssignmentResult, error)
	UnassignRoom(ctx context.Context, req service.UnassignRoomRequest) (*service.AssignmentResult, error)
}

// AssignmentHandler exposes room assignment operations.
type AssignmentHandler struct {
	service RoomAssigner
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(svc RoomAssigner) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Assign godoc
// @Summary Assign a room to a recurring schedule slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body service.AssignRoomRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule/assign [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.AssignedBy = claims.UserID
	}

	result, err := h.service.AssignRoom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Unassign godoc
// @Summary Revert a schedule slot to pending
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body service.UnassignRoomRequest true "Unassignment payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule/unassign [post]
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	var req service.UnassignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.UnassignRoom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
