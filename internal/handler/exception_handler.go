package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-hub/scheduling-api/internal/models"
	"github.com/campus-hub/scheduling-api/internal/service"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
	"github.com/campus-hub/scheduling-api/pkg/response"
)

// ExceptionWorkflow is the service surface the handler depends on.
type ExceptionWorkflow interface {
	Create(ctx context.Context, req service.CreateExceptionRequest) (*models.ScheduleException, error)
	Update(ctx context.Context, id string, req service.UpdateExceptionRequest) (*models.ScheduleException, error)
	Approve(ctx context.Context, id, approverID string) (*models.ScheduleException, error)
	Delete(ctx context.Context, id string) error
}

// ExceptionHandler exposes the schedule exception workflow.
type ExceptionHandler struct {
	service ExceptionWorkflow
}

// NewExceptionHandler constructs handler.
func NewExceptionHandler(svc ExceptionWorkflow) *ExceptionHandler {
	return &ExceptionHandler{service: svc}
}

// Create godoc
// @Summary Report a schedule exception
// @Tags Exceptions
// @Accept json
// @Produce json
// @Param payload body service.CreateExceptionRequest true "Exception payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule-exceptions [post]
func (h *ExceptionHandler) Create(c *gin.Context) {
	var req service.CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.RequestedBy = claims.UserID
		req.RequesterRole = claims.Role
	}

	exc, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exc)
}

// Update godoc
// @Summary Correct an exception record
// @Tags Exceptions
// @Accept json
// @Produce json
// @Param id path string true "Exception ID"
// @Param payload body service.UpdateExceptionRequest true "Exception payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule-exceptions/{id} [put]
func (h *ExceptionHandler) Update(c *gin.Context) {
	var req service.UpdateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	exc, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exc, nil)
}

// Approve godoc
// @Summary Approve a pending exception
// @Tags Exceptions
// @Produce json
// @Param id path string true "Exception ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule-exceptions/{id}/approve [post]
func (h *ExceptionHandler) Approve(c *gin.Context) {
	approverID := ""
	if claims := claimsFromContext(c); claims != nil {
		approverID = claims.UserID
	}

	exc, err := h.service.Approve(c.Request.Context(), c.Param("id"), approverID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exc, nil)
}

// Delete godoc
// @Summary Delete an exception record
// @Tags Exceptions
// @Param id path string true "Exception ID"
// @Success 204
// @Security BearerAuth
// @Router /schedule-exceptions/{id} [delete]
func (h *ExceptionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
