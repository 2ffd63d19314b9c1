package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-hub/scheduling-api/internal/models"
	"github.com/campus-hub/scheduling-api/internal/repository"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
)

type slotWriter interface {
	FindByID(ctx context.Context, id string) (*models.ClassSchedule, error)
	ListByClass(ctx context.Context, classID string) ([]models.ClassSchedule, error)
	AssignRoom(ctx context.Context, scheduleID, roomID, assignedBy string) (*models.ClassSchedule, error)
	ReassignRoom(ctx context.Context, scheduleID, roomID, assignedBy string) (*models.ClassSchedule, error)
	UnassignRoom(ctx context.Context, scheduleID string) (*models.ClassSchedule, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// AssignRoomRequest describes payload for confirming a room on a slot.
type AssignRoomRequest struct {
	ScheduleID string `json:"schedule_id" validate:"required"`
	RoomID     string `json:"room_id" validate:"required"`
	AssignedBy string `json:"-"`
}

// UnassignRoomRequest reverts a slot to pending.
type UnassignRoomRequest struct {
	ScheduleID string `json:"schedule_id" validate:"required"`
}

// AssignmentResult summarises a slot mutation including the owning class's
// recomputed aggregate status.
type AssignmentResult struct {
	Slot        models.ClassSchedule `json:"slot"`
	ClassStatus models.ClassStatus   `json:"class_status"`
}

// AssignmentService owns room assignment for recurring slots. It is the only
// mutator of a slot's room/status pair.
type AssignmentService struct {
	slots     slotWriter
	rooms     roomFinder
	cache     *CacheService
	notifier  *NotifierService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService instantiates AssignmentService.
func NewAssignmentService(slots slotWriter, rooms roomFinder, cache *CacheService, notifier *NotifierService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{slots: slots, rooms: rooms, cache: cache, notifier: notifier, metrics: metrics, validator: validate, logger: logger}
}

// AssignRoom confirms a room on a slot. Re-assignment while the slot is
// still pending silently overwrites the earlier room suggestion; a slot
// already in Assigned status must be unassigned first. The conflict
// predicate is re-validated transactionally by the repository, so a lost
// race surfaces as the same Conflict error as a straight collision.
func (s *AssignmentService) AssignRoom(ctx context.Context, req AssignRoomRequest) (*AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	room, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if !room.IsAvailable {
		return nil, appErrors.Clone(appErrors.ErrRoomUnavailable, "room "+room.Name+" is flagged unavailable")
	}

	slot, err := s.slots.AssignRoom(ctx, req.ScheduleID, req.RoomID, req.AssignedBy)
	if err != nil {
		return nil, s.mapAssignError(err)
	}

	result, err := s.buildResult(ctx, slot)
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	s.notifier.Emit(EventRoomAssigned, result, req.AssignedBy, slot.TeacherID)
	s.notifier.Emit(EventStatsUpdated, nil)
	return result, nil
}

// ReassignRoom swaps the room on an already-confirmed slot in one repository
// transaction. The slot keeps its previous room when the swap fails, so an
// approved room change never leaves the slot roomless.
func (s *AssignmentService) ReassignRoom(ctx context.Context, req AssignRoomRequest) (*AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	slot, err := s.slots.ReassignRoom(ctx, req.ScheduleID, req.RoomID, req.AssignedBy)
	if err != nil {
		return nil, s.mapAssignError(err)
	}

	result, err := s.buildResult(ctx, slot)
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	s.notifier.Emit(EventRoomAssigned, result, req.AssignedBy, slot.TeacherID)
	s.notifier.Emit(EventStatsUpdated, nil)
	return result, nil
}

// UnassignRoom reverts a slot to pending. Unassigning an already-unassigned
// slot is a no-op returning the current pending state.
func (s *AssignmentService) UnassignRoom(ctx context.Context, req UnassignRoomRequest) (*AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unassignment payload")
	}

	slot, err := s.slots.UnassignRoom(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign room")
	}

	result, err := s.buildResult(ctx, slot)
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	s.notifier.Emit(EventRoomUnassigned, result, slot.TeacherID)
	s.notifier.Emit(EventStatsUpdated, nil)
	return result, nil
}

func (s *AssignmentService) buildResult(ctx context.Context, slot *models.ClassSchedule) (*AssignmentResult, error) {
	siblings, err := s.slots.ListByClass(ctx, slot.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recompute class status")
	}
	return &AssignmentResult{Slot: *slot, ClassStatus: models.DeriveClassStatus(siblings)}, nil
}

func (s *AssignmentService) mapAssignError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
	case errors.Is(err, repository.ErrSlotAlreadyAssigned):
		return appErrors.Clone(appErrors.ErrAlreadyAssigned, "slot already has a confirmed room; unassign first")
	case errors.Is(err, repository.ErrRoomInactive):
		return appErrors.Clone(appErrors.ErrRoomUnavailable, "room is flagged unavailable")
	}

	var conflict *models.RoomConflictError
	if errors.As(err, &conflict) {
		s.metrics.RecordConflict()
		return appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign room")
}

func (s *AssignmentService) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
