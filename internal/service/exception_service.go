package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-hub/scheduling-api/internal/models"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
)

type exceptionStore interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleException, error)
	FindDuplicate(ctx context.Context, scheduleID *string, classID string, date time.Time, excType models.ExceptionType) (*models.ScheduleException, error)
	Create(ctx context.Context, exc *models.ScheduleException) error
	Update(ctx context.Context, exc *models.ScheduleException) error
	Approve(ctx context.Context, id, approvedBy string, approvedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type slotDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.SlotDetail, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type availabilityChecker interface {
	IsRoomFree(ctx context.Context, roomID string, dayOfWeek int, timeSlotID string, onDate *time.Time) (bool, error)
}

type assignmentEngine interface {
	ReassignRoom(ctx context.Context, req AssignRoomRequest) (*AssignmentResult, error)
}

// CreateExceptionRequest describes payload for reporting a schedule
// deviation. ClassScheduleID is omitted only for standalone final exams,
// which reference the class directly.
type CreateExceptionRequest struct {
	ClassScheduleID     *string              `json:"class_schedule_id,omitempty"`
	ClassID             string               `json:"class_id,omitempty"`
	ExceptionDate       time.Time            `json:"exception_date" validate:"required"`
	ExceptionType       models.ExceptionType `json:"exception_type" validate:"required"`
	MovedToDate         *time.Time           `json:"moved_to_date,omitempty"`
	MovedToTimeSlotID   *string              `json:"moved_to_time_slot_id,omitempty"`
	MovedToRoomID       *string              `json:"moved_to_room_id,omitempty"`
	SubstituteTeacherID *string              `json:"substitute_teacher_id,omitempty"`
	Reason              string               `json:"reason" validate:"required"`
	RequestedBy         string               `json:"-"`
	RequesterRole       models.UserRole      `json:"-"`
}

// UpdateExceptionRequest corrects an existing exception record.
type UpdateExceptionRequest struct {
	ExceptionDate       time.Time  `json:"exception_date" validate:"required"`
	MovedToDate         *time.Time `json:"moved_to_date,omitempty"`
	MovedToTimeSlotID   *string    `json:"moved_to_time_slot_id,omitempty"`
	MovedToRoomID       *string    `json:"moved_to_room_id,omitempty"`
	SubstituteTeacherID *string    `json:"substitute_teacher_id,omitempty"`
	Reason              string     `json:"reason" validate:"required"`
}

// ExceptionService validates and records schedule exceptions and drives the
// approval workflow, including redirect propagation onto base slots.
type ExceptionService struct {
	store        exceptionStore
	slots        slotDetailReader
	classes      classReader
	availability availabilityChecker
	assignments  assignmentEngine
	notifier     *NotifierService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewExceptionService instantiates ExceptionService.
func NewExceptionService(store exceptionStore, slots slotDetailReader, classes classReader, availability availabilityChecker, assignments assignmentEngine, notifier *NotifierService, validate *validator.Validate, logger *zap.Logger) *ExceptionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExceptionService{store: store, slots: slots, classes: classes, availability: availability, assignments: assignments, notifier: notifier, validator: validate, logger: logger}
}

// Create records a new exception. Administrator creations are auto-approved;
// teacher self-service requests start pending.
func (s *ExceptionService) Create(ctx context.Context, req CreateExceptionRequest) (*models.ScheduleException, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exception payload")
	}
	if !req.ExceptionType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown exception type")
	}

	classID := req.ClassID
	var baseTimeSlotID string

	if req.ClassScheduleID != nil {
		slot, err := s.slots.FindDetailByID(ctx, *req.ClassScheduleID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slot")
		}
		if !slot.Status.Occupying() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "exceptions require an assigned or active slot")
		}
		classID = slot.ClassID
		baseTimeSlotID = slot.TimeSlotID
	} else {
		// Standalone records exist only for final exams.
		if req.ExceptionType != models.ExceptionExam {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class_schedule_id is required for this exception type")
		}
		if classID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required for standalone exam exceptions")
		}
		if req.MovedToTimeSlotID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "moved_to_time_slot_id is required for standalone exam exceptions")
		}
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	exceptionDate := models.Midnight(req.ExceptionDate)
	if !class.ContainsDate(exceptionDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exception date is outside the class validity window")
	}
	if req.MovedToDate != nil && !class.ContainsDate(*req.MovedToDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "redirect date is outside the class validity window")
	}

	dup, err := s.store.FindDuplicate(ctx, req.ClassScheduleID, classID, exceptionDate, req.ExceptionType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicates")
	}
	if dup != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "an exception of this type already exists for that slot and date")
	}

	if err := s.checkRedirectTarget(ctx, req.ExceptionType, exceptionDate, baseTimeSlotID, req.MovedToDate, req.MovedToTimeSlotID, req.MovedToRoomID); err != nil {
		return nil, err
	}

	exc := &models.ScheduleException{
		ClassScheduleID:     req.ClassScheduleID,
		ClassID:             classID,
		ExceptionDate:       exceptionDate,
		ExceptionType:       req.ExceptionType,
		MovedToDate:         normalizeDate(req.MovedToDate),
		MovedToTimeSlotID:   req.MovedToTimeSlotID,
		MovedToRoomID:       req.MovedToRoomID,
		SubstituteTeacherID: req.SubstituteTeacherID,
		Reason:              req.Reason,
		Status:              models.ApprovalPending,
		RequestedBy:         req.RequestedBy,
	}

	if req.RequesterRole == models.RoleAdmin {
		now := time.Now().UTC()
		exc.Status = models.ApprovalApproved
		exc.ApprovedBy = &req.RequestedBy
		exc.ApprovedAt = &now
	}

	if err := s.store.Create(ctx, exc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exception")
	}

	if exc.Status == models.ApprovalApproved {
		s.propagateRedirect(ctx, exc, req.RequestedBy)
	}

	s.notifier.Emit(EventScheduleRequestCreated, exc, req.RequestedBy)
	return exc, nil
}

// Approve transitions a pending exception to approved, stamping the approver
// exactly once. Re-approving an approved record is a no-op on those fields.
func (s *ExceptionService) Approve(ctx context.Context, id, approverID string) (*models.ScheduleException, error) {
	exc, err := s.loadException(ctx, id)
	if err != nil {
		return nil, err
	}
	if exc.Status == models.ApprovalApproved {
		return exc, nil
	}

	if err := s.store.Approve(ctx, id, approverID, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve exception")
	}

	exc, err = s.loadException(ctx, id)
	if err != nil {
		return nil, err
	}

	s.propagateRedirect(ctx, exc, approverID)
	s.notifier.Emit(EventScheduleExceptionUpdated, exc, exc.RequestedBy)
	return exc, nil
}

// Update administratively corrects an exception record, re-running the
// creation validations against the new field values.
func (s *ExceptionService) Update(ctx context.Context, id string, req UpdateExceptionRequest) (*models.ScheduleException, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exception payload")
	}

	exc, err := s.loadException(ctx, id)
	if err != nil {
		return nil, err
	}

	class, err := s.classes.FindByID(ctx, exc.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	exceptionDate := models.Midnight(req.ExceptionDate)
	if !class.ContainsDate(exceptionDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exception date is outside the class validity window")
	}
	if req.MovedToDate != nil && !class.ContainsDate(*req.MovedToDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "redirect date is outside the class validity window")
	}

	if !models.SameDate(exceptionDate, exc.ExceptionDate) {
		dup, err := s.store.FindDuplicate(ctx, exc.ClassScheduleID, exc.ClassID, exceptionDate, exc.ExceptionType)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicates")
		}
		if dup != nil && dup.ID != exc.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "an exception of this type already exists for that slot and date")
		}
	}

	baseTimeSlotID := ""
	if exc.ClassScheduleID != nil {
		if slot, slotErr := s.slots.FindDetailByID(ctx, *exc.ClassScheduleID); slotErr == nil {
			baseTimeSlotID = slot.TimeSlotID
		}
	}
	if err := s.checkRedirectTarget(ctx, exc.ExceptionType, exceptionDate, baseTimeSlotID, req.MovedToDate, req.MovedToTimeSlotID, req.MovedToRoomID); err != nil {
		return nil, err
	}

	exc.ExceptionDate = exceptionDate
	exc.MovedToDate = normalizeDate(req.MovedToDate)
	exc.MovedToTimeSlotID = req.MovedToTimeSlotID
	exc.MovedToRoomID = req.MovedToRoomID
	exc.SubstituteTeacherID = req.SubstituteTeacherID
	exc.Reason = req.Reason

	if err := s.store.Update(ctx, exc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exception")
	}

	s.notifier.Emit(EventScheduleExceptionUpdated, exc, exc.RequestedBy)
	return exc, nil
}

// Delete removes an exception record.
func (s *ExceptionService) Delete(ctx context.Context, id string) error {
	exc, err := s.loadException(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exception")
	}

	s.notifier.Emit(EventScheduleUpdated, exc, exc.RequestedBy)
	return nil
}

func (s *ExceptionService) loadException(ctx context.Context, id string) (*models.ScheduleException, error) {
	exc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exception not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exception")
	}
	return exc, nil
}

// checkRedirectTarget verifies a redirect room is free at the target
// date/slot, counting both recurring assignments and approved exceptions.
func (s *ExceptionService) checkRedirectTarget(ctx context.Context, excType models.ExceptionType, exceptionDate time.Time, baseTimeSlotID string, movedToDate *time.Time, movedToTimeSlotID, movedToRoomID *string) error {
	if !excType.Redirects() || movedToRoomID == nil {
		return nil
	}

	targetDate := exceptionDate
	if movedToDate != nil {
		targetDate = models.Midnight(*movedToDate)
	}
	targetSlotID := baseTimeSlotID
	if movedToTimeSlotID != nil {
		targetSlotID = *movedToTimeSlotID
	}
	if targetSlotID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "redirect target needs a time slot")
	}

	free, err := s.availability.IsRoomFree(ctx, *movedToRoomID, models.DayOfWeek(targetDate), targetSlotID, &targetDate)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check redirect target")
	}
	if !free {
		return appErrors.Clone(appErrors.ErrTargetConflict, "redirect target room is not free at the requested date and time")
	}
	return nil
}

// propagateRedirect pushes an approved move/room-change's target room onto
// the base slot through the assignment engine. The swap happens in one
// repository transaction, so a failed propagation leaves the previous room
// in place rather than a half-released slot. Failures are logged: the
// exception stays approved and the weekly overlay still renders it.
func (s *ExceptionService) propagateRedirect(ctx context.Context, exc *models.ScheduleException, actorID string) {
	if exc.ClassScheduleID == nil || exc.MovedToRoomID == nil {
		return
	}
	if exc.ExceptionType != models.ExceptionMoved && exc.ExceptionType != models.ExceptionRoomChange {
		return
	}

	if _, err := s.assignments.ReassignRoom(ctx, AssignRoomRequest{ScheduleID: *exc.ClassScheduleID, RoomID: *exc.MovedToRoomID, AssignedBy: actorID}); err != nil {
		s.logger.Warn("redirect propagation failed, keeping previous room", zap.String("exception_id", exc.ID), zap.Error(err))
	}
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := models.Midnight(*t)
	return &d
}
