package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-hub/scheduling-api/internal/models"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
)

type weekSlotReader interface {
	ListForWeek(ctx context.Context, weekStart, weekEnd time.Time, filter models.WeekSlotFilter) ([]models.SlotDetail, error)
	FindDetailByID(ctx context.Context, id string) (*models.SlotDetail, error)
}

type exceptionRangeReader interface {
	ListApprovedForRange(ctx context.Context, from, to time.Time) ([]models.ExceptionDetail, error)
}

type timeSlotLister interface {
	ListAll(ctx context.Context) ([]models.TimeSlot, error)
}

var dayNames = [...]string{"", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeeklyScheduleService resolves the effective schedule for one calendar
// week by overlaying approved exceptions onto the recurring base. Nothing is
// persisted; every request recomputes the overlay.
type WeeklyScheduleService struct {
	slots      weekSlotReader
	exceptions exceptionRangeReader
	timeSlots  timeSlotLister
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewWeeklyScheduleService instantiates WeeklyScheduleService.
func NewWeeklyScheduleService(slots weekSlotReader, exceptions exceptionRangeReader, timeSlots timeSlotLister, validate *validator.Validate, logger *zap.Logger) *WeeklyScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyScheduleService{slots: slots, exceptions: exceptions, timeSlots: timeSlots, validator: validate, logger: logger}
}

// Resolve computes the effective schedule rows for the week containing
// req.WeekStartDate, filtered for the viewer's role.
func (s *WeeklyScheduleService) Resolve(ctx context.Context, req models.WeeklyScheduleRequest) ([]models.WeeklyRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly schedule request")
	}

	weekStart := models.WeekStart(req.WeekStartDate)
	weekEnd := weekStart.AddDate(0, 0, 6)

	slots, err := s.slots.ListForWeek(ctx, weekStart, weekEnd, models.WeekSlotFilter{
		DepartmentID: req.DepartmentID,
		ClassID:      req.ClassID,
		TeacherID:    req.TeacherID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load base slots")
	}

	excs, err := s.exceptions.ListApprovedForRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exceptions")
	}

	periods, err := s.loadPeriods(ctx)
	if err != nil {
		return nil, err
	}

	// Index slot-bound exceptions by (slot, occurrence date); keep the
	// standalone exams and the moves redirecting into this week aside.
	bySlotDate := make(map[string][]models.ExceptionDetail)
	var standalone []models.ExceptionDetail
	var inbound []models.ExceptionDetail
	for _, exc := range excs {
		if exc.ClassScheduleID == nil {
			standalone = append(standalone, exc)
			continue
		}
		if !exc.ExceptionDate.Before(weekStart) && !exc.ExceptionDate.After(weekEnd) {
			key := *exc.ClassScheduleID + "|" + exc.ExceptionDate.Format("2006-01-02")
			bySlotDate[key] = append(bySlotDate[key], exc)
		} else if exc.ExceptionType.Redirects() && exc.MovedToDate != nil {
			// The base occurrence lies outside this week; only the
			// redirected half lands here.
			inbound = append(inbound, exc)
		}
	}

	var rows []models.WeeklyRow
	seen := make(map[string]struct{}, len(slots))

	for _, slot := range slots {
		if _, dup := seen[slot.ID]; dup {
			continue
		}
		seen[slot.ID] = struct{}{}

		date := models.OccurrenceDate(weekStart, slot.DayOfWeek)
		if !s.occursOn(slot, date) {
			continue
		}

		key := slot.ID + "|" + date.Format("2006-01-02")
		slotExcs := bySlotDate[key]

		if !s.visibleTo(req.Viewer, slot, slotExcs) {
			continue
		}

		eff := mergeExceptions(slotExcs)

		if row, ok := s.buildRow(slot, date, eff, periods); ok {
			rows = append(rows, row)
		}

		// A cross-day redirect renders both halves: the suspended original
		// day above and the relocated occurrence when its target falls
		// inside this week.
		if eff.moved != nil {
			if synthetic, ok := s.buildMovedRow(slot, eff.moved, weekStart, weekEnd, periods); ok {
				rows = append(rows, synthetic)
			}
		}
	}

	for _, exc := range inbound {
		slot, err := s.slots.FindDetailByID(ctx, *exc.ClassScheduleID)
		if err != nil {
			s.logger.Warn("skipping redirected occurrence with missing base slot",
				zap.String("exception_id", exc.ID), zap.Error(err))
			continue
		}
		if !s.visibleTo(req.Viewer, *slot, []models.ExceptionDetail{exc}) {
			continue
		}
		e := exc
		if synthetic, ok := s.buildMovedRow(*slot, &e, weekStart, weekEnd, periods); ok {
			rows = append(rows, synthetic)
		}
	}

	for _, exc := range standalone {
		if row, ok := s.buildStandaloneExamRow(req.Viewer, exc, weekStart, weekEnd, periods); ok {
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		pi, pj := periods[rows[i].TimeSlotID].PeriodNumber, periods[rows[j].TimeSlotID].PeriodNumber
		if pi != pj {
			return pi < pj
		}
		return rows[i].ClassName < rows[j].ClassName
	})

	return rows, nil
}

// occursOn checks the slot's validity window, week range and week pattern
// against one occurrence date.
func (s *WeeklyScheduleService) occursOn(slot models.SlotDetail, date time.Time) bool {
	if date.Before(models.Midnight(slot.ClassStartDate)) || date.After(models.Midnight(slot.ClassEndDate)) {
		return false
	}
	weekIndex := models.WeekIndex(slot.ClassStartDate, date)
	if slot.StartWeek > 0 && weekIndex < slot.StartWeek {
		return false
	}
	if slot.EndWeek > 0 && weekIndex > slot.EndWeek {
		return false
	}
	return slot.WeekPattern.Matches(weekIndex)
}

// visibleTo applies role-based visibility before any merging: teachers see
// their own slots plus dates they substitute on; students see slots with a
// room; admins see rooms plus explicitly pending slots.
func (s *WeeklyScheduleService) visibleTo(viewer models.Viewer, slot models.SlotDetail, excs []models.ExceptionDetail) bool {
	switch viewer.Role {
	case models.RoleTeacher:
		if slot.TeacherID == viewer.UserID {
			return true
		}
		for _, exc := range excs {
			if exc.SubstituteTeacherID != nil && *exc.SubstituteTeacherID == viewer.UserID {
				return true
			}
		}
		return false
	case models.RoleStudent:
		return slot.RoomID != nil
	default:
		return slot.RoomID != nil || slot.Status == models.SlotPendingAssignment
	}
}

func (s *WeeklyScheduleService) buildRow(slot models.SlotDetail, date time.Time, eff mergedEffect, periods map[string]models.TimeSlot) (models.WeeklyRow, bool) {
	period, ok := periods[slot.TimeSlotID]
	if !ok {
		s.logger.Warn("skipping slot with unknown time slot",
			zap.String("schedule_id", slot.ID), zap.String("time_slot_id", slot.TimeSlotID))
		return models.WeeklyRow{}, false
	}

	row := models.WeeklyRow{
		ScheduleID:  slot.ID,
		ClassID:     slot.ClassID,
		ClassName:   slot.ClassName,
		TeacherID:   slot.TeacherID,
		TeacherName: slot.TeacherName,
		DayOfWeek:   slot.DayOfWeek,
		Date:        date,
		TimeSlotID:  slot.TimeSlotID,
		TimeLabel:   period.Label,
		RoomID:      slot.RoomID,
		RoomName:    slot.RoomName,
		Status:      slot.Status,
		Note:        eff.note,
	}

	if eff.status != nil {
		row.Status = *eff.status
	}
	if eff.roomID != nil {
		row.RoomID = eff.roomID
		row.RoomName = eff.roomName
	}
	if eff.substituteID != nil {
		row.SubstituteTeacherID = eff.substituteID
		if eff.substituteName != nil {
			row.TeacherName = *eff.substituteName
		}
	}
	if eff.exceptionType != nil {
		label := eff.exceptionType.Label()
		excType := string(*eff.exceptionType)
		row.ExceptionType = &excType
		if row.Note == "" {
			row.Note = label
		}
	}
	row.StatusLabel = row.Status.Label()

	if row.RoomID != nil && row.RoomName == nil {
		s.logger.Warn("skipping slot with dangling room reference",
			zap.String("schedule_id", slot.ID), zap.String("room_id", *row.RoomID))
		return models.WeeklyRow{}, false
	}

	return row, true
}

// buildMovedRow emits the synthetic occupied-new-slot row for a redirect
// landing on a different day inside the requested week. Same-day redirects
// never duplicate: the updated original row already covers them.
func (s *WeeklyScheduleService) buildMovedRow(slot models.SlotDetail, exc *models.ExceptionDetail, weekStart, weekEnd time.Time, periods map[string]models.TimeSlot) (models.WeeklyRow, bool) {
	if exc == nil || exc.MovedToDate == nil || exc.MovedInPlace() {
		return models.WeeklyRow{}, false
	}
	target := models.Midnight(*exc.MovedToDate)
	if target.Before(weekStart) || target.After(weekEnd) {
		return models.WeeklyRow{}, false
	}

	timeSlotID := slot.TimeSlotID
	if exc.MovedToTimeSlotID != nil {
		timeSlotID = *exc.MovedToTimeSlotID
	}
	period, ok := periods[timeSlotID]
	if !ok {
		s.logger.Warn("skipping redirected occurrence with unknown time slot",
			zap.String("exception_id", exc.ID), zap.String("time_slot_id", timeSlotID))
		return models.WeeklyRow{}, false
	}

	roomID := slot.RoomID
	roomName := slot.RoomName
	if exc.MovedToRoomID != nil {
		roomID = exc.MovedToRoomID
		roomName = exc.MovedToRoomName
	}

	status := slot.Status
	if exc.ExceptionType == models.ExceptionExam {
		status = models.SlotExam
	}

	excType := string(exc.ExceptionType)
	row := models.WeeklyRow{
		ScheduleID:    slot.ID,
		ClassID:       slot.ClassID,
		ClassName:     slot.ClassName,
		TeacherID:     slot.TeacherID,
		TeacherName:   slot.TeacherName,
		DayOfWeek:     models.DayOfWeek(target),
		Date:          target,
		TimeSlotID:    timeSlotID,
		TimeLabel:     period.Label,
		RoomID:        roomID,
		RoomName:      roomName,
		Status:        status,
		StatusLabel:   status.Label(),
		ExceptionType: &excType,
		Note:          exc.Reason,
		MovedFrom:     fmt.Sprintf("moved from %s, %s", dayNames[slot.DayOfWeek], periods[slot.TimeSlotID].Label),
	}

	if exc.SubstituteTeacherID != nil {
		row.SubstituteTeacherID = exc.SubstituteTeacherID
		if exc.SubstituteTeacherName != nil {
			row.TeacherName = *exc.SubstituteTeacherName
		}
	}

	return row, true
}

// buildStandaloneExamRow resolves a final-exam exception that has no base
// slot directly from the class and exception record.
func (s *WeeklyScheduleService) buildStandaloneExamRow(viewer models.Viewer, exc models.ExceptionDetail, weekStart, weekEnd time.Time, periods map[string]models.TimeSlot) (models.WeeklyRow, bool) {
	date := models.Midnight(exc.ExceptionDate)
	if exc.MovedToDate != nil {
		date = models.Midnight(*exc.MovedToDate)
	}
	if date.Before(weekStart) || date.After(weekEnd) {
		return models.WeeklyRow{}, false
	}

	switch viewer.Role {
	case models.RoleTeacher:
		if exc.ClassTeacherID != viewer.UserID &&
			(exc.SubstituteTeacherID == nil || *exc.SubstituteTeacherID != viewer.UserID) {
			return models.WeeklyRow{}, false
		}
	case models.RoleStudent:
		if exc.MovedToRoomID == nil {
			return models.WeeklyRow{}, false
		}
	}

	if exc.MovedToTimeSlotID == nil {
		s.logger.Warn("skipping standalone exam without a time slot", zap.String("exception_id", exc.ID))
		return models.WeeklyRow{}, false
	}
	period, ok := periods[*exc.MovedToTimeSlotID]
	if !ok {
		s.logger.Warn("skipping standalone exam with unknown time slot",
			zap.String("exception_id", exc.ID), zap.String("time_slot_id", *exc.MovedToTimeSlotID))
		return models.WeeklyRow{}, false
	}

	excType := string(models.ExceptionExam)
	row := models.WeeklyRow{
		ClassID:       exc.ClassID,
		ClassName:     exc.ClassName,
		TeacherID:     exc.ClassTeacherID,
		TeacherName:   exc.ClassTeacherName,
		DayOfWeek:     models.DayOfWeek(date),
		Date:          date,
		TimeSlotID:    *exc.MovedToTimeSlotID,
		TimeLabel:     period.Label,
		RoomID:        exc.MovedToRoomID,
		RoomName:      exc.MovedToRoomName,
		Status:        models.SlotExam,
		StatusLabel:   models.SlotExam.Label(),
		ExceptionType: &excType,
		Note:          exc.Reason,
	}
	return row, true
}

func (s *WeeklyScheduleService) loadPeriods(ctx context.Context) (map[string]models.TimeSlot, error) {
	timeSlots, err := s.timeSlots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	periods := make(map[string]models.TimeSlot, len(timeSlots))
	for _, ts := range timeSlots {
		periods[ts.ID] = ts
	}
	return periods, nil
}
