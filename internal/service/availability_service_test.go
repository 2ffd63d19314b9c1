package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-hub/scheduling-api/internal/models"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
)

type fakeRoomRepo struct {
	rooms       []models.Room
	searchCalls int
	searchErr   error
}

func (f *fakeRoomRepo) FindByID(_ context.Context, id string) (*models.Room, error) {
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			return &f.rooms[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRoomRepo) Search(_ context.Context, _, _ string) ([]models.Room, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.rooms, nil
}

type fakeOccupancyRepo struct {
	occupants []models.SlotDetail
	err       error
}

func (f *fakeOccupancyRepo) FindOccupants(_ context.Context, _ int, _ string) ([]models.SlotDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.occupants, nil
}

type fakeExceptionDates struct {
	excs []models.ExceptionDetail
	err  error
}

func (f *fakeExceptionDates) ListApprovedForDate(_ context.Context, _ time.Time) ([]models.ExceptionDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.excs, nil
}

func occupyingSlot(scheduleID, roomID string) models.SlotDetail {
	return models.SlotDetail{
		ClassSchedule: models.ClassSchedule{
			ID:         scheduleID,
			ClassID:    "class-1",
			TeacherID:  "teacher-1",
			DayOfWeek:  2,
			TimeSlotID: "slot-3",
			RoomID:     &roomID,
			Status:     models.SlotAssigned,
		},
		ClassName:   "Algebra X-A",
		TeacherName: "B. Santoso",
	}
}

func TestListFreeRoomsClassifiesOccupancy(t *testing.T) {
	rooms := &fakeRoomRepo{rooms: []models.Room{
		{ID: "room-1", Name: "R-101", Capacity: 36, ClassRoomTypeID: "type-theory", IsAvailable: true},
		{ID: "room-2", Name: "R-102", Capacity: 36, ClassRoomTypeID: "type-theory", IsAvailable: true},
	}}
	slots := &fakeOccupancyRepo{occupants: []models.SlotDetail{occupyingSlot("sched-1", "room-2")}}

	svc := NewAvailabilityService(rooms, slots, &fakeExceptionDates{}, nil, nil, zap.NewNop())

	result, err := svc.ListFreeRooms(context.Background(), models.RoomSearchCriteria{DayOfWeek: 2, TimeSlotID: "slot-3"})
	require.NoError(t, err)

	require.Len(t, result.NormalRooms, 1)
	assert.Equal(t, "room-1", result.NormalRooms[0].ID)
	assert.Empty(t, result.FreedRooms)
	require.Len(t, result.OccupiedRooms, 1)
	assert.Equal(t, "room-2", result.OccupiedRooms[0].ID)
	assert.Equal(t, "Algebra X-A", result.OccupiedRooms[0].OccupiedBy.ClassName)
	assert.Equal(t, "B. Santoso", result.OccupiedRooms[0].OccupiedBy.TeacherName)
	assert.Equal(t, 1, result.TotalAvailable)
}

func TestListFreeRoomsFreedByCancellation(t *testing.T) {
	date := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	scheduleID := "sched-1"

	rooms := &fakeRoomRepo{rooms: []models.Room{
		{ID: "room-1", Name: "R-101", Capacity: 36, ClassRoomTypeID: "type-theory", IsAvailable: true},
		{ID: "room-2", Name: "R-102", Capacity: 36, ClassRoomTypeID: "type-theory", IsAvailable: true},
	}}
	slots := &fakeOccupancyRepo{occupants: []models.SlotDetail{occupyingSlot(scheduleID, "room-2")}}
	exceptions := &fakeExceptionDates{excs: []models.ExceptionDetail{{
		ScheduleException: models.ScheduleException{
			ID:              "exc-1",
			ClassScheduleID: &scheduleID,
			ClassID:         "class-1",
			ExceptionDate:   date,
			ExceptionType:   models.ExceptionCancelled,
			Reason:          "teacher workshop",
			Status:          models.ApprovalApproved,
		},
		ClassName: "Algebra X-A",
	}}}

	svc := NewAvailabilityService(rooms, slots, exceptions, nil, nil, zap.NewNop())

	result, err := svc.ListFreeRooms(context.Background(), models.RoomSearchCriteria{
		DayOfWeek:  2,
		TimeSlotID: "slot-3",
		Date:       &date,
	})
	require.NoError(t, err)

	require.Len(t, result.FreedRooms, 1)
	assert.Equal(t, "room-2", result.FreedRooms[0].ID)
	assert.Equal(t, models.ExceptionCancelled, result.FreedRooms[0].FreedByType)
	assert.Equal(t, "Algebra X-A", result.FreedRooms[0].FreedByClass)
	assert.Empty(t, result.OccupiedRooms)
	assert.Equal(t, 2, result.TotalAvailable)
}

func TestListFreeRoomsRedirectClaimsTarget(t *testing.T) {
	date := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	scheduleID := "sched-9"
	targetRoom := "room-1"
	targetSlot := "slot-3"

	rooms := &fakeRoomRepo{rooms: []models.Room{
		{ID: "room-1", Name: "R-101", Capacity: 36, ClassRoomTypeID: "type-theory", IsAvailable: true},
	}}
	exceptions := &fakeExceptionDates{excs: []models.ExceptionDetail{{
		ScheduleException: models.ScheduleException{
			ID:                "exc-2",
			ClassScheduleID:   &scheduleID,
			ClassID:           "class-2",
			ExceptionDate:     date.AddDate(0, 0, -2),
			ExceptionType:     models.ExceptionMoved,
			MovedToDate:       &date,
			MovedToTimeSlotID: &targetSlot,
			MovedToRoomID:     &targetRoom,
			Status:            models.ApprovalApproved,
		},
		ClassName: "Physics XI-B",
	}}}

	svc := NewAvailabilityService(rooms, &fakeOccupancyRepo{}, exceptions, nil, nil, zap.NewNop())

	free, err := svc.IsRoomFree(context.Background(), targetRoom, 4, targetSlot, &date)
	require.NoError(t, err)
	assert.False(t, free)

	result, err := svc.ListFreeRooms(context.Background(), models.RoomSearchCriteria{
		DayOfWeek:  4,
		TimeSlotID: targetSlot,
		Date:       &date,
	})
	require.NoError(t, err)
	assert.Empty(t, result.NormalRooms)
	require.Len(t, result.OccupiedRooms, 1)
	assert.Equal(t, "Physics XI-B", result.OccupiedRooms[0].OccupiedBy.ClassName)
}

func TestListFreeRoomsLabCapacityExempt(t *testing.T) {
	rooms := &fakeRoomRepo{rooms: []models.Room{
		{ID: "room-small", Name: "R-201", Capacity: 20, ClassRoomTypeID: "type-theory", IsAvailable: true},
		{ID: "lab-small", Name: "Lab Kimia", Capacity: 20, ClassRoomTypeID: "type-lab", IsAvailable: true},
	}}

	svc := NewAvailabilityService(rooms, &fakeOccupancyRepo{}, &fakeExceptionDates{}, []string{"type-lab"}, nil, zap.NewNop())

	result, err := svc.ListFreeRooms(context.Background(), models.RoomSearchCriteria{
		DayOfWeek:  2,
		TimeSlotID: "slot-1",
		Capacity:   32,
	})
	require.NoError(t, err)

	require.Len(t, result.NormalRooms, 1)
	assert.Equal(t, "lab-small", result.NormalRooms[0].ID)
}

func TestListFreeRoomsRejectsInvalidCriteria(t *testing.T) {
	svc := NewAvailabilityService(&fakeRoomRepo{}, &fakeOccupancyRepo{}, &fakeExceptionDates{}, nil, nil, zap.NewNop())

	_, err := svc.ListFreeRooms(context.Background(), models.RoomSearchCriteria{DayOfWeek: 0, TimeSlotID: "slot-1"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestIsRoomFreeVacatedByMove(t *testing.T) {
	date := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	scheduleID := "sched-1"
	newDate := date.AddDate(0, 0, 2)

	slots := &fakeOccupancyRepo{occupants: []models.SlotDetail{occupyingSlot(scheduleID, "room-2")}}
	exceptions := &fakeExceptionDates{excs: []models.ExceptionDetail{{
		ScheduleException: models.ScheduleException{
			ID:              "exc-3",
			ClassScheduleID: &scheduleID,
			ClassID:         "class-1",
			ExceptionDate:   date,
			ExceptionType:   models.ExceptionMoved,
			MovedToDate:     &newDate,
			Status:          models.ApprovalApproved,
		},
	}}}

	svc := NewAvailabilityService(&fakeRoomRepo{}, slots, exceptions, nil, nil, zap.NewNop())

	// Without a date the recurring hold wins.
	free, err := svc.IsRoomFree(context.Background(), "room-2", 2, "slot-3", nil)
	require.NoError(t, err)
	assert.False(t, free)

	// On the moved date the original room is vacated.
	free, err = svc.IsRoomFree(context.Background(), "room-2", 2, "slot-3", &date)
	require.NoError(t, err)
	assert.True(t, free)
}
