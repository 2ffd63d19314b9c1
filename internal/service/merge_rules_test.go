package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/scheduling-api/internal/models"
)

func detailOf(excType models.ExceptionType) models.ExceptionDetail {
	scheduleID := "sched-1"
	return models.ExceptionDetail{
		ScheduleException: models.ScheduleException{
			ID:              "exc-" + string(excType),
			ClassScheduleID: &scheduleID,
			ClassID:         "class-1",
			ExceptionDate:   time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC),
			ExceptionType:   excType,
			Status:          models.ApprovalApproved,
		},
	}
}

func TestMergeExceptionsEmptySet(t *testing.T) {
	eff := mergeExceptions(nil)
	assert.Equal(t, "none", eff.rule)
	assert.Nil(t, eff.status)
	assert.Nil(t, eff.moved)
}

func TestMergeExceptionsCancelledWinsOverRoomChange(t *testing.T) {
	cancelled := detailOf(models.ExceptionCancelled)
	roomChange := detailOf(models.ExceptionRoomChange)
	roomChange.MovedToRoomID = strPtr("room-2")

	// Input order must not matter.
	for _, excs := range [][]models.ExceptionDetail{
		{cancelled, roomChange},
		{roomChange, cancelled},
	} {
		eff := mergeExceptions(excs)
		assert.Equal(t, "cancelled", eff.rule)
		require.NotNil(t, eff.status)
		assert.Equal(t, models.SlotSuspended, *eff.status)
		assert.Nil(t, eff.roomID)
	}
}

func TestMergeExceptionsRoomChangeWinsOverSubstitute(t *testing.T) {
	roomChange := detailOf(models.ExceptionRoomChange)
	roomChange.MovedToRoomID = strPtr("room-2")
	substitute := detailOf(models.ExceptionSubstitute)
	substitute.SubstituteTeacherID = strPtr("teacher-2")

	eff := mergeExceptions([]models.ExceptionDetail{substitute, roomChange})
	assert.Equal(t, "room-change", eff.rule)
	require.NotNil(t, eff.roomID)
	assert.Equal(t, "room-2", *eff.roomID)

	// The substitute still rides along even though room-change won.
	require.NotNil(t, eff.substituteID)
	assert.Equal(t, "teacher-2", *eff.substituteID)
}

func TestMergeExceptionsMoveCarriesSubstitute(t *testing.T) {
	moved := detailOf(models.ExceptionMoved)
	moved.MovedToDate = timePtr(time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC))
	substitute := detailOf(models.ExceptionSubstitute)
	substitute.SubstituteTeacherID = strPtr("teacher-2")

	eff := mergeExceptions([]models.ExceptionDetail{moved, substitute})
	assert.Equal(t, "substitute", eff.rule)
	assert.Equal(t, "teacher-2", *eff.substituteID)
	require.NotNil(t, eff.moved)
	assert.Equal(t, models.ExceptionMoved, eff.moved.ExceptionType)
}

func TestMergeExceptionsExamInPlace(t *testing.T) {
	exam := detailOf(models.ExceptionExam)
	exam.MovedToRoomID = strPtr("room-2")

	eff := mergeExceptions([]models.ExceptionDetail{exam})
	assert.Equal(t, "moved", eff.rule)
	require.NotNil(t, eff.status)
	assert.Equal(t, models.SlotExam, *eff.status)
	require.NotNil(t, eff.roomID)
	assert.Equal(t, "room-2", *eff.roomID)
}

func TestMergeExceptionsMoveAcrossDaysSuspendsOriginal(t *testing.T) {
	moved := detailOf(models.ExceptionMoved)
	moved.MovedToDate = timePtr(time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC))
	moved.MovedToRoomID = strPtr("room-2")

	eff := mergeExceptions([]models.ExceptionDetail{moved})
	assert.Equal(t, "moved", eff.rule)
	require.NotNil(t, eff.status)
	assert.Equal(t, models.SlotSuspended, *eff.status)
	// The original day keeps its own booked room; the target room belongs
	// to the relocated occurrence only.
	assert.Nil(t, eff.roomID)
	require.NotNil(t, eff.moved)
}
