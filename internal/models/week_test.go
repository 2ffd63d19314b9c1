package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStartNormalisesToSunday(t *testing.T) {
	// 2025-09-03 is a Wednesday; its week starts Sunday 2025-08-31.
	assert.Equal(t, date(2025, 8, 31), WeekStart(date(2025, 9, 3)))
	// A Sunday is its own week start.
	assert.Equal(t, date(2025, 8, 31), WeekStart(date(2025, 8, 31)))
	// Time-of-day is dropped.
	assert.Equal(t, date(2025, 8, 31), WeekStart(time.Date(2025, 9, 6, 23, 15, 0, 0, time.UTC)))
}

func TestOccurrenceDate(t *testing.T) {
	week := date(2025, 8, 31)
	assert.Equal(t, date(2025, 8, 31), OccurrenceDate(week, 1)) // Sunday
	assert.Equal(t, date(2025, 9, 1), OccurrenceDate(week, 2))  // Monday
	assert.Equal(t, date(2025, 9, 6), OccurrenceDate(week, 7))  // Saturday
}

func TestWeekIndex(t *testing.T) {
	classStart := date(2025, 9, 1) // Monday, week of Aug 31
	assert.Equal(t, 1, WeekIndex(classStart, date(2025, 9, 3)))
	assert.Equal(t, 2, WeekIndex(classStart, date(2025, 9, 8)))
	assert.Equal(t, 3, WeekIndex(classStart, date(2025, 9, 14)))
	assert.Equal(t, 0, WeekIndex(classStart, date(2025, 8, 20)))
}

func TestWeekPatternMatches(t *testing.T) {
	assert.True(t, WeekPatternAll.Matches(1))
	assert.True(t, WeekPatternAll.Matches(2))
	assert.True(t, WeekPatternOdd.Matches(3))
	assert.False(t, WeekPatternOdd.Matches(4))
	assert.True(t, WeekPatternEven.Matches(4))
	assert.False(t, WeekPatternEven.Matches(5))
}

func TestDayOfWeek(t *testing.T) {
	assert.Equal(t, 1, DayOfWeek(date(2025, 8, 31))) // Sunday
	assert.Equal(t, 4, DayOfWeek(date(2025, 9, 3)))  // Wednesday
}

func TestSlotStatusInvariants(t *testing.T) {
	assert.True(t, SlotAssigned.HoldsRoom())
	assert.True(t, SlotActive.HoldsRoom())
	assert.True(t, SlotExam.HoldsRoom())
	assert.False(t, SlotPendingAssignment.HoldsRoom())

	assert.True(t, SlotAssigned.Occupying())
	assert.True(t, SlotActive.Occupying())
	assert.False(t, SlotExam.Occupying())
	assert.False(t, SlotSuspended.Occupying())

	assert.Equal(t, "Pending Assignment", SlotPendingAssignment.Label())
	assert.Equal(t, "UNKNOWN", SlotStatus("UNKNOWN").Label())
}

func TestDeriveClassStatus(t *testing.T) {
	assert.Equal(t, ClassPending, DeriveClassStatus(nil))

	slots := []ClassSchedule{
		{Status: SlotAssigned},
		{Status: SlotPendingAssignment},
	}
	assert.Equal(t, ClassPending, DeriveClassStatus(slots))

	slots[1].Status = SlotAssigned
	assert.Equal(t, ClassAssigned, DeriveClassStatus(slots))
}

func TestExceptionSemantics(t *testing.T) {
	assert.True(t, ExceptionMoved.Redirects())
	assert.True(t, ExceptionExam.Redirects())
	assert.False(t, ExceptionRoomChange.Redirects())

	assert.True(t, ExceptionCancelled.Vacates())
	assert.True(t, ExceptionMoved.Vacates())
	assert.False(t, ExceptionSubstitute.Vacates())
	assert.False(t, ExceptionRoomChange.Vacates())

	target := date(2025, 9, 3)
	moved := ScheduleException{ExceptionType: ExceptionMoved, ExceptionDate: date(2025, 9, 3), MovedToDate: &target}
	assert.True(t, moved.MovedInPlace())

	other := date(2025, 9, 4)
	moved.MovedToDate = &other
	assert.False(t, moved.MovedInPlace())

	moved.MovedToDate = nil
	assert.True(t, moved.MovedInPlace())

	sub := ScheduleException{ExceptionType: ExceptionSubstitute}
	assert.False(t, sub.MovedInPlace())
}
