package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/scheduling-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

var slotRowColumns = []string{"id", "class_id", "teacher_id", "day_of_week", "time_slot_id", "week_pattern", "start_week", "end_week", "room_id", "status", "assigned_by", "assigned_at", "created_at", "updated_at"}

func pendingSlotRow(id string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(slotRowColumns).
		AddRow(id, "class-1", "teacher-1", 3, "ts-2", "ALL", 1, 16, nil, "PENDING_ASSIGNMENT", nil, nil, now, now)
}

func TestScheduleSlotRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, teacher_id")).
		WithArgs("slot-1").
		WillReturnRows(pendingSlotRow("slot-1"))

	slot, err := repo.FindByID(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.Equal(t, "slot-1", slot.ID)
	assert.Equal(t, models.SlotPendingAssignment, slot.Status)
	assert.Nil(t, slot.RoomID)
}

func TestScheduleSlotRepositoryAssignRoomSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-1").
		WillReturnRows(pendingSlotRow("slot-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_available FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-9").
		WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF s")).
		WithArgs("room-9", 3, "ts-2", "slot-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_schedules SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	slot, err := repo.AssignRoom(context.Background(), "slot-1", "room-9", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, slot.RoomID)
	assert.Equal(t, "room-9", *slot.RoomID)
	assert.Equal(t, models.SlotAssigned, slot.Status)
	require.NotNil(t, slot.AssignedBy)
	assert.Equal(t, "admin-1", *slot.AssignedBy)
	assert.NotNil(t, slot.AssignedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryAssignRoomConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-2").
		WillReturnRows(pendingSlotRow("slot-2"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_available FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-9").
		WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF s")).
		WithArgs("room-9", 3, "ts-2", "slot-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "class_name", "teacher_id", "teacher_name", "day_of_week", "time_slot_id", "room_id"}).
			AddRow("slot-x", "class-x", "Algebra II", "teacher-x", "Dr. Chen", 3, "ts-2", "room-9"))
	mock.ExpectRollback()

	_, err := repo.AssignRoom(context.Background(), "slot-2", "room-9", "admin-1")
	var conflict *models.RoomConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "slot-x", conflict.Conflict.ScheduleID)
	assert.Equal(t, "Algebra II", conflict.Conflict.ClassName)
	assert.Equal(t, "Dr. Chen", conflict.Conflict.TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two writers racing for a currently free room serialize on the room row
// lock: the second transaction only reaches the conflict re-check after the
// first commits, and then sees the winner's row.
func TestScheduleSlotRepositoryAssignRoomRaceLoserSeesWinner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-1").
		WillReturnRows(pendingSlotRow("slot-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_available FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-9").
		WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF s")).
		WithArgs("room-9", 3, "ts-2", "slot-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_schedules SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-2").
		WillReturnRows(pendingSlotRow("slot-2"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_available FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-9").
		WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF s")).
		WithArgs("room-9", 3, "ts-2", "slot-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "class_name", "teacher_id", "teacher_name", "day_of_week", "time_slot_id", "room_id"}).
			AddRow("slot-1", "class-1", "Algebra X-A", "teacher-1", "B. Santoso", 3, "ts-2", "room-9"))
	mock.ExpectRollback()

	winner, err := repo.AssignRoom(context.Background(), "slot-1", "room-9", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, winner.RoomID)
	assert.Equal(t, "room-9", *winner.RoomID)

	_, err = repo.AssignRoom(context.Background(), "slot-2", "room-9", "admin-2")
	var conflict *models.RoomConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "slot-1", conflict.Conflict.ScheduleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryReassignRoomSwapsInOneTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	now := time.Now().UTC()
	assigned := sqlmock.NewRows(slotRowColumns).
		AddRow("slot-3", "class-1", "teacher-1", 3, "ts-2", "ALL", 1, 16, "room-1", "ASSIGNED", "admin-1", now, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-3").
		WillReturnRows(assigned)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_available FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-9").
		WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF s")).
		WithArgs("room-9", 3, "ts-2", "slot-3").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_schedules SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	slot, err := repo.ReassignRoom(context.Background(), "slot-3", "room-9", "admin-1")
	require.NoError(t, err)
	require.NotNil(t, slot.RoomID)
	assert.Equal(t, "room-9", *slot.RoomID)
	assert.Equal(t, models.SlotAssigned, slot.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryReassignRoomKeepsSlotOnConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	now := time.Now().UTC()
	assigned := sqlmock.NewRows(slotRowColumns).
		AddRow("slot-3", "class-1", "teacher-1", 3, "ts-2", "ALL", 1, 16, "room-1", "ASSIGNED", "admin-1", now, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-3").
		WillReturnRows(assigned)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_available FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-9").
		WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF s")).
		WithArgs("room-9", 3, "ts-2", "slot-3").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "class_name", "teacher_id", "teacher_name", "day_of_week", "time_slot_id", "room_id"}).
			AddRow("slot-x", "class-x", "Algebra II", "teacher-x", "Dr. Chen", 3, "ts-2", "room-9"))
	mock.ExpectRollback()

	// No UPDATE ran, so the previous assignment stays committed.
	_, err := repo.ReassignRoom(context.Background(), "slot-3", "room-9", "admin-1")
	var conflict *models.RoomConflictError
	require.ErrorAs(t, err, &conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryAssignRoomAlreadyAssigned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	now := time.Now().UTC()
	assigned := sqlmock.NewRows(slotRowColumns).
		AddRow("slot-3", "class-1", "teacher-1", 3, "ts-2", "ALL", 1, 16, "room-1", "ASSIGNED", "admin-1", now, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-3").
		WillReturnRows(assigned)
	mock.ExpectRollback()

	_, err := repo.AssignRoom(context.Background(), "slot-3", "room-9", "admin-1")
	assert.True(t, errors.Is(err, ErrSlotAlreadyAssigned))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryAssignRoomInactiveRoom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-1").
		WillReturnRows(pendingSlotRow("slot-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_available FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-closed").
		WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(false))
	mock.ExpectRollback()

	_, err := repo.AssignRoom(context.Background(), "slot-1", "room-closed", "admin-1")
	assert.True(t, errors.Is(err, ErrRoomInactive))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryUnassignRoomIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	// Already pending with no room: commit without an UPDATE.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-1").
		WillReturnRows(pendingSlotRow("slot-1"))
	mock.ExpectCommit()

	slot, err := repo.UnassignRoom(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotPendingAssignment, slot.Status)
	assert.Nil(t, slot.RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryUnassignRoomClearsAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	now := time.Now().UTC()
	assigned := sqlmock.NewRows(slotRowColumns).
		AddRow("slot-3", "class-1", "teacher-1", 3, "ts-2", "ALL", 1, 16, "room-1", "ASSIGNED", "admin-1", now, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("slot-3").
		WillReturnRows(assigned)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_schedules SET room_id = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	slot, err := repo.UnassignRoom(context.Background(), "slot-3")
	require.NoError(t, err)
	assert.Equal(t, models.SlotPendingAssignment, slot.Status)
	assert.Nil(t, slot.RoomID)
	assert.Nil(t, slot.AssignedBy)
	assert.Nil(t, slot.AssignedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSlotRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "assigned"}).AddRow(10, 4, 6))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, counts.Total)
	assert.Equal(t, 4, counts.Pending)
	assert.Equal(t, 6, counts.Assigned)
}
