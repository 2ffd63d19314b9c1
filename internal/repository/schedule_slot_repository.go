package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/scheduling-api/internal/models"
)

// Sentinel errors surfaced by the transactional assignment path.
var (
	ErrSlotAlreadyAssigned = errors.New("slot already has a confirmed room")
	ErrRoomInactive        = errors.New("room is flagged unavailable")
)

const slotColumns = `id, class_id, teacher_id, day_of_week, time_slot_id, week_pattern, start_week, end_week, room_id, status, assigned_by, assigned_at, created_at, updated_at`

const slotDetailSelect = `SELECT s.id, s.class_id, s.teacher_id, s.day_of_week, s.time_slot_id, s.week_pattern, s.start_week, s.end_week, s.room_id, s.status, s.assigned_by, s.assigned_at, s.created_at, s.updated_at,
	c.name AS class_name, c.start_date AS class_start_date, c.end_date AS class_end_date, c.department_id, c.classroom_type_id, c.max_students,
	t.full_name AS teacher_name, r.name AS room_name
FROM class_schedules s
JOIN classes c ON c.id = s.class_id
JOIN teachers t ON t.id = s.teacher_id
LEFT JOIN rooms r ON r.id = s.room_id`

// ScheduleSlotRepository provides persistence for recurring class slots.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository creates a new slot repository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

// FindByID loads a slot by id.
func (r *ScheduleSlotRepository) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_schedules WHERE id = $1`, slotColumns)
	var slot models.ClassSchedule
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindDetailByID loads a slot with its class/teacher/room display fields.
func (r *ScheduleSlotRepository) FindDetailByID(ctx context.Context, id string) (*models.SlotDetail, error) {
	query := slotDetailSelect + ` WHERE s.id = $1`
	var detail models.SlotDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByClass returns all slots of a class ordered by day/time.
func (r *ScheduleSlotRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_schedules WHERE class_id = $1 ORDER BY day_of_week ASC, time_slot_id ASC`, slotColumns)
	var slots []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &slots, query, classID); err != nil {
		return nil, fmt.Errorf("list slots by class: %w", err)
	}
	return slots, nil
}

// FindOccupants returns Assigned/Active slots holding any room at the given
// day and time slot, with display detail for conflict reporting.
func (r *ScheduleSlotRepository) FindOccupants(ctx context.Context, dayOfWeek int, timeSlotID string) ([]models.SlotDetail, error) {
	query := slotDetailSelect + ` WHERE s.day_of_week = $1 AND s.time_slot_id = $2 AND s.status IN ('ASSIGNED', 'ACTIVE') AND s.room_id IS NOT NULL`
	var occupants []models.SlotDetail
	if err := r.db.SelectContext(ctx, &occupants, query, dayOfWeek, timeSlotID); err != nil {
		return nil, fmt.Errorf("find slot occupants: %w", err)
	}
	return occupants, nil
}

// ListForWeek returns candidate slots whose class validity window overlaps
// the requested week. Week-pattern and week-range checks happen in the
// resolver, which owns the calendar arithmetic.
func (r *ScheduleSlotRepository) ListForWeek(ctx context.Context, weekStart, weekEnd time.Time, filter models.WeekSlotFilter) ([]models.SlotDetail, error) {
	query := slotDetailSelect + ` WHERE c.start_date <= $1 AND c.end_date >= $2`
	args := []interface{}{weekEnd, weekStart}

	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		query += fmt.Sprintf(" AND c.department_id = $%d", len(args))
	}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		query += fmt.Sprintf(" AND s.class_id = $%d", len(args))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		query += fmt.Sprintf(" AND s.teacher_id = $%d", len(args))
	}
	query += " ORDER BY s.day_of_week ASC, s.time_slot_id ASC"

	var slots []models.SlotDetail
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list slots for week: %w", err)
	}
	return slots, nil
}

// AssignRoom confirms a room on a slot inside a single transaction. The slot
// row and the room row are locked and the conflict predicate re-validated
// against committed state, so two racing assignments for the same
// room/day/slot serialize on the row locks rather than on an application
// mutex. Without the room lock, two writers targeting a currently free room
// would both see no conflict and both commit.
func (r *ScheduleSlotRepository) AssignRoom(ctx context.Context, scheduleID, roomID, assignedBy string) (*models.ClassSchedule, error) {
	return r.assignTx(ctx, scheduleID, roomID, assignedBy, false)
}

// ReassignRoom swaps the room on an already-confirmed slot in the same single
// transaction as AssignRoom, so a redirect never leaves the slot roomless
// between a release and a fresh assignment. If the swap fails, the previous
// assignment stays committed.
func (r *ScheduleSlotRepository) ReassignRoom(ctx context.Context, scheduleID, roomID, assignedBy string) (*models.ClassSchedule, error) {
	return r.assignTx(ctx, scheduleID, roomID, assignedBy, true)
}

func (r *ScheduleSlotRepository) assignTx(ctx context.Context, scheduleID, roomID, assignedBy string, replace bool) (*models.ClassSchedule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin assign room: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var slot models.ClassSchedule
	lockQuery := fmt.Sprintf(`SELECT %s FROM class_schedules WHERE id = $1 FOR UPDATE`, slotColumns)
	if err = tx.GetContext(ctx, &slot, lockQuery, scheduleID); err != nil {
		return nil, err
	}

	// Re-assignment is allowed while the room is still a suggestion; a
	// confirmed assignment must be unassigned first, unless the caller is
	// explicitly swapping rooms.
	if !replace && slot.RoomID != nil && slot.Status == models.SlotAssigned {
		err = ErrSlotAlreadyAssigned
		return nil, err
	}

	// Locking the room row serializes all assignments for this room; the
	// loser of a race waits here and then sees the winner's committed row
	// in the conflict re-check below.
	var available bool
	if err = tx.GetContext(ctx, &available, `SELECT is_available FROM rooms WHERE id = $1 FOR UPDATE`, roomID); err != nil {
		return nil, err
	}
	if !available {
		err = ErrRoomInactive
		return nil, err
	}

	conflictQuery := `SELECT s.id, s.class_id, c.name AS class_name, s.teacher_id, t.full_name AS teacher_name, s.day_of_week, s.time_slot_id, s.room_id
FROM class_schedules s
JOIN classes c ON c.id = s.class_id
JOIN teachers t ON t.id = s.teacher_id
WHERE s.room_id = $1 AND s.day_of_week = $2 AND s.time_slot_id = $3 AND s.status IN ('ASSIGNED', 'ACTIVE') AND s.id <> $4
FOR UPDATE OF s`
	var holder struct {
		ID          string  `db:"id"`
		ClassID     string  `db:"class_id"`
		ClassName   string  `db:"class_name"`
		TeacherID   string  `db:"teacher_id"`
		TeacherName string  `db:"teacher_name"`
		DayOfWeek   int     `db:"day_of_week"`
		TimeSlotID  string  `db:"time_slot_id"`
		RoomID      *string `db:"room_id"`
	}
	err = tx.GetContext(ctx, &holder, conflictQuery, roomID, slot.DayOfWeek, slot.TimeSlotID, scheduleID)
	if err == nil {
		conflictErr := &models.RoomConflictError{
			Message: fmt.Sprintf("room already booked by %s (%s)", holder.ClassName, holder.TeacherName),
			Conflict: models.RoomConflict{
				ScheduleID:  holder.ID,
				ClassID:     holder.ClassID,
				ClassName:   holder.ClassName,
				TeacherID:   holder.TeacherID,
				TeacherName: holder.TeacherName,
				DayOfWeek:   holder.DayOfWeek,
				TimeSlotID:  holder.TimeSlotID,
				RoomID:      roomID,
			},
		}
		err = conflictErr
		return nil, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("re-validate room conflict: %w", err)
	}
	err = nil

	now := time.Now().UTC()
	slot.RoomID = &roomID
	slot.Status = models.SlotAssigned
	slot.AssignedBy = &assignedBy
	slot.AssignedAt = &now
	slot.UpdatedAt = now

	const update = `UPDATE class_schedules SET room_id = :room_id, status = :status, assigned_by = :assigned_by, assigned_at = :assigned_at, updated_at = :updated_at WHERE id = :id`
	if _, err = sqlx.NamedExecContext(ctx, tx, update, &slot); err != nil {
		return nil, fmt.Errorf("assign room: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assign room: %w", err)
	}
	return &slot, nil
}

// UnassignRoom reverts a slot to pending inside a transaction. Unassigning an
// already-unassigned slot is a no-op returning the current state.
func (r *ScheduleSlotRepository) UnassignRoom(ctx context.Context, scheduleID string) (*models.ClassSchedule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin unassign room: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var slot models.ClassSchedule
	lockQuery := fmt.Sprintf(`SELECT %s FROM class_schedules WHERE id = $1 FOR UPDATE`, slotColumns)
	if err = tx.GetContext(ctx, &slot, lockQuery, scheduleID); err != nil {
		return nil, err
	}

	if slot.RoomID == nil && slot.Status == models.SlotPendingAssignment {
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit unassign room: %w", err)
		}
		return &slot, nil
	}

	slot.RoomID = nil
	slot.Status = models.SlotPendingAssignment
	slot.AssignedBy = nil
	slot.AssignedAt = nil
	slot.UpdatedAt = time.Now().UTC()

	const update = `UPDATE class_schedules SET room_id = NULL, status = :status, assigned_by = NULL, assigned_at = NULL, updated_at = :updated_at WHERE id = :id`
	if _, err = sqlx.NamedExecContext(ctx, tx, update, &slot); err != nil {
		return nil, fmt.Errorf("unassign room: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit unassign room: %w", err)
	}
	return &slot, nil
}

// SlotStatusCounts aggregates slot rows by workflow state.
type SlotStatusCounts struct {
	Total    int `db:"total"`
	Pending  int `db:"pending"`
	Assigned int `db:"assigned"`
}

// CountByStatus returns slot totals for the stats aggregator.
func (r *ScheduleSlotRepository) CountByStatus(ctx context.Context) (*SlotStatusCounts, error) {
	const query = `SELECT COUNT(*) AS total,
	COUNT(*) FILTER (WHERE status = 'PENDING_ASSIGNMENT') AS pending,
	COUNT(*) FILTER (WHERE status = 'ASSIGNED') AS assigned
FROM class_schedules`
	var counts SlotStatusCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count slots by status: %w", err)
	}
	return &counts, nil
}
