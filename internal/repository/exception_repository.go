package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/scheduling-api/internal/models"
)

const exceptionColumns = `id, class_schedule_id, class_id, exception_date, exception_type, moved_to_date, moved_to_time_slot_id, moved_to_room_id, substitute_teacher_id, reason, status, requested_by, approved_by, approved_at, created_at, updated_at`

const exceptionDetailSelect = `SELECT e.id, e.class_schedule_id, e.class_id, e.exception_date, e.exception_type, e.moved_to_date, e.moved_to_time_slot_id, e.moved_to_room_id, e.substitute_teacher_id, e.reason, e.status, e.requested_by, e.approved_by, e.approved_at, e.created_at, e.updated_at,
	c.name AS class_name, c.teacher_id AS class_teacher_id, ct.full_name AS class_teacher_name, mr.name AS moved_to_room_name, st.full_name AS substitute_teacher_name
FROM schedule_exceptions e
JOIN classes c ON c.id = e.class_id
JOIN teachers ct ON ct.id = c.teacher_id
LEFT JOIN rooms mr ON mr.id = e.moved_to_room_id
LEFT JOIN teachers st ON st.id = e.substitute_teacher_id`

// ExceptionRepository provides persistence for schedule exceptions.
type ExceptionRepository struct {
	db *sqlx.DB
}

// NewExceptionRepository creates a new exception repository.
func NewExceptionRepository(db *sqlx.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// FindByID loads an exception by id.
func (r *ExceptionRepository) FindByID(ctx context.Context, id string) (*models.ScheduleException, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_exceptions WHERE id = $1`, exceptionColumns)
	var exc models.ScheduleException
	if err := r.db.GetContext(ctx, &exc, query, id); err != nil {
		return nil, err
	}
	return &exc, nil
}

// FindDuplicate returns the existing exception with the same slot, date and
// type, or nil when none exists. Standalone exam records (nil slot) dedupe
// on class id instead.
func (r *ExceptionRepository) FindDuplicate(ctx context.Context, scheduleID *string, classID string, date time.Time, excType models.ExceptionType) (*models.ScheduleException, error) {
	var (
		query string
		args  []interface{}
	)
	if scheduleID != nil {
		query = fmt.Sprintf(`SELECT %s FROM schedule_exceptions WHERE class_schedule_id = $1 AND exception_date = $2 AND exception_type = $3 AND status <> 'REJECTED'`, exceptionColumns)
		args = []interface{}{*scheduleID, date, excType}
	} else {
		query = fmt.Sprintf(`SELECT %s FROM schedule_exceptions WHERE class_schedule_id IS NULL AND class_id = $1 AND exception_date = $2 AND exception_type = $3 AND status <> 'REJECTED'`, exceptionColumns)
		args = []interface{}{classID, date, excType}
	}

	var exc models.ScheduleException
	err := r.db.GetContext(ctx, &exc, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate exception: %w", err)
	}
	return &exc, nil
}

// ListApprovedForDate returns approved exceptions effective on the given
// date, either because it is the exception date or the redirect target.
func (r *ExceptionRepository) ListApprovedForDate(ctx context.Context, date time.Time) ([]models.ExceptionDetail, error) {
	query := exceptionDetailSelect + ` WHERE e.status = 'APPROVED' AND (e.exception_date = $1 OR e.moved_to_date = $1)`
	var items []models.ExceptionDetail
	if err := r.db.SelectContext(ctx, &items, query, date); err != nil {
		return nil, fmt.Errorf("list approved exceptions for date: %w", err)
	}
	return items, nil
}

// ListApprovedForRange returns approved exceptions whose exception date or
// redirect date falls inside [from, to].
func (r *ExceptionRepository) ListApprovedForRange(ctx context.Context, from, to time.Time) ([]models.ExceptionDetail, error) {
	query := exceptionDetailSelect + ` WHERE e.status = 'APPROVED' AND ((e.exception_date BETWEEN $1 AND $2) OR (e.moved_to_date BETWEEN $1 AND $2)) ORDER BY e.exception_date ASC`
	var items []models.ExceptionDetail
	if err := r.db.SelectContext(ctx, &items, query, from, to); err != nil {
		return nil, fmt.Errorf("list approved exceptions for range: %w", err)
	}
	return items, nil
}

// Create stores a new exception record.
func (r *ExceptionRepository) Create(ctx context.Context, exc *models.ScheduleException) error {
	if exc.ID == "" {
		exc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exc.CreatedAt.IsZero() {
		exc.CreatedAt = now
	}
	exc.UpdatedAt = now

	const query = `INSERT INTO schedule_exceptions (id, class_schedule_id, class_id, exception_date, exception_type, moved_to_date, moved_to_time_slot_id, moved_to_room_id, substitute_teacher_id, reason, status, requested_by, approved_by, approved_at, created_at, updated_at)
VALUES (:id, :class_schedule_id, :class_id, :exception_date, :exception_type, :moved_to_date, :moved_to_time_slot_id, :moved_to_room_id, :substitute_teacher_id, :reason, :status, :requested_by, :approved_by, :approved_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exc); err != nil {
		return fmt.Errorf("create exception: %w", err)
	}
	return nil
}

// Update modifies an exception record.
func (r *ExceptionRepository) Update(ctx context.Context, exc *models.ScheduleException) error {
	exc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_exceptions SET exception_date = :exception_date, exception_type = :exception_type, moved_to_date = :moved_to_date, moved_to_time_slot_id = :moved_to_time_slot_id, moved_to_room_id = :moved_to_room_id, substitute_teacher_id = :substitute_teacher_id, reason = :reason, status = :status, approved_by = :approved_by, approved_at = :approved_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exc); err != nil {
		return fmt.Errorf("update exception: %w", err)
	}
	return nil
}

// Approve stamps the approver exactly once; re-approving an already-approved
// record leaves the original stamp intact.
func (r *ExceptionRepository) Approve(ctx context.Context, id, approvedBy string, approvedAt time.Time) error {
	const query = `UPDATE schedule_exceptions SET status = 'APPROVED', approved_by = $2, approved_at = $3, updated_at = $3 WHERE id = $1 AND status = 'PENDING'`
	if _, err := r.db.ExecContext(ctx, query, id, approvedBy, approvedAt); err != nil {
		return fmt.Errorf("approve exception: %w", err)
	}
	return nil
}

// Delete removes an exception by id.
func (r *ExceptionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_exceptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete exception: %w", err)
	}
	return nil
}
