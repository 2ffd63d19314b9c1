package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/scheduling-api/internal/models"
)

// ClassRepository provides read access to course offerings.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, teacher_id, department_id, classroom_type_id, max_students, start_date, end_date FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ClassStatusCounts aggregates classes by derived assignment state.
type ClassStatusCounts struct {
	Total    int `db:"total"`
	Assigned int `db:"assigned"`
}

// CountByAssignment counts classes whose every slot is Assigned. Classes with
// no slots yet count as pending.
func (r *ClassRepository) CountByAssignment(ctx context.Context) (*ClassStatusCounts, error) {
	const query = `SELECT COUNT(*) AS total,
	COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM class_schedules s WHERE s.class_id = c.id)
		AND NOT EXISTS (SELECT 1 FROM class_schedules s WHERE s.class_id = c.id AND s.status <> 'ASSIGNED')) AS assigned
FROM classes c`
	var counts ClassStatusCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count classes by assignment: %w", err)
	}
	return &counts, nil
}
