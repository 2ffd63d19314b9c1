package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/scheduling-api/internal/models"
)

const roomColumns = `id, name, capacity, department_id, classroom_type_id, is_available`

// RoomRepository provides read access to the rooms table.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// FindByID loads a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE id = $1`, roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Search returns active rooms matching the hard criteria: availability flag,
// room type, and department affinity (shared rooms always qualify). Capacity
// is intentionally left to the caller, which knows about lab-type exemptions.
func (r *RoomRepository) Search(ctx context.Context, classRoomTypeID, departmentID string) ([]models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE is_available = TRUE`, roomColumns)
	var args []interface{}

	if classRoomTypeID != "" {
		args = append(args, classRoomTypeID)
		query += fmt.Sprintf(" AND classroom_type_id = $%d", len(args))
	}
	if departmentID != "" {
		args = append(args, departmentID)
		query += fmt.Sprintf(" AND (department_id IS NULL OR department_id = $%d)", len(args))
	}
	query += " ORDER BY name ASC"

	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("search rooms: %w", err)
	}
	return rooms, nil
}
