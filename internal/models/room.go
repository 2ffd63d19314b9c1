package models

import "time"

// Room is a physical classroom. Read-mostly; owned by facilities CRUD.
type Room struct {
	ID              string  `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	Capacity        int     `db:"capacity" json:"capacity"`
	DepartmentID    *string `db:"department_id" json:"department_id,omitempty"` // null = shared
	ClassRoomTypeID string  `db:"classroom_type_id" json:"classroom_type_id"`
	IsAvailable     bool    `db:"is_available" json:"is_available"`
}

// RoomSearchCriteria narrows the availability search.
type RoomSearchCriteria struct {
	DayOfWeek       int        `json:"day_of_week" validate:"required,min=1,max=7"`
	TimeSlotID      string     `json:"time_slot_id" validate:"required"`
	Date            *time.Time `json:"date,omitempty"`
	Capacity        int        `json:"capacity"`
	ClassRoomTypeID string     `json:"classroom_type_id"`
	DepartmentID    string     `json:"department_id"`
}

// FreedRoom is a room vacated for one date by an approved exception,
// offered separately so operators can knowingly double-book it.
type FreedRoom struct {
	Room
	FreedByType  ExceptionType `json:"freed_by_type"`
	FreedByClass string        `json:"freed_by_class"`
	Reason       string        `json:"reason,omitempty"`
}

// OccupiedRoom pairs a room with the slot currently holding it.
type OccupiedRoom struct {
	Room
	OccupiedBy RoomConflict `json:"occupied_by"`
}

// RoomAvailabilityResult is the classified outcome of a free-room search.
type RoomAvailabilityResult struct {
	NormalRooms    []Room         `json:"normal_rooms"`
	FreedRooms     []FreedRoom    `json:"freed_rooms"`
	OccupiedRooms  []OccupiedRoom `json:"occupied_rooms"`
	TotalAvailable int            `json:"total_available"`
}

// TimeSlot is one fixed daily teaching period.
type TimeSlot struct {
	ID           string `db:"id" json:"id"`
	PeriodNumber int    `db:"period_number" json:"period_number"`
	StartTime    string `db:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" json:"end_time"`
	Label        string `db:"label" json:"label"`
}
