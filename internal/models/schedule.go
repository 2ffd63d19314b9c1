package models

import "time"

// Class represents a course offering. Owned by the admin CRUD surface,
// read-only to the scheduling core.
type Class struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	DepartmentID    string    `db:"department_id" json:"department_id"`
	ClassRoomTypeID string    `db:"classroom_type_id" json:"classroom_type_id"`
	MaxStudents     int       `db:"max_students" json:"max_students"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	EndDate         time.Time `db:"end_date" json:"end_date"`
}

// ContainsDate reports whether the date falls inside the class validity window.
func (c Class) ContainsDate(date time.Time) bool {
	d := Midnight(date)
	return !d.Before(Midnight(c.StartDate)) && !d.After(Midnight(c.EndDate))
}

// ClassSchedule is one recurring weekly slot of a class.
type ClassSchedule struct {
	ID          string      `db:"id" json:"id"`
	ClassID     string      `db:"class_id" json:"class_id"`
	TeacherID   string      `db:"teacher_id" json:"teacher_id"`
	DayOfWeek   int         `db:"day_of_week" json:"day_of_week"` // 1..7, 1 = Sunday
	TimeSlotID  string      `db:"time_slot_id" json:"time_slot_id"`
	WeekPattern WeekPattern `db:"week_pattern" json:"week_pattern"`
	StartWeek   int         `db:"start_week" json:"start_week"`
	EndWeek     int         `db:"end_week" json:"end_week"`
	RoomID      *string     `db:"room_id" json:"room_id,omitempty"`
	Status      SlotStatus  `db:"status" json:"status"`
	AssignedBy  *string     `db:"assigned_by" json:"assigned_by,omitempty"`
	AssignedAt  *time.Time  `db:"assigned_at" json:"assigned_at,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// SlotDetail joins a slot with its class, teacher and room display fields.
type SlotDetail struct {
	ClassSchedule
	ClassName       string    `db:"class_name" json:"class_name"`
	ClassStartDate  time.Time `db:"class_start_date" json:"class_start_date"`
	ClassEndDate    time.Time `db:"class_end_date" json:"class_end_date"`
	DepartmentID    string    `db:"department_id" json:"department_id"`
	ClassRoomTypeID string    `db:"classroom_type_id" json:"classroom_type_id"`
	MaxStudents     int       `db:"max_students" json:"max_students"`
	TeacherName     string    `db:"teacher_name" json:"teacher_name"`
	RoomName        *string   `db:"room_name" json:"room_name,omitempty"`
}

// RoomConflict describes the slot that already holds a contested room.
type RoomConflict struct {
	ScheduleID  string `json:"schedule_id"`
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	DayOfWeek   int    `json:"day_of_week"`
	TimeSlotID  string `json:"time_slot_id"`
	TimeLabel   string `json:"time_label,omitempty"`
	RoomID      string `json:"room_id"`
}

// RoomConflictError is returned when a room assignment collides with an
// existing occupancy. It carries enough detail for the UI to explain why.
type RoomConflictError struct {
	Message  string       `json:"message"`
	Conflict RoomConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *RoomConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
