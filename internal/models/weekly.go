package models

import "time"

// WeeklyRow is one rendered occurrence in the effective schedule for a week.
type WeeklyRow struct {
	ScheduleID          string     `json:"schedule_id,omitempty"`
	ClassID             string     `json:"class_id"`
	ClassName           string     `json:"class_name"`
	TeacherID           string     `json:"teacher_id"`
	TeacherName         string     `json:"teacher_name"`
	SubstituteTeacherID *string    `json:"substitute_teacher_id,omitempty"`
	DayOfWeek           int        `json:"day_of_week"`
	Date                time.Time  `json:"date"`
	TimeSlotID          string     `json:"time_slot_id"`
	TimeLabel           string     `json:"time_label"`
	RoomID              *string    `json:"room_id,omitempty"`
	RoomName            *string    `json:"room_name,omitempty"`
	Status              SlotStatus `json:"status"`
	StatusLabel         string     `json:"status_label"`
	ExceptionType       *string    `json:"exception_type,omitempty"`
	Note                string     `json:"note,omitempty"`
	MovedFrom           string     `json:"moved_from,omitempty"`
}

// WeeklyScheduleRequest scopes the effective-schedule query.
type WeeklyScheduleRequest struct {
	WeekStartDate time.Time `json:"week_start_date" validate:"required"`
	DepartmentID  string    `json:"department_id,omitempty"`
	ClassID       string    `json:"class_id,omitempty"`
	TeacherID     string    `json:"teacher_id,omitempty"`
	Viewer        Viewer    `json:"-"`
}

// WeekSlotFilter narrows the base-slot query for weekly resolution.
type WeekSlotFilter struct {
	DepartmentID string
	ClassID      string
	TeacherID    string
}

// Viewer identifies the requesting user for role-based visibility.
type Viewer struct {
	UserID string
	Role   UserRole
}

// ScheduleStats summarises the assignment workflow's progress.
type ScheduleStats struct {
	TotalClasses    int     `json:"total_classes"`
	PendingClasses  int     `json:"pending_classes"`
	AssignedClasses int     `json:"assigned_classes"`
	TotalSlots      int     `json:"total_slots"`
	PendingSlots    int     `json:"pending_slots"`
	AssignedSlots   int     `json:"assigned_slots"`
	AssignmentRate  float64 `json:"assignment_rate"`
}
