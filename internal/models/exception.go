package models

import "time"

// ScheduleException is a time-stamped deviation from a slot's recurring
// pattern. ClassScheduleID is null only for standalone final-exam records,
// which reference the class directly.
type ScheduleException struct {
	ID                  string         `db:"id" json:"id"`
	ClassScheduleID     *string        `db:"class_schedule_id" json:"class_schedule_id,omitempty"`
	ClassID             string         `db:"class_id" json:"class_id"`
	ExceptionDate       time.Time      `db:"exception_date" json:"exception_date"`
	ExceptionType       ExceptionType  `db:"exception_type" json:"exception_type"`
	MovedToDate         *time.Time     `db:"moved_to_date" json:"moved_to_date,omitempty"`
	MovedToTimeSlotID   *string        `db:"moved_to_time_slot_id" json:"moved_to_time_slot_id,omitempty"`
	MovedToRoomID       *string        `db:"moved_to_room_id" json:"moved_to_room_id,omitempty"`
	SubstituteTeacherID *string        `db:"substitute_teacher_id" json:"substitute_teacher_id,omitempty"`
	Reason              string         `db:"reason" json:"reason"`
	Status              ApprovalStatus `db:"status" json:"status"`
	RequestedBy         string         `db:"requested_by" json:"requested_by"`
	ApprovedBy          *string        `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt          *time.Time     `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// MovedInPlace reports whether a redirecting exception stays on its original
// date, i.e. only the time or room changes for that day.
func (e ScheduleException) MovedInPlace() bool {
	if !e.ExceptionType.Redirects() {
		return false
	}
	if e.MovedToDate == nil {
		return true
	}
	return SameDate(*e.MovedToDate, e.ExceptionDate)
}

// ExceptionDetail joins an exception with display fields used by the
// weekly resolver and the availability checker.
type ExceptionDetail struct {
	ScheduleException
	ClassName             string  `db:"class_name" json:"class_name"`
	ClassTeacherID        string  `db:"class_teacher_id" json:"class_teacher_id"`
	ClassTeacherName      string  `db:"class_teacher_name" json:"class_teacher_name"`
	MovedToRoomName       *string `db:"moved_to_room_name" json:"moved_to_room_name,omitempty"`
	SubstituteTeacherName *string `db:"substitute_teacher_name" json:"substitute_teacher_name,omitempty"`
}
