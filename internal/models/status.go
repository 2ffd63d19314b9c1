package models

// SlotStatus enumerates the lifecycle states of a recurring class slot.
type SlotStatus string

const (
	SlotPendingAssignment SlotStatus = "PENDING_ASSIGNMENT"
	SlotAssigned          SlotStatus = "ASSIGNED"
	SlotActive            SlotStatus = "ACTIVE"
	SlotCancelled         SlotStatus = "CANCELLED"
	SlotSuspended         SlotStatus = "SUSPENDED"
	SlotExam              SlotStatus = "EXAM"
)

var slotStatusLabels = map[SlotStatus]string{
	SlotPendingAssignment: "Pending Assignment",
	SlotAssigned:          "Assigned",
	SlotActive:            "Active",
	SlotCancelled:         "Cancelled",
	SlotSuspended:         "Suspended",
	SlotExam:              "Exam",
}

// Label returns the display label for the status.
func (s SlotStatus) Label() string {
	if label, ok := slotStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether the status is a known variant.
func (s SlotStatus) Valid() bool {
	_, ok := slotStatusLabels[s]
	return ok
}

// HoldsRoom reports whether a slot in this status is expected to carry a room.
func (s SlotStatus) HoldsRoom() bool {
	return s == SlotAssigned || s == SlotActive || s == SlotExam
}

// Occupying reports whether a slot in this status blocks its room for others.
func (s SlotStatus) Occupying() bool {
	return s == SlotAssigned || s == SlotActive
}

// ExceptionType enumerates the supported schedule deviations.
type ExceptionType string

const (
	ExceptionCancelled  ExceptionType = "CANCELLED"
	ExceptionMoved      ExceptionType = "MOVED"
	ExceptionSubstitute ExceptionType = "SUBSTITUTE"
	ExceptionRoomChange ExceptionType = "ROOM_CHANGE"
	ExceptionExam       ExceptionType = "EXAM"
)

var exceptionTypeLabels = map[ExceptionType]string{
	ExceptionCancelled:  "Class Cancelled",
	ExceptionMoved:      "Class Moved",
	ExceptionSubstitute: "Substitute Teacher",
	ExceptionRoomChange: "Room Change",
	ExceptionExam:       "Exam",
}

// Label returns the display label for the exception type.
func (t ExceptionType) Label() string {
	if label, ok := exceptionTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Valid reports whether the type is a known variant.
func (t ExceptionType) Valid() bool {
	_, ok := exceptionTypeLabels[t]
	return ok
}

// Redirects reports whether the type may carry a target date/slot/room.
func (t ExceptionType) Redirects() bool {
	return t == ExceptionMoved || t == ExceptionExam
}

// Vacates reports whether an approved exception of this type frees the
// original room for the affected date.
func (t ExceptionType) Vacates() bool {
	return t == ExceptionCancelled || t == ExceptionMoved || t == ExceptionExam
}

// ApprovalStatus tracks the workflow state of a schedule exception.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

var approvalStatusLabels = map[ApprovalStatus]string{
	ApprovalPending:  "Pending Approval",
	ApprovalApproved: "Approved",
	ApprovalRejected: "Rejected",
}

// Label returns the display label for the approval status.
func (s ApprovalStatus) Label() string {
	if label, ok := approvalStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// WeekPattern describes which weeks of the semester a slot recurs in.
type WeekPattern string

const (
	WeekPatternAll  WeekPattern = "ALL"
	WeekPatternOdd  WeekPattern = "ODD"
	WeekPatternEven WeekPattern = "EVEN"
)

// Matches reports whether the 1-based week index falls in the pattern.
func (p WeekPattern) Matches(weekIndex int) bool {
	switch p {
	case WeekPatternOdd:
		return weekIndex%2 == 1
	case WeekPatternEven:
		return weekIndex%2 == 0
	default:
		return true
	}
}

// ClassStatus is the aggregate status derived from a class's slots.
type ClassStatus string

const (
	ClassPending  ClassStatus = "PENDING"
	ClassAssigned ClassStatus = "ASSIGNED"
)

// DeriveClassStatus computes the aggregate status: Assigned only when every
// slot of the class has a confirmed room. Never persisted.
func DeriveClassStatus(slots []ClassSchedule) ClassStatus {
	if len(slots) == 0 {
		return ClassPending
	}
	for _, slot := range slots {
		if slot.Status != SlotAssigned {
			return ClassPending
		}
	}
	return ClassAssigned
}
