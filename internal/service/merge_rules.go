package service

import (
	"github.com/campus-hub/scheduling-api/internal/models"
)

// mergedEffect is the single outcome of folding one occurrence's exception
// set, computed before any row construction.
type mergedEffect struct {
	rule           string
	status         *models.SlotStatus
	exceptionType  *models.ExceptionType
	roomID         *string
	roomName       *string
	substituteID   *string
	substituteName *string
	note           string
	moved          *models.ExceptionDetail
}

// mergeRule is one named precedence entry. Rules are evaluated in order and
// the first match decides what the original day/slot displays; later rules
// only contribute carried fields (a substitute riding along with a move).
type mergeRule struct {
	name    string
	matches func(models.ExceptionDetail) bool
	apply   func(*mergedEffect, models.ExceptionDetail)
}

// mergeRules is the display precedence for an occurrence's exception set:
// cancelled > room-change > substitute > moved/exam > none.
var mergeRules = []mergeRule{
	{
		name: "cancelled",
		matches: func(e models.ExceptionDetail) bool {
			return e.ExceptionType == models.ExceptionCancelled
		},
		apply: func(eff *mergedEffect, e models.ExceptionDetail) {
			suspended := models.SlotSuspended
			excType := e.ExceptionType
			eff.status = &suspended
			eff.exceptionType = &excType
			eff.note = e.Reason
		},
	},
	{
		name: "room-change",
		matches: func(e models.ExceptionDetail) bool {
			return e.ExceptionType == models.ExceptionRoomChange
		},
		apply: func(eff *mergedEffect, e models.ExceptionDetail) {
			excType := e.ExceptionType
			eff.exceptionType = &excType
			eff.roomID = e.MovedToRoomID
			eff.roomName = e.MovedToRoomName
			eff.note = e.Reason
		},
	},
	{
		name: "substitute",
		matches: func(e models.ExceptionDetail) bool {
			return e.ExceptionType == models.ExceptionSubstitute
		},
		apply: func(eff *mergedEffect, e models.ExceptionDetail) {
			excType := e.ExceptionType
			eff.exceptionType = &excType
			eff.substituteID = e.SubstituteTeacherID
			eff.substituteName = e.SubstituteTeacherName
			eff.note = e.Reason
		},
	},
	{
		name: "moved",
		matches: func(e models.ExceptionDetail) bool {
			return e.ExceptionType.Redirects()
		},
		apply: func(eff *mergedEffect, e models.ExceptionDetail) {
			excType := e.ExceptionType
			eff.exceptionType = &excType
			eff.note = e.Reason
			// A redirect off the original date suspends the original-day
			// display, keeping the booked room visible; a move in place
			// just updates it. The relocated occurrence renders separately
			// through the carried redirect.
			if e.MovedInPlace() {
				eff.roomID = e.MovedToRoomID
				eff.roomName = e.MovedToRoomName
				if excType == models.ExceptionExam {
					exam := models.SlotExam
					eff.status = &exam
				}
			} else {
				suspended := models.SlotSuspended
				eff.status = &suspended
			}
		},
	},
}

// mergeExceptions folds the exception set for one (slot, date) occurrence
// into a single effect. The first matching rule in precedence order decides
// the primary display; a substitute and a redirect are additionally carried
// so a moved occurrence keeps its stand-in teacher, and the resolver can
// emit the synthetic redirected row.
func mergeExceptions(excs []models.ExceptionDetail) mergedEffect {
	var eff mergedEffect
	eff.rule = "none"

	for _, rule := range mergeRules {
		for _, exc := range excs {
			if rule.matches(exc) {
				rule.apply(&eff, exc)
				eff.rule = rule.name
				break
			}
		}
		if eff.rule != "none" {
			break
		}
	}

	// Carried fields, independent of which rule won the original-day display.
	for i := range excs {
		exc := excs[i]
		if exc.ExceptionType == models.ExceptionSubstitute && eff.substituteID == nil {
			eff.substituteID = exc.SubstituteTeacherID
			eff.substituteName = exc.SubstituteTeacherName
		}
		if exc.ExceptionType.Redirects() && eff.moved == nil {
			eff.moved = &excs[i]
		}
	}

	return eff
}
