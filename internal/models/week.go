package models

import "time"

// Midnight truncates a timestamp to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// WeekStart returns the Sunday on or before the given date. Day 1 of the
// scheduling week is Sunday.
func WeekStart(t time.Time) time.Time {
	d := Midnight(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// OccurrenceDate resolves the calendar date of a slot's day-of-week within
// the week starting at weekStart.
func OccurrenceDate(weekStart time.Time, dayOfWeek int) time.Time {
	return WeekStart(weekStart).AddDate(0, 0, dayOfWeek-1)
}

// WeekIndex returns the 1-based index of the week containing date, counted
// from the week containing the class start date.
func WeekIndex(classStart, date time.Time) int {
	start := WeekStart(classStart)
	days := int(Midnight(date).Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days/7 + 1
}

// DayOfWeek converts a calendar date to the 1..7 (1 = Sunday) convention.
func DayOfWeek(t time.Time) int {
	return int(Midnight(t).Weekday()) + 1
}
