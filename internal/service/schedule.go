package service

import (
	"time"

	"briefbox/backend/internal/model"
)

// NextDue computes the next digest due time for a subscription, evaluated on
// the subscriber's wall clock: now must already be in the subscriber's
// location and the result carries that location. Comparison works at minute
// granularity; a digest due 09:00 evaluated at 09:00:30 has already passed
// and rolls over.
func NextDue(now time.Time, frequency model.Frequency, day *time.Weekday, at model.TimeOfDay) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())

	if frequency == model.FrequencyWeekly && day != nil {
		if now.Weekday() == *day && timeAhead(now, at) {
			return target
		}
		daysAhead := (int(*day) - int(now.Weekday()) + 7) % 7
		// same weekday with the time already passed means next week, never
		// today
		if daysAhead == 0 {
			daysAhead = 7
		}
		return target.AddDate(0, 0, daysAhead)
	}

	if timeAhead(now, at) {
		return target
	}
	return target.AddDate(0, 0, 1)
}

// timeAhead reports whether at is still in the future today, comparing hour
// then minute. Seconds are ignored on purpose.
func timeAhead(now time.Time, at model.TimeOfDay) bool {
	if now.Hour() != at.Hour {
		return now.Hour() < at.Hour
	}
	return now.Minute() < at.Minute
}
