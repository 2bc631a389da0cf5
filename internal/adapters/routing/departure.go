package routing

import (
	"time"

	"homerank/internal/domain"
)

// nextDeparture returns the first instant strictly after now that falls on
// the given weekday (any day when empty) at the HH:MM clock time.
func nextDeparture(now time.Time, dayOfWeek, clock string) (time.Time, error) {
	hour, minute, err := domain.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	if dayOfWeek == "" {
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil
	}

	day, err := domain.ParseWeekday(dayOfWeek)
	if err != nil {
		return time.Time{}, err
	}

	ahead := (int(day) - int(now.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, ahead)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate, nil
}

// isRushHour reports weekday departures between 07:00-09:59 or 17:00-19:59.
func isRushHour(dayOfWeek, clock string) (bool, error) {
	day, err := domain.ParseWeekday(dayOfWeek)
	if err != nil {
		return false, err
	}
	hour, _, err := domain.ParseClock(clock)
	if err != nil {
		return false, err
	}

	if day == time.Saturday || day == time.Sunday {
		return false, nil
	}
	return (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19), nil
}
