// Package schedule owns the bookable slot grid and the date+slot merge used
// by intake. The grid is half-hour labels from opening to closing time,
// closing slot included.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

const (
	openClock  = "09:00"
	closeClock = "17:00"
	slotStep   = 30 * time.Minute

	dateLayout = "2006-01-02"
	slotLayout = "15:04"
)

var (
	ErrPast    = errors.New("scheduled time is in the past")
	ErrWeekend = errors.New("scheduled time falls on a weekend")
)

// Slots returns the ordered set of bookable time-slot labels.
func Slots() []string {
	start, _ := time.Parse(slotLayout, openClock)
	end, _ := time.Parse(slotLayout, closeClock)

	var labels []string
	for t := start; !t.After(end); t = t.Add(slotStep) {
		labels = append(labels, t.Format(slotLayout))
	}
	return labels
}

func ValidSlot(label string) bool {
	for _, s := range Slots() {
		if s == label {
			return true
		}
	}
	return false
}

// Merge combines a calendar date (YYYY-MM-DD) with a slot label into one
// instant in loc. The slot's hour/minute replace the date's time-of-day;
// seconds and sub-seconds are zero.
func Merge(date, slot string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	clock, err := time.Parse(slotLayout, slot)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time slot %q", slot)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// CheckBookable rejects instants already in the past and weekend days.
// Store-side code never re-validates this; it is an intake-only constraint.
func CheckBookable(t time.Time, now time.Time) error {
	if t.Before(now) {
		return ErrPast
	}
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return ErrWeekend
	}
	return nil
}
