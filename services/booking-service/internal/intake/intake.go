// Package intake validates client booking submissions and shapes them into
// Appointment records.
package intake

import (
	"net/mail"
	"strings"
	"time"

	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/model"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/schedule"
)

type Submission struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ProjectType string `json:"project_type"`
	Date        string `json:"date"`
	TimeSlot    string `json:"time_slot"`
	Notes       string `json:"notes"`
}

// FieldErrors maps a submission field to its first validation failure.
type FieldErrors map[string]string

const (
	minNameLen  = 2
	maxNameLen  = 100
	maxEmailLen = 255
	maxNotesLen = 1000
)

// Validate applies the intake rules and, when they all pass, returns the
// Appointment the submission describes. ID and CreatedAt are left for the
// caller; Status is always pending.
func Validate(sub Submission, now time.Time, loc *time.Location) (model.Appointment, FieldErrors) {
	errs := FieldErrors{}

	name := strings.TrimSpace(sub.Name)
	if len(name) < minNameLen {
		errs["name"] = "name must be at least 2 characters"
	} else if len(name) > maxNameLen {
		errs["name"] = "name is too long"
	}

	email := strings.TrimSpace(sub.Email)
	if len(email) > maxEmailLen {
		errs["email"] = "email is too long"
	} else if !validEmail(email) {
		errs["email"] = "please enter a valid email address"
	}

	projectType := model.ProjectType(strings.TrimSpace(sub.ProjectType))
	if !projectType.Valid() {
		errs["project_type"] = "please select a project type"
	}

	if strings.TrimSpace(sub.TimeSlot) == "" {
		errs["time_slot"] = "please select a time"
	} else if !schedule.ValidSlot(sub.TimeSlot) {
		errs["time_slot"] = "time slot is not available"
	}

	var scheduledTime time.Time
	if strings.TrimSpace(sub.Date) == "" {
		errs["date"] = "please select a date"
	} else if errs["time_slot"] == "" {
		merged, err := schedule.Merge(sub.Date, sub.TimeSlot, loc)
		if err != nil {
			errs["date"] = "invalid date"
		} else if err := schedule.CheckBookable(merged, now); err != nil {
			switch err {
			case schedule.ErrPast:
				errs["date"] = "date must be in the future"
			case schedule.ErrWeekend:
				errs["date"] = "weekends are not available"
			}
		} else {
			scheduledTime = merged
		}
	}

	if len(sub.Notes) > maxNotesLen {
		errs["notes"] = "notes must be less than 1000 characters"
	}

	if len(errs) > 0 {
		return model.Appointment{}, errs
	}

	return model.Appointment{
		ClientName:    name,
		ClientEmail:   email,
		ProjectType:   projectType,
		ScheduledTime: scheduledTime,
		Notes:         strings.TrimSpace(sub.Notes),
		Status:        model.StatusPending,
	}, nil
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Jo <jo@x.com>"; intake wants a bare address.
	return addr.Address == s
}
