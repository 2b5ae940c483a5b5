package model

import "time"

// Status is the appointment lifecycle state. Transitions are operator-driven
// and fully connected: any status may be set from any other.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInReview  Status = "in_review"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses returns all lifecycle states in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInReview, StatusConfirmed, StatusCompleted, StatusCancelled}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// ProjectType is the closed set of engagement categories a client can book.
type ProjectType string

const (
	ProjectConsultation      ProjectType = "Consultation"
	ProjectSaaS              ProjectType = "SaaS"
	ProjectEcommerce         ProjectType = "E-commerce"
	ProjectPortfolio         ProjectType = "Portfolio"
	ProjectStatic            ProjectType = "Static"
	ProjectLandingPage       ProjectType = "Landing Page"
	ProjectBusiness          ProjectType = "Business"
	ProjectBlog              ProjectType = "Blog"
	ProjectAppointmentSystem ProjectType = "Appointment System"
	ProjectOther             ProjectType = "Other"
)

func ProjectTypes() []ProjectType {
	return []ProjectType{
		ProjectConsultation,
		ProjectSaaS,
		ProjectEcommerce,
		ProjectPortfolio,
		ProjectStatic,
		ProjectLandingPage,
		ProjectBusiness,
		ProjectBlog,
		ProjectAppointmentSystem,
		ProjectOther,
	}
}

func (p ProjectType) Valid() bool {
	for _, known := range ProjectTypes() {
		if p == known {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID            string
	CreatedAt     time.Time
	ClientName    string
	ClientEmail   string
	ProjectType   ProjectType
	ScheduledTime time.Time
	Notes         string
	Status        Status
}
