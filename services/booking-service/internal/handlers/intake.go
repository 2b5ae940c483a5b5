package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/intake"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/model"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/notify"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/schedule"
)

// AppointmentStore is the slice of the repository the handlers need.
type AppointmentStore interface {
	Insert(ctx context.Context, appt *model.Appointment) error
	List(ctx context.Context) ([]model.Appointment, error)
	GetByID(ctx context.Context, id string) (model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	CountByStatus(ctx context.Context) (map[model.Status]int, error)
}

type Notifier interface {
	SendBooking(ctx context.Context, n notify.BookingNotification) error
}

type IntakeHandler struct {
	store      AppointmentStore
	notifier   Notifier
	logger     *slog.Logger
	loc        *time.Location
	failClosed bool
	now        func() time.Time
}

// NewIntakeHandler builds the public booking endpoint. failClosed controls
// whether a notification failure after a successful store write is surfaced
// to the submitter; the default product behavior is fail-open (booking
// succeeds, error is only logged).
func NewIntakeHandler(store AppointmentStore, notifier Notifier, logger *slog.Logger, loc *time.Location, failClosed bool) *IntakeHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &IntakeHandler{
		store:      store,
		notifier:   notifier,
		logger:     logger,
		loc:        loc,
		failClosed: failClosed,
		now:        time.Now,
	}
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
}

func (h *IntakeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sub intake.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	appt, fieldErrs := intake.Validate(sub, h.now().In(h.loc), h.loc)
	if len(fieldErrs) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": fieldErrs})
		return
	}

	appt.ID = uuid.NewString()
	appt.CreatedAt = h.now().UTC()

	ctx := r.Context()
	if err := h.store.Insert(ctx, &appt); err != nil {
		h.logger.Error("appointment insert failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	// The booking is durable from here on; a notification failure never rolls
	// it back.
	if err := h.notifier.SendBooking(ctx, notify.BookingNotification{
		ClientName:    appt.ClientName,
		ClientEmail:   appt.ClientEmail,
		ProjectType:   string(appt.ProjectType),
		ScheduledTime: appt.ScheduledTime.Format(time.RFC3339),
		Notes:         appt.Notes,
	}); err != nil {
		h.logger.Error("booking notification failed", "err", err, "appointment_id", appt.ID)
		if h.failClosed {
			http.Error(w, "booking stored but confirmation email failed", http.StatusBadGateway)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createBookingResponse{AppointmentID: appt.ID})
}

// TimeSlots serves the bookable slot labels so the frontend does not
// hard-code the grid.
func (h *IntakeHandler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"time_slots":    schedule.Slots(),
		"project_types": model.ProjectTypes(),
	})
}
