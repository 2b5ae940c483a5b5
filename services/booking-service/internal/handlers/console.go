package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/model"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/notify"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/storage"
)

// ConsoleHandler is the operator-facing surface over all appointments.
type ConsoleHandler struct {
	store    AppointmentStore
	notifier Notifier
	logger   *slog.Logger
}

func NewConsoleHandler(store AppointmentStore, notifier Notifier, logger *slog.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

type appointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	CreatedAt     string `json:"created_at"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	ProjectType   string `json:"project_type"`
	ScheduledTime string `json:"scheduled_time"`
	Notes         string `json:"notes,omitempty"`
	Status        string `json:"status"`
}

type updateStatusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

type sendConfirmationRequest struct {
	AppointmentID string `json:"appointment_id"`
	ZoomLink      string `json:"zoom_link"`
}

func (h *ConsoleHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	appts, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("appointment list failed", "err", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		items = append(items, appointmentItem{
			AppointmentID: appt.ID,
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
			ClientName:    appt.ClientName,
			ClientEmail:   appt.ClientEmail,
			ProjectType:   string(appt.ProjectType),
			ScheduledTime: appt.ScheduledTime.UTC().Format(time.RFC3339),
			Notes:         appt.Notes,
			Status:        string(appt.Status),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(items)
}

// Stats backs the dashboard's per-status cards.
func (h *ConsoleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, err := h.store.CountByStatus(r.Context())
	if err != nil {
		h.logger.Error("appointment stats failed", "err", err)
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	byStatus := map[string]int{}
	total := 0
	for _, status := range model.Statuses() {
		n := counts[status]
		byStatus[string(status)] = n
		total += n
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total":     total,
		"by_status": byStatus,
	})
}

func (h *ConsoleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	status := model.Status(strings.TrimSpace(req.Status))
	if !status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateStatus(r.Context(), req.AppointmentID, status); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("status update failed", "err", err, "appointment_id", req.AppointmentID)
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"appointment_id": req.AppointmentID,
		"status":         string(status),
	})
}

// SendConfirmation re-invokes the dispatcher for a stored appointment. A
// non-empty zoom link additionally moves the appointment to confirmed, but
// only after the dispatch call has succeeded.
func (h *ConsoleHandler) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sendConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.ZoomLink = strings.TrimSpace(req.ZoomLink)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	appt, err := h.store.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("appointment lookup failed", "err", err, "appointment_id", req.AppointmentID)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	if err := h.notifier.SendBooking(ctx, notify.BookingNotification{
		ClientName:    appt.ClientName,
		ClientEmail:   appt.ClientEmail,
		ProjectType:   string(appt.ProjectType),
		ScheduledTime: appt.ScheduledTime.Format(time.RFC3339),
		Notes:         appt.Notes,
		ZoomLink:      req.ZoomLink,
	}); err != nil {
		h.logger.Error("confirmation dispatch failed", "err", err, "appointment_id", appt.ID)
		http.Error(w, "failed to send emails", http.StatusBadGateway)
		return
	}

	status := appt.Status
	if req.ZoomLink != "" {
		if err := h.store.UpdateStatus(ctx, appt.ID, model.StatusConfirmed); err != nil {
			h.logger.Error("follow-on confirm failed", "err", err, "appointment_id", appt.ID)
			http.Error(w, "emails sent but status update failed", http.StatusInternalServerError)
			return
		}
		status = model.StatusConfirmed
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":        true,
		"appointment_id": appt.ID,
		"status":         string(status),
	})
}
