package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/uncacademycode/bookingdesk/services/notification-service/internal/email"
	"github.com/uncacademycode/bookingdesk/services/notification-service/internal/render"
	"github.com/uncacademycode/bookingdesk/services/notification-service/internal/storage"
)

// DeliveryLog records each attempted message. Logging failures are not
// allowed to fail the dispatch itself.
type DeliveryLog interface {
	Insert(ctx context.Context, d storage.Delivery) error
}

type NotificationHandler struct {
	sender      email.Sender
	deliveries  DeliveryLog
	logger      *slog.Logger
	adminEmails []string
}

func NewNotificationHandler(sender email.Sender, deliveries DeliveryLog, logger *slog.Logger, adminEmails []string) *NotificationHandler {
	return &NotificationHandler{
		sender:      sender,
		deliveries:  deliveries,
		logger:      logger,
		adminEmails: adminEmails,
	}
}

type bookingRequest struct {
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	ProjectType   string `json:"project_type"`
	ScheduledTime string `json:"scheduled_time"`
	Notes         string `json:"notes"`
	ZoomLink      string `json:"zoom_link"`
}

type passwordResetRequest struct {
	Email     string `json:"email"`
	ResetLink string `json:"reset_link"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeSuccess(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// Booking renders and sends the admin notice plus the client confirmation
// for one booking. Both sends are synchronous; either failing yields the
// error outcome.
func (h *NotificationHandler) Booking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.ClientName) == "" || strings.TrimSpace(req.ClientEmail) == "" ||
		strings.TrimSpace(req.ProjectType) == "" || strings.TrimSpace(req.ScheduledTime) == "" {
		writeError(w, http.StatusBadRequest, "missing booking fields")
		return
	}
	scheduledTime, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scheduled_time")
		return
	}

	data := render.BookingData{
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ProjectType:   req.ProjectType,
		ScheduledTime: scheduledTime,
		Notes:         req.Notes,
		ZoomLink:      req.ZoomLink,
	}

	adminMail, err := render.AdminNotice(data)
	if err != nil {
		h.logger.Error("admin notice render failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to render admin notice")
		return
	}
	clientMail, err := render.ClientConfirmation(data)
	if err != nil {
		h.logger.Error("client confirmation render failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to render client confirmation")
		return
	}

	ctx := r.Context()
	if err := h.dispatch(ctx, "booking_admin", h.adminEmails, adminMail); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send admin notice: "+err.Error())
		return
	}
	if err := h.dispatch(ctx, "booking_client", []string{req.ClientEmail}, clientMail); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send client confirmation: "+err.Error())
		return
	}

	writeSuccess(w)
}

// PasswordReset emails a reset link on behalf of the access gate.
func (h *NotificationHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req passwordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.ResetLink) == "" {
		writeError(w, http.StatusBadRequest, "missing reset fields")
		return
	}

	mail, err := render.PasswordReset(req.ResetLink)
	if err != nil {
		h.logger.Error("password reset render failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to render password reset")
		return
	}

	if err := h.dispatch(r.Context(), "password_reset", []string{req.Email}, mail); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send password reset: "+err.Error())
		return
	}

	writeSuccess(w)
}

func (h *NotificationHandler) dispatch(ctx context.Context, kind string, to []string, mail render.Email) error {
	sendErr := h.sender.Send(ctx, email.Message{
		To:      to,
		Subject: mail.Subject,
		HTML:    mail.HTML,
	})

	status := "sent"
	reason := ""
	if sendErr != nil {
		status = "failed"
		reason = sendErr.Error()
		h.logger.Error("email send failed", "err", sendErr, "kind", kind, "provider", h.sender.ProviderID())
	}
	if err := h.deliveries.Insert(ctx, storage.Delivery{
		Kind:        kind,
		Recipient:   strings.Join(to, ", "),
		Subject:     mail.Subject,
		Status:      status,
		ErrorReason: reason,
	}); err != nil {
		h.logger.Error("failed to persist delivery log", "err", err, "kind", kind)
	}
	return sendErr
}
