package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/uncacademycode/bookingdesk/services/notification-service/internal/email"
	"github.com/uncacademycode/bookingdesk/services/notification-service/internal/storage"
)

type fakeSender struct {
	err  error
	sent []email.Message
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) ProviderID() string { return "fake" }

type fakeDeliveryLog struct {
	rows []storage.Delivery
	err  error
}

func (l *fakeDeliveryLog) Insert(_ context.Context, d storage.Delivery) error {
	l.rows = append(l.rows, d)
	return l.err
}

var testLogger = slog.New(slog.NewTextHandler(new(strings.Builder), nil))

var adminEmails = []string{"ops@example.com", "owner@example.com"}

const bookingBody = `{"client_name":"Jo Lee","client_email":"jo@x.com","project_type":"SaaS","scheduled_time":"2026-01-05T14:30:00Z","notes":"needs a CRM"}`

func TestBookingDispatch(t *testing.T) {
	sender := &fakeSender{}
	deliveries := &fakeDeliveryLog{}
	h := NewNotificationHandler(sender, deliveries, testLogger, adminEmails)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/booking", strings.NewReader(bookingBody))
	rec := httptest.NewRecorder()
	h.Booking(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || !resp.Success {
		t.Fatalf("expected success response, got %s", rec.Body.String())
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sender.sent))
	}
	admin, client := sender.sent[0], sender.sent[1]
	if len(admin.To) != 2 || admin.To[0] != "ops@example.com" {
		t.Fatalf("admin notice recipients wrong: %v", admin.To)
	}
	if admin.Subject != "New Booking: Jo Lee - SaaS" {
		t.Fatalf("unexpected admin subject: %q", admin.Subject)
	}
	if len(client.To) != 1 || client.To[0] != "jo@x.com" {
		t.Fatalf("client confirmation recipients wrong: %v", client.To)
	}

	if len(deliveries.rows) != 2 {
		t.Fatalf("expected 2 delivery rows, got %d", len(deliveries.rows))
	}
	if deliveries.rows[0].Kind != "booking_admin" || deliveries.rows[0].Status != "sent" {
		t.Fatalf("unexpected delivery row: %+v", deliveries.rows[0])
	}
	if deliveries.rows[1].Kind != "booking_client" || deliveries.rows[1].Recipient != "jo@x.com" {
		t.Fatalf("unexpected delivery row: %+v", deliveries.rows[1])
	}
}

func TestBookingSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp unavailable")}
	deliveries := &fakeDeliveryLog{}
	h := NewNotificationHandler(sender, deliveries, testLogger, adminEmails)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/booking", strings.NewReader(bookingBody))
	rec := httptest.NewRecorder()
	h.Booking(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Error, "smtp unavailable") {
		t.Fatalf("expected provider error in response, got %q", resp.Error)
	}
	// The failed attempt is still logged.
	if len(deliveries.rows) != 1 || deliveries.rows[0].Status != "failed" {
		t.Fatalf("unexpected delivery rows: %+v", deliveries.rows)
	}
}

func TestBookingDeliveryLogFailureIsIgnored(t *testing.T) {
	sender := &fakeSender{}
	deliveries := &fakeDeliveryLog{err: errors.New("db down")}
	h := NewNotificationHandler(sender, deliveries, testLogger, adminEmails)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/booking", strings.NewReader(bookingBody))
	rec := httptest.NewRecorder()
	h.Booking(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("delivery log failure must not fail the dispatch: got %d", rec.Code)
	}
}

func TestBookingValidation(t *testing.T) {
	h := NewNotificationHandler(&fakeSender{}, &fakeDeliveryLog{}, testLogger, adminEmails)

	for name, body := range map[string]string{
		"bad json":       "{nope",
		"missing fields": `{"client_name":"Jo Lee"}`,
		"bad time":       `{"client_name":"Jo Lee","client_email":"jo@x.com","project_type":"SaaS","scheduled_time":"tomorrow"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/booking", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Booking(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestPasswordReset(t *testing.T) {
	sender := &fakeSender{}
	h := NewNotificationHandler(sender, &fakeDeliveryLog{}, testLogger, adminEmails)

	body := `{"email":"jo@x.com","reset_link":"https://console.example.com/reset?token=abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/password-reset", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.PasswordReset(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "jo@x.com" {
		t.Fatalf("unexpected messages: %+v", sender.sent)
	}
	if !strings.Contains(sender.sent[0].HTML, "token=abc") {
		t.Fatalf("reset link missing from body:\n%s", sender.sent[0].HTML)
	}
}
