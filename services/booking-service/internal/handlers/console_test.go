package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/model"
)

func seedAppointment(store *fakeStore, id string, status model.Status) model.Appointment {
	appt := model.Appointment{
		ID:            id,
		CreatedAt:     time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		ClientName:    "Jo Lee",
		ClientEmail:   "jo@x.com",
		ProjectType:   model.ProjectSaaS,
		ScheduledTime: time.Date(2026, 9, 2, 10, 30, 0, 0, time.UTC),
		Notes:         "brief",
		Status:        status,
	}
	store.appointments[id] = appt
	return appt
}

func TestConsoleList(t *testing.T) {
	store := newFakeStore()
	seedAppointment(store, "a1", model.StatusPending)
	h := NewConsoleHandler(store, &fakeNotifier{}, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/appointments", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []struct {
		AppointmentID string `json:"appointment_id"`
		ScheduledTime string `json:"scheduled_time"`
		Status        string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].AppointmentID != "a1" || items[0].Status != "pending" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
	if _, err := time.Parse(time.RFC3339, items[0].ScheduledTime); err != nil {
		t.Fatalf("scheduled_time is not RFC3339: %v", err)
	}
}

func TestConsoleStats(t *testing.T) {
	store := newFakeStore()
	seedAppointment(store, "a1", model.StatusPending)
	seedAppointment(store, "a2", model.StatusPending)
	seedAppointment(store, "a3", model.StatusConfirmed)
	h := NewConsoleHandler(store, &fakeNotifier{}, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/appointments/stats", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("expected total 3, got %d", resp.Total)
	}
	if resp.ByStatus["pending"] != 2 || resp.ByStatus["confirmed"] != 1 {
		t.Fatalf("unexpected counts: %v", resp.ByStatus)
	}
	// Every status appears even when zero.
	if len(resp.ByStatus) != len(model.Statuses()) {
		t.Fatalf("expected %d statuses, got %v", len(model.Statuses()), resp.ByStatus)
	}
}

func TestConsoleUpdateStatus(t *testing.T) {
	// Any stored status may move to any valid status, including back to
	// pending.
	for _, from := range model.Statuses() {
		for _, to := range model.Statuses() {
			store := newFakeStore()
			seedAppointment(store, "a1", from)
			h := NewConsoleHandler(store, &fakeNotifier{}, testLogger)

			body := fmt.Sprintf(`{"appointment_id":"a1","status":"%s"}`, to)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/appointments/status", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.UpdateStatus(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("%s -> %s: expected 200, got %d", from, to, rec.Code)
			}
			if store.appointments["a1"].Status != to {
				t.Fatalf("%s -> %s: status not persisted", from, to)
			}
		}
	}
}

func TestConsoleUpdateStatusInvalid(t *testing.T) {
	store := newFakeStore()
	seedAppointment(store, "a1", model.StatusPending)
	h := NewConsoleHandler(store, &fakeNotifier{}, testLogger)

	body := `{"appointment_id":"a1","status":"archived"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/appointments/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if store.appointments["a1"].Status != model.StatusPending {
		t.Fatal("status must be unchanged")
	}
}

func TestConsoleUpdateStatusNotFound(t *testing.T) {
	h := NewConsoleHandler(newFakeStore(), &fakeNotifier{}, testLogger)
	body := `{"appointment_id":"missing","status":"confirmed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/appointments/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSendConfirmationWithZoomLink(t *testing.T) {
	store := newFakeStore()
	seedAppointment(store, "a1", model.StatusPending)
	notifier := &fakeNotifier{}
	h := NewConsoleHandler(store, notifier, testLogger)

	body := `{"appointment_id":"a1","zoom_link":"https://zoom.us/j/123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/appointments/send-confirmation", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendConfirmation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(notifier.sent))
	}
	if notifier.sent[0].ZoomLink != "https://zoom.us/j/123" {
		t.Fatalf("zoom link not forwarded: %+v", notifier.sent[0])
	}
	if store.appointments["a1"].Status != model.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", store.appointments["a1"].Status)
	}
	var resp struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Status != "confirmed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSendConfirmationWithoutZoomLink(t *testing.T) {
	store := newFakeStore()
	seedAppointment(store, "a1", model.StatusInReview)
	notifier := &fakeNotifier{}
	h := NewConsoleHandler(store, notifier, testLogger)

	body := `{"appointment_id":"a1","zoom_link":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/appointments/send-confirmation", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendConfirmation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(notifier.sent))
	}
	if store.appointments["a1"].Status != model.StatusInReview {
		t.Fatalf("status must be unchanged without a zoom link, got %s", store.appointments["a1"].Status)
	}
}

func TestSendConfirmationDispatchFailure(t *testing.T) {
	store := newFakeStore()
	seedAppointment(store, "a1", model.StatusPending)
	notifier := &fakeNotifier{err: errors.New("smtp unavailable")}
	h := NewConsoleHandler(store, notifier, testLogger)

	body := `{"appointment_id":"a1","zoom_link":"https://zoom.us/j/123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/appointments/send-confirmation", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendConfirmation(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if store.appointments["a1"].Status != model.StatusPending {
		t.Fatal("status must be untouched when dispatch fails")
	}
}

func TestSendConfirmationNotFound(t *testing.T) {
	h := NewConsoleHandler(newFakeStore(), &fakeNotifier{}, testLogger)
	body := `{"appointment_id":"missing","zoom_link":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/appointments/send-confirmation", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendConfirmation(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
