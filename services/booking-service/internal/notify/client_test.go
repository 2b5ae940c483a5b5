package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendBooking(t *testing.T) {
	var got BookingNotification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/notifications/booking" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.SendBooking(context.Background(), BookingNotification{
		ClientName:    "Jo Lee",
		ClientEmail:   "jo@x.com",
		ProjectType:   "SaaS",
		ScheduledTime: "2026-09-02T10:30:00Z",
	})
	if err != nil {
		t.Fatalf("SendBooking failed: %v", err)
	}
	if got.ClientEmail != "jo@x.com" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendBookingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "smtp unavailable"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.SendBooking(context.Background(), BookingNotification{ClientEmail: "jo@x.com"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "smtp unavailable" {
		t.Fatalf("expected provider error surfaced, got %v", err)
	}
}

func TestSendBookingUnconfigured(t *testing.T) {
	client := NewClient("")
	if err := client.SendBooking(context.Background(), BookingNotification{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
