package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildMessage(t *testing.T) {
	msg := Message{
		To:      []string{"a@x.com", "b@x.com"},
		Subject: "New Booking: Jo Lee - SaaS",
		HTML:    "<p>hi</p>",
	}
	raw := buildMessage("no-reply@bookingdesk.local", msg)

	for _, want := range []string{
		"From: no-reply@bookingdesk.local\r\n",
		"To: a@x.com, b@x.com\r\n",
		"Subject: New Booking: Jo Lee - SaaS\r\n",
		"Content-Type: text/html; charset=utf-8\r\n",
		"\r\n\r\n<p>hi</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q:\n%s", want, raw)
		}
	}
}

func TestWebhookSender(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewWebhookSender(server.URL, "re_test", "hello@bookingdesk.local")
	err := s.Send(context.Background(), Message{
		To:      []string{"jo@x.com"},
		Subject: "s",
		HTML:    "<p>h</p>",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotAuth != "Bearer re_test" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
	if gotBody["from"] != "hello@bookingdesk.local" || gotBody["subject"] != "s" {
		t.Fatalf("unexpected payload: %v", gotBody)
	}
}

func TestWebhookSenderNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewWebhookSender(server.URL, "", "")
	err := s.Send(context.Background(), Message{To: []string{"jo@x.com"}})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestWebhookSenderUnconfigured(t *testing.T) {
	s := NewWebhookSender("", "", "")
	if err := s.Send(context.Background(), Message{To: []string{"jo@x.com"}}); err == nil {
		t.Fatal("expected error when url not configured")
	}
}
