package render

import (
	"strings"
	"testing"
	"time"
)

func bookingData(zoomLink string) BookingData {
	return BookingData{
		ClientName:    "Jo Lee",
		ClientEmail:   "jo@x.com",
		ProjectType:   "SaaS",
		ScheduledTime: time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC),
		Notes:         "needs a CRM",
		ZoomLink:      zoomLink,
	}
}

func TestAdminNotice(t *testing.T) {
	mail, err := AdminNotice(bookingData(""))
	if err != nil {
		t.Fatalf("AdminNotice failed: %v", err)
	}
	if mail.Subject != "New Booking: Jo Lee - SaaS" {
		t.Fatalf("unexpected subject: %q", mail.Subject)
	}
	for _, want := range []string{
		"Jo Lee",
		"jo@x.com",
		"SaaS",
		"Monday, January 5, 2026",
		"02:30 PM",
		"needs a CRM",
		"Remember to send the Zoom link",
	} {
		if !strings.Contains(mail.HTML, want) {
			t.Fatalf("admin body missing %q:\n%s", want, mail.HTML)
		}
	}
}

func TestAdminNoticeWithZoomLink(t *testing.T) {
	mail, err := AdminNotice(bookingData("https://zoom.us/j/123"))
	if err != nil {
		t.Fatalf("AdminNotice failed: %v", err)
	}
	if !strings.Contains(mail.HTML, "https://zoom.us/j/123") {
		t.Fatalf("admin body missing zoom link:\n%s", mail.HTML)
	}
	if strings.Contains(mail.HTML, "Remember to send the Zoom link") {
		t.Fatal("reminder footer must be absent when a zoom link is set")
	}
}

func TestClientConfirmation(t *testing.T) {
	mail, err := ClientConfirmation(bookingData(""))
	if err != nil {
		t.Fatalf("ClientConfirmation failed: %v", err)
	}
	for _, want := range []string{
		"Jo Lee",
		"Monday, January 5, 2026",
		"02:30 PM",
		"SaaS",
		"link will follow separately",
	} {
		if !strings.Contains(mail.HTML, want) {
			t.Fatalf("client body missing %q:\n%s", want, mail.HTML)
		}
	}
}

func TestClientConfirmationWithZoomLink(t *testing.T) {
	mail, err := ClientConfirmation(bookingData("https://zoom.us/j/123"))
	if err != nil {
		t.Fatalf("ClientConfirmation failed: %v", err)
	}
	if !strings.Contains(mail.HTML, "https://zoom.us/j/123") {
		t.Fatalf("client body missing zoom link:\n%s", mail.HTML)
	}
	if strings.Contains(mail.HTML, "link will follow separately") {
		t.Fatal("placeholder text must be absent when a zoom link is set")
	}
}

func TestPasswordReset(t *testing.T) {
	mail, err := PasswordReset("https://console.example.com/reset?token=abc")
	if err != nil {
		t.Fatalf("PasswordReset failed: %v", err)
	}
	if !strings.Contains(mail.HTML, "https://console.example.com/reset?token=abc") {
		t.Fatalf("reset body missing link:\n%s", mail.HTML)
	}
}
