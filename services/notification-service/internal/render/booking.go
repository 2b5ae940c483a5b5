package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// BookingData carries everything the booking templates show.
type BookingData struct {
	ClientName    string
	ClientEmail   string
	ProjectType   string
	ScheduledTime time.Time
	Notes         string
	ZoomLink      string
}

type Email struct {
	Subject string
	HTML    string
}

type bookingView struct {
	BookingData
	DateLong  string
	TimeClock string
}

func viewOf(data BookingData) bookingView {
	return bookingView{
		BookingData: data,
		DateLong:    data.ScheduledTime.Format("Monday, January 2, 2006"),
		TimeClock:   data.ScheduledTime.Format("03:04 PM"),
	}
}

var adminNoticeTmpl = template.Must(template.New("admin-notice").Parse(`<h2>New Booking Request</h2>
<table cellpadding="6" style="border-collapse:collapse">
  <tr><td><strong>Name</strong></td><td>{{.ClientName}}</td></tr>
  <tr><td><strong>Email</strong></td><td><a href="mailto:{{.ClientEmail}}">{{.ClientEmail}}</a></td></tr>
  <tr><td><strong>Project Type</strong></td><td>{{.ProjectType}}</td></tr>
  <tr><td><strong>Date</strong></td><td>{{.DateLong}}</td></tr>
  <tr><td><strong>Time</strong></td><td>{{.TimeClock}}</td></tr>
{{- if .Notes}}
  <tr><td><strong>Notes</strong></td><td>{{.Notes}}</td></tr>
{{- end}}
{{- if .ZoomLink}}
  <tr><td><strong>Zoom Link</strong></td><td><a href="{{.ZoomLink}}">{{.ZoomLink}}</a></td></tr>
{{- end}}
</table>
{{- if not .ZoomLink}}
<p>Remember to send the Zoom link to <a href="mailto:{{.ClientEmail}}">{{.ClientEmail}}</a>.</p>
{{- end}}
`))

var clientConfirmationTmpl = template.Must(template.New("client-confirmation").Parse(`<h2>Thanks for booking, {{.ClientName}}!</h2>
<p>Your consultation is scheduled for <strong>{{.DateLong}}</strong> at <strong>{{.TimeClock}}</strong>.</p>
<p>Project type: <strong>{{.ProjectType}}</strong></p>
{{- if .ZoomLink}}
<p>Join here: <a href="{{.ZoomLink}}">{{.ZoomLink}}</a></p>
{{- else}}
<p>A meeting link will follow separately before your appointment.</p>
{{- end}}
<p>If you need to reschedule, just reply to this email.</p>
`))

var passwordResetTmpl = template.Must(template.New("password-reset").Parse(`<h2>Reset your password</h2>
<p>A password reset was requested for this account. The link below is valid for one hour.</p>
<p><a href="{{.ResetLink}}">{{.ResetLink}}</a></p>
<p>If you did not request this, you can ignore this email.</p>
`))

// AdminNotice renders the operator-facing message for a fresh or re-sent
// booking.
func AdminNotice(data BookingData) (Email, error) {
	var buf bytes.Buffer
	if err := adminNoticeTmpl.Execute(&buf, viewOf(data)); err != nil {
		return Email{}, err
	}
	return Email{
		Subject: fmt.Sprintf("New Booking: %s - %s", data.ClientName, data.ProjectType),
		HTML:    buf.String(),
	}, nil
}

// ClientConfirmation renders the message sent to the booking client.
func ClientConfirmation(data BookingData) (Email, error) {
	var buf bytes.Buffer
	if err := clientConfirmationTmpl.Execute(&buf, viewOf(data)); err != nil {
		return Email{}, err
	}
	return Email{
		Subject: "Your consultation is booked",
		HTML:    buf.String(),
	}, nil
}

func PasswordReset(resetLink string) (Email, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, struct{ ResetLink string }{resetLink}); err != nil {
		return Email{}, err
	}
	return Email{
		Subject: "Password reset request",
		HTML:    buf.String(),
	}, nil
}
