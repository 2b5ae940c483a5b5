// Package notify is the booking-service side of the notification entrypoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// BookingNotification is the request body of the notification entrypoint.
type BookingNotification struct {
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	ProjectType   string `json:"project_type"`
	ScheduledTime string `json:"scheduled_time"`
	Notes         string `json:"notes"`
	ZoomLink      string `json:"zoom_link,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SendBooking asks the notification service to render and send both booking
// emails. There is no retry; the caller decides what a failure means.
func (c *Client) SendBooking(ctx context.Context, n BookingNotification) error {
	if c.baseURL == "" {
		return errors.New("notification service url not configured")
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/notifications/booking", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("notification service returned %d", resp.StatusCode)
		}
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !body.Success {
		if body.Error != "" {
			return errors.New(body.Error)
		}
		return fmt.Errorf("notification service returned %d", resp.StatusCode)
	}
	return nil
}
