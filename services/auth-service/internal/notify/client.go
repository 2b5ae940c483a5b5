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

// Client asks the notification service to deliver a password reset email.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
}

func (c *Client) SendPasswordReset(ctx context.Context, email string, resetLink string) error {
	if c.baseURL == "" {
		return errors.New("notification service url not configured")
	}
	raw, err := json.Marshal(map[string]string{
		"email":      email,
		"reset_link": resetLink,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/notifications/password-reset", bytes.NewReader(raw))
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
		return fmt.Errorf("notification service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		if body.Error != "" {
			return errors.New(body.Error)
		}
		return fmt.Errorf("notification service returned %d", resp.StatusCode)
	}
	return nil
}
