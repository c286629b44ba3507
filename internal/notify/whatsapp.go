// Package notify contains the WhatsApp delivery client used by the
// notification consumer. Delivery is best-effort: failures are reported
// to the caller for logging and never reach the booking workflow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WhatsAppConfig holds the gateway endpoint and its access token.
type WhatsAppConfig struct {
	BaseURL string
	Token   string
}

// WhatsAppClient sends text messages through the WhatsApp gateway.
type WhatsAppClient struct {
	cfg  WhatsAppConfig
	http *http.Client
}

// NewWhatsAppClient returns a client using the given HTTP client, or
// http.DefaultClient when nil.
func NewWhatsAppClient(cfg WhatsAppConfig, hc *http.Client) *WhatsAppClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &WhatsAppClient{cfg: cfg, http: hc}
}

// SendMessage delivers one text message to the given phone number.
func (c *WhatsAppClient) SendMessage(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp send: status %d: %s", resp.StatusCode, string(data))
	}
	return nil
}
