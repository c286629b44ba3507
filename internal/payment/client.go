// Package payment implements the HTTP client for the payment processor:
// order/charge creation (credit card or PIX) and refund-by-charge-id.
// Amounts cross this boundary in minor currency units (centavos); all
// arithmetic upstream stays in decimal units.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the processor connection settings.
type Config struct {
	BaseURL   string
	SecretKey string // used as the basic-auth username, empty password
}

// Client talks to the payment processor API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a processor client using the given HTTP client, or
// http.DefaultClient when nil.
func NewClient(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{cfg: cfg, http: hc}
}

// CardDetails carries the credit card fields forwarded to the processor.
// They are never cached or logged by this service.
type CardDetails struct {
	Number   string `json:"number"`
	Holder   string `json:"holder_name"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	CVV      string `json:"cvv"`
}

// OrderRequest describes one purchase attempt.
type OrderRequest struct {
	Method           string // "credit_card" or "pix"
	AmountCents      int64
	Description      string
	CustomerName     string
	CustomerDocument string
	CustomerEmail    string
	CustomerPhone    string
	Card             *CardDetails // required for credit_card
}

// Order is the processor's answer to an order creation. ID becomes the
// order id that keys the whole booking workflow; ChargeID is the charge
// reference refunds are issued against. PIX orders carry the copy-paste
// QR payload and its expiry.
type Order struct {
	ID           string `json:"id"`
	ChargeID     string `json:"charge_id"`
	Status       string `json:"status"`
	PixQRCode    string `json:"pix_qr_code,omitempty"`
	PixExpiresAt string `json:"pix_expires_at,omitempty"`
}

// Refund is the processor's answer to a refund call.
type Refund struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type apiError struct {
	Message string `json:"message"`
}

// CreateOrder creates an order plus its charge on the processor.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	body := map[string]any{
		"amount":      req.AmountCents,
		"description": req.Description,
		"payment_method": map[string]any{
			"type": req.Method,
		},
		"customer": map[string]any{
			"name":     req.CustomerName,
			"document": req.CustomerDocument,
			"email":    req.CustomerEmail,
			"phone":    req.CustomerPhone,
		},
	}
	if req.Card != nil {
		body["payment_method"].(map[string]any)["card"] = req.Card
	}
	var ord Order
	if err := c.post(ctx, "/orders", body, &ord); err != nil {
		return Order{}, err
	}
	return ord, nil
}

// RefundCharge refunds part or all of a charge. The amount is in minor
// units and the call is issued at most once per order by the refund
// workflow; the processor's refund-transaction id comes back in the
// result.
func (c *Client) RefundCharge(ctx context.Context, chargeID string, amountCents int64) (Refund, error) {
	body := map[string]any{"amount": amountCents}
	var ref Refund
	if err := c.post(ctx, "/charges/"+chargeID+"/refund", body, &ref); err != nil {
		return Refund{}, err
	}
	if ref.ID == "" {
		return Refund{}, fmt.Errorf("processor refund: malformed response for charge %s", chargeID)
	}
	return ref, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.SecretKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e apiError
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			return fmt.Errorf("processor %s: %s", path, e.Message)
		}
		return fmt.Errorf("processor %s: status %d", path, resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}
