// Package carrier implements the HTTP client for the carrier reservation
// API: seat lock, sale confirmation and the categories lookup. Credentials
// and endpoints come from injected configuration; nothing is hard-coded.
package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bernardev/good-trip-api/internal/model"
)

// Config holds the connection settings for one carrier tenant.
type Config struct {
	BaseURL   string // e.g. https://api.carrier.example/v1
	TenantID  string // sent as X-Tenant-ID on every request
	AuthToken string // pre-encoded basic-auth token
}

// Client talks to the carrier reservation API. The HTTP client is
// injected so callers control timeouts and tests can point at a fake
// server; no retry policy is applied around individual calls.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a carrier client using the given HTTP client, or
// http.DefaultClient when nil.
func NewClient(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{cfg: cfg, http: hc}
}

// Block is the carrier's answer to a seat lock: a short-lived transaction
// reference plus the operation number and locator needed to confirm the
// sale. TransactionID may come back empty when the carrier rejected the
// lock without an HTTP error; callers must treat that as a failure.
type Block struct {
	TransactionID   string `json:"transacao"`
	OperationNumber string `json:"numeroOperacao"`
	Locator         string `json:"localizador"`
	Seat            string `json:"poltrona"`
}

type apiError struct {
	Message string `json:"mensagem"`
}

// LookupCategories queries the categories endpoint for the trip and
// returns the regulatory-authority identifier, when the carrier reports
// one. Callers treat failures as non-fatal.
func (c *Client) LookupCategories(ctx context.Context, trip model.TripRef) (string, error) {
	req := map[string]any{
		"origemId":  trip.OriginID,
		"destinoId": trip.DestinationID,
		"data":      trip.DepartureDate,
		"servico":   trip.ServiceID,
	}
	var resp struct {
		RegulatoryID string `json:"orgaoRegulador"`
	}
	if err := c.post(ctx, "/categorias", req, &resp); err != nil {
		return "", err
	}
	return resp.RegulatoryID, nil
}

// BlockSeat provisionally reserves one seat on the trip.
func (c *Client) BlockSeat(ctx context.Context, trip model.TripRef, seat string) (Block, error) {
	req := map[string]any{
		"origemId":  trip.OriginID,
		"destinoId": trip.DestinationID,
		"data":      trip.DepartureDate,
		"servico":   trip.ServiceID,
		"poltrona":  seat,
	}
	var blk Block
	if err := c.post(ctx, "/bloqueioPoltrona", req, &blk); err != nil {
		return Block{}, err
	}
	if blk.Seat == "" {
		blk.Seat = seat
	}
	return blk, nil
}

type confirmResponse struct {
	Locator      string          `json:"localizador"`
	TicketNumber string          `json:"numeroBilhete"`
	Seat         string          `json:"poltrona"`
	Fare         decimal.Decimal `json:"tarifa"`
	Toll         decimal.Decimal `json:"pedagio"`
	BoardingTax  decimal.Decimal `json:"taxaEmbarque"`
	Insurance    decimal.Decimal `json:"seguro"`
	Other        decimal.Decimal `json:"outros"`
}

// ConfirmSale finalises a previously locked seat into an issued ticket
// for the given passenger. The returned ticket carries the carrier's
// locator, ticket number and fare breakdown; an empty locator means the
// carrier did not complete the sale.
func (c *Client) ConfirmSale(ctx context.Context, blk Block, p model.Passenger) (model.IssuedTicket, error) {
	req := map[string]any{
		"transacao":      blk.TransactionID,
		"numeroOperacao": blk.OperationNumber,
		"localizador":    blk.Locator,
		"nome":           p.Name,
		"documento":      p.DocumentNumber,
		"tipoDocumento":  p.DocumentType,
		"nacionalidade":  p.Nationality,
		"telefone":       p.Phone,
		"email":          p.Email,
	}
	var resp confirmResponse
	if err := c.post(ctx, "/confirmaVenda", req, &resp); err != nil {
		return model.IssuedTicket{}, err
	}
	seat := resp.Seat
	if seat == "" {
		seat = blk.Seat
	}
	return model.IssuedTicket{
		Locator:      resp.Locator,
		TicketNumber: resp.TicketNumber,
		Seat:         seat,
		Passenger:    p,
		Fare: model.FareBreakdown{
			Fare:        resp.Fare,
			Toll:        resp.Toll,
			BoardingTax: resp.BoardingTax,
			Insurance:   resp.Insurance,
			Other:       resp.Other,
		},
	}, nil
}

// post sends a JSON request to the carrier and decodes the JSON response
// into out. Non-2xx responses are turned into an error carrying the
// carrier's message when one is present in the body.
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
	req.Header.Set("Authorization", "Basic "+c.cfg.AuthToken)
	req.Header.Set("X-Tenant-ID", c.cfg.TenantID)

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
			return fmt.Errorf("carrier %s: %s", path, e.Message)
		}
		return fmt.Errorf("carrier %s: status %d", path, resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}
