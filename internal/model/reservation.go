// Package model defines the domain types exchanged between the booking
// workflow, the cache stores and the external carrier/processor clients.
// Wire-facing field names follow the platform's Portuguese JSON contract;
// Go identifiers stay in English.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripRef identifies one scheduled departure on the carrier side. The
// numeric origin/destination ids and the service id are the values the
// carrier reservation API expects; the names are kept for display and
// notification purposes only.
type TripRef struct {
	ServiceID       string `json:"servico"`
	OriginID        int    `json:"origemId"`
	DestinationID   int    `json:"destinoId"`
	OriginName      string `json:"origem"`
	DestinationName string `json:"destino"`
	DepartureDate   string `json:"data"`  // YYYY-MM-DD
	DepartureTime   string `json:"saida"` // HH:MM, informational
	CarrierName     string `json:"empresa,omitempty"`
	ServiceClass    string `json:"classe,omitempty"`
	Platform        string `json:"plataforma,omitempty"`
}

// Passenger holds the identification data the carrier requires to confirm
// a sale. Seat carries the seat label this passenger was assigned during
// checkout; it may be empty, in which case the issuance loop falls back to
// pairing passengers with seats by position.
type Passenger struct {
	Name           string `json:"nome"`
	DocumentType   string `json:"tipoDocumento"`
	DocumentNumber string `json:"documento"`
	Nationality    string `json:"nacionalidade"`
	Phone          string `json:"telefone"`
	Email          string `json:"email,omitempty"`
	Seat           string `json:"poltrona,omitempty"`
}

// Reservation is the pending booking payload cached when a payment attempt
// begins, keyed by the processor-assigned order id. Total is the price for
// the whole order (all seats), in decimal currency units. ChargeID is the
// processor charge reference attached once the charge is created; it is the
// only field ever updated after creation.
type Reservation struct {
	OrderID    string          `json:"orderId"`
	Trip       TripRef         `json:"viagem"`
	Seats      []string        `json:"poltronas"`
	Passengers []Passenger     `json:"passageiros"`
	Total      decimal.Decimal `json:"valorTotal"`
	ChargeID   string          `json:"chargeId,omitempty"`
	CreatedAt  time.Time       `json:"criadoEm"`
}

// PassengerForSeat resolves which passenger travels on the given seat
// label. Exact label match wins; otherwise the passenger at the same
// positional index as the seat is used. The boolean is false when neither
// strategy yields a passenger (mismatched passenger/seat lists).
func (r *Reservation) PassengerForSeat(seat string, idx int) (Passenger, bool) {
	for _, p := range r.Passengers {
		if p.Seat != "" && p.Seat == seat {
			return p, true
		}
	}
	if idx >= 0 && idx < len(r.Passengers) {
		return r.Passengers[idx], true
	}
	return Passenger{}, false
}
