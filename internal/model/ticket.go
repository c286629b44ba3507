package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FareBreakdown is the per-ticket price split returned by the carrier when
// a sale is confirmed: base fare, road toll, boarding tax, mandatory
// insurance and anything else the carrier lumps under "outros".
type FareBreakdown struct {
	Fare        decimal.Decimal `json:"tarifa"`
	Toll        decimal.Decimal `json:"pedagio"`
	BoardingTax decimal.Decimal `json:"taxaEmbarque"`
	Insurance   decimal.Decimal `json:"seguro"`
	Other       decimal.Decimal `json:"outros"`
}

// Add returns the field-wise sum of two breakdowns.
func (f FareBreakdown) Add(o FareBreakdown) FareBreakdown {
	return FareBreakdown{
		Fare:        f.Fare.Add(o.Fare),
		Toll:        f.Toll.Add(o.Toll),
		BoardingTax: f.BoardingTax.Add(o.BoardingTax),
		Insurance:   f.Insurance.Add(o.Insurance),
		Other:       f.Other.Add(o.Other),
	}
}

// Total returns the sum of all fare components.
func (f FareBreakdown) Total() decimal.Decimal {
	return f.Fare.Add(f.Toll).Add(f.BoardingTax).Add(f.Insurance).Add(f.Other)
}

// IssuedTicket is one confirmed seat: the carrier locator and ticket
// number, the seat label, the passenger snapshot and the carrier-reported
// fare split for this seat.
type IssuedTicket struct {
	Locator      string        `json:"localizador"`
	TicketNumber string        `json:"numeroBilhete"`
	Seat         string        `json:"poltrona"`
	Passenger    Passenger     `json:"passageiro"`
	Fare         FareBreakdown `json:"valores"`
}

// TicketBundle is the persisted, authoritative record of every ticket
// issued for one order. Once written it is never mutated; the issuance
// workflow short-circuits on its presence and the PDF/viewer endpoints
// read it as-is. Totals is the field-wise sum of each ticket's fare
// breakdown, not the reservation's administrative-fee-inclusive price.
type TicketBundle struct {
	OrderID      string         `json:"orderId"`
	Trip         TripRef        `json:"viagem"`
	RegulatoryID string         `json:"orgaoRegulador,omitempty"`
	Tickets      []IssuedTicket `json:"bilhetes"`
	Totals       FareBreakdown  `json:"totais"`
	IssuedAt     time.Time      `json:"emitidoEm"`
}
