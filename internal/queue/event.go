// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers notifications.
package queue

// Queue names for the notification fan-out. Both queues are durable and
// carry persistent JSON messages.
const (
	TicketIssuedQueue    = "ticket.issued"
	RefundProcessedQueue = "refund.processed"
)

// TicketIssuedEvent is published after a full ticket bundle is written.
// It carries enough information for downstream consumers to notify the
// customer and alert operations without reading the cache.
type TicketIssuedEvent struct {
	OrderID         string   `json:"order_id"`
	Locators        []string `json:"locators"`
	SeatCount       int      `json:"seat_count"`
	OriginName      string   `json:"origin"`
	DestinationName string   `json:"destination"`
	DepartureDate   string   `json:"departure_date"`
	DepartureTime   string   `json:"departure_time"`
	PassengerName   string   `json:"passenger_name"`
	PassengerPhone  string   `json:"passenger_phone"`
	TotalFare       string   `json:"total_fare"`
	IssuedAt        string   `json:"issued_at"`
}

// RefundProcessedEvent is published whenever a refund reaches a terminal
// or pending-approval state, so operations can follow up on failures and
// approvals out-of-band.
type RefundProcessedEvent struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	Amount         string `json:"amount"`
	SeatsExpected  int    `json:"seats_expected"`
	SeatsIssued    int    `json:"seats_issued"`
	Reason         string `json:"reason"`
	PassengerPhone string `json:"passenger_phone,omitempty"`
	ProcessedAt    string `json:"processed_at"`
}
