package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bernardev/good-trip-api/internal/carrier"
	"github.com/bernardev/good-trip-api/internal/model"
	"github.com/bernardev/good-trip-api/internal/payment"
	"github.com/bernardev/good-trip-api/internal/queue"
	"github.com/bernardev/good-trip-api/internal/repository"
)

// In-memory doubles for the workflow's collaborators. They implement the
// consumer-side interfaces defined in this package.

type memReservations struct {
	m map[string]*model.Reservation
}

func (s *memReservations) Get(_ context.Context, orderID string) (*model.Reservation, error) {
	if r, ok := s.m[orderID]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

type memTickets struct {
	m       map[string]*model.TicketBundle
	lastTTL time.Duration
	puts    int
	putErr  error
}

func (s *memTickets) Get(_ context.Context, orderID string) (*model.TicketBundle, error) {
	if b, ok := s.m[orderID]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memTickets) Put(_ context.Context, orderID string, b *model.TicketBundle, ttl time.Duration) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	if s.m == nil {
		s.m = map[string]*model.TicketBundle{}
	}
	s.m[orderID] = b
	s.lastTTL = ttl
	return nil
}

type memRefunds struct {
	recs      map[string]*model.RefundRecord
	approvals map[string]*model.RefundRecord
}

func newMemRefunds() *memRefunds {
	return &memRefunds{
		recs:      map[string]*model.RefundRecord{},
		approvals: map[string]*model.RefundRecord{},
	}
}

func (s *memRefunds) Get(_ context.Context, orderID string) (*model.RefundRecord, error) {
	if r, ok := s.recs[orderID]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memRefunds) Put(_ context.Context, orderID string, rec *model.RefundRecord, _ time.Duration) error {
	cp := *rec
	s.recs[orderID] = &cp
	return nil
}

func (s *memRefunds) PutPendingApproval(_ context.Context, orderID string, rec *model.RefundRecord, _ time.Duration) error {
	cp := *rec
	s.approvals[orderID] = &cp
	return nil
}

// mockCarrier scripts per-seat failures and records every call in order.
type mockCarrier struct {
	categoriesID  string
	categoriesErr error

	blockErrSeat   string // BlockSeat fails for this seat label
	emptyTxSeat    string // BlockSeat succeeds but returns no transaction ref
	confirmErrSeat string // ConfirmSale fails for this seat label
	noLocatorSeat  string // ConfirmSale succeeds but returns no locator

	blockCalls   []string
	confirmCalls []string
	confirmedFor []model.Passenger
}

func (c *mockCarrier) LookupCategories(context.Context, model.TripRef) (string, error) {
	if c.categoriesErr != nil {
		return "", c.categoriesErr
	}
	return c.categoriesID, nil
}

func (c *mockCarrier) BlockSeat(_ context.Context, _ model.TripRef, seat string) (carrier.Block, error) {
	c.blockCalls = append(c.blockCalls, seat)
	if seat == c.blockErrSeat {
		return carrier.Block{}, fmt.Errorf("carrier: poltrona %s indisponível", seat)
	}
	blk := carrier.Block{
		TransactionID:   "tx-" + seat,
		OperationNumber: "op-" + seat,
		Locator:         "LOC" + seat,
		Seat:            seat,
	}
	if seat == c.emptyTxSeat {
		blk.TransactionID = ""
	}
	return blk, nil
}

func (c *mockCarrier) ConfirmSale(_ context.Context, blk carrier.Block, p model.Passenger) (model.IssuedTicket, error) {
	c.confirmCalls = append(c.confirmCalls, blk.Seat)
	c.confirmedFor = append(c.confirmedFor, p)
	if blk.Seat == c.confirmErrSeat {
		return model.IssuedTicket{}, fmt.Errorf("carrier: venda recusada para %s", blk.Seat)
	}
	tkt := model.IssuedTicket{
		Locator:      blk.Locator,
		TicketNumber: "BLH-" + blk.Seat,
		Seat:         blk.Seat,
		Passenger:    p,
		Fare: model.FareBreakdown{
			Fare:        decimal.NewFromFloat(80),
			Toll:        decimal.NewFromFloat(5),
			BoardingTax: decimal.NewFromFloat(3),
			Insurance:   decimal.NewFromFloat(2),
			Other:       decimal.NewFromFloat(1),
		},
	}
	if blk.Seat == c.noLocatorSeat {
		tkt.Locator = ""
	}
	return tkt, nil
}

type refundCall struct {
	chargeID string
	cents    int64
}

type mockProcessor struct {
	calls []refundCall
	err   error
}

func (p *mockProcessor) RefundCharge(_ context.Context, chargeID string, amountCents int64) (payment.Refund, error) {
	p.calls = append(p.calls, refundCall{chargeID: chargeID, cents: amountCents})
	if p.err != nil {
		return payment.Refund{}, p.err
	}
	return payment.Refund{ID: "ref-1", AmountCents: amountCents, Status: "refunded", CreatedAt: time.Now().UTC()}, nil
}

type mockAudit struct {
	mu      sync.Mutex
	entries []*model.RefundAudit
}

func (a *mockAudit) Record(_ context.Context, e *model.RefundAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

// mockNotifier tolerates the detached publish goroutines.
type mockNotifier struct {
	mu      sync.Mutex
	issued  []queue.TicketIssuedEvent
	refunds []queue.RefundProcessedEvent
}

func (n *mockNotifier) PublishTicketIssued(_ context.Context, ev queue.TicketIssuedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.issued = append(n.issued, ev)
	return nil
}

func (n *mockNotifier) PublishRefundProcessed(_ context.Context, ev queue.RefundProcessedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refunds = append(n.refunds, ev)
	return nil
}

// mockRefunder records settlement requests made by the orchestrator.
type mockRefunder struct {
	calls   []int // seatsIssued per call
	reasons []string
	outcome RefundOutcome
	err     error
}

func (r *mockRefunder) Refund(_ context.Context, _ string, seatsIssued int, reason string) (RefundOutcome, error) {
	r.calls = append(r.calls, seatsIssued)
	r.reasons = append(r.reasons, reason)
	if r.err != nil {
		return RefundOutcome{}, r.err
	}
	return r.outcome, nil
}

// makeReservation builds an N-seat reservation with matching passengers.
func makeReservation(orderID, total string, seats ...string) *model.Reservation {
	t, _ := decimal.NewFromString(total)
	passengers := make([]model.Passenger, 0, len(seats))
	for i, s := range seats {
		passengers = append(passengers, model.Passenger{
			Name:           fmt.Sprintf("Passageiro %d", i+1),
			DocumentType:   "RG",
			DocumentNumber: fmt.Sprintf("10020030%d", i),
			Nationality:    "BRASILEIRA",
			Phone:          "+5511999990000",
			Seat:           s,
		})
	}
	return &model.Reservation{
		OrderID:    orderID,
		Trip:       model.TripRef{ServiceID: "1234", OriginID: 10, DestinationID: 20, OriginName: "São Paulo", DestinationName: "Curitiba", DepartureDate: "2026-09-10", DepartureTime: "22:30"},
		Seats:      seats,
		Passengers: passengers,
		Total:      t,
		ChargeID:   "ch_" + orderID,
		CreatedAt:  time.Now().UTC(),
	}
}
