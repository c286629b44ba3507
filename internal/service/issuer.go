package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bernardev/good-trip-api/internal/carrier"
	"github.com/bernardev/good-trip-api/internal/model"
	"github.com/bernardev/good-trip-api/internal/queue"
	"github.com/bernardev/good-trip-api/internal/repository"
)

// ReservationStore is the read side of the reservation cache.
type ReservationStore interface {
	Get(ctx context.Context, orderID string) (*model.Reservation, error)
}

// TicketStore persists and reloads issued ticket bundles.
type TicketStore interface {
	Get(ctx context.Context, orderID string) (*model.TicketBundle, error)
	Put(ctx context.Context, orderID string, b *model.TicketBundle, ttl time.Duration) error
}

// Carrier is the slice of the carrier reservation API the orchestrator uses.
type Carrier interface {
	LookupCategories(ctx context.Context, trip model.TripRef) (string, error)
	BlockSeat(ctx context.Context, trip model.TripRef, seat string) (carrier.Block, error)
	ConfirmSale(ctx context.Context, blk carrier.Block, p model.Passenger) (model.IssuedTicket, error)
}

// Refunder settles an order after a partial issuance.
type Refunder interface {
	Refund(ctx context.Context, orderID string, seatsIssued int, reason string) (RefundOutcome, error)
}

// ErrPaymentNotApproved is returned when the reported payment status is
// not one of the accepted approval sentinels. No side effects occur.
var ErrPaymentNotApproved = errors.New("pagamento não aprovado")

// ErrReservationNotFound is returned when no reservation exists (or it
// expired) for the order id.
var ErrReservationNotFound = errors.New("reserva não encontrada")

// SettlementError reports that issuance stopped before all seats were
// confirmed, together with the outcome of the compensating refund.
type SettlementError struct {
	Reason string
	Refund RefundOutcome
}

func (e *SettlementError) Error() string { return e.Reason }

// TicketIssuer converts a paid reservation into a ticket bundle by
// obtaining one confirmed ticket per seat from the carrier, strictly in
// order and one at a time. Any partial failure triggers a compensating
// refund before the error is surfaced; already-confirmed seats are never
// unwound.
type TicketIssuer struct {
	reservations ReservationStore
	tickets      TicketStore
	carrier      Carrier
	refunder     Refunder
	notifier     Notifier
	log          *zap.Logger
	bundleTTL    time.Duration
}

// NewTicketIssuer wires a TicketIssuer. bundleTTL is how long issued
// bundles remain available for re-display and PDF rendering.
func NewTicketIssuer(reservations ReservationStore, tickets TicketStore, car Carrier, refunder Refunder, notifier Notifier, log *zap.Logger, bundleTTL time.Duration) *TicketIssuer {
	return &TicketIssuer{
		reservations: reservations,
		tickets:      tickets,
		carrier:      car,
		refunder:     refunder,
		notifier:     notifier,
		log:          log,
		bundleTTL:    bundleTTL,
	}
}

// paymentApproved reports whether the processor status counts as paid.
func paymentApproved(status string) bool {
	return status == "paid" || status == "approved"
}

// Issue runs the full issuance workflow for one order. A bundle already
// in the cache is returned unchanged with no carrier calls. On a per-seat
// failure the loop stops immediately, the unissued portion is refunded
// and a *SettlementError is returned; on unexpected errors after at least
// one confirmed seat a refund is still attempted before the error
// surfaces.
func (s *TicketIssuer) Issue(ctx context.Context, orderID, paymentStatus string) (*model.TicketBundle, error) {
	if !paymentApproved(paymentStatus) {
		return nil, ErrPaymentNotApproved
	}

	// idempotency by cache hit
	if b, err := s.tickets.Get(ctx, orderID); err == nil {
		return b, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	res, err := s.reservations.Get(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}

	// best-effort: the regulatory id is omitted when the lookup fails
	regID, err := s.carrier.LookupCategories(ctx, res.Trip)
	if err != nil {
		s.log.Warn("categories lookup failed", zap.String("order_id", orderID), zap.Error(err))
		regID = ""
	}

	issued := make([]model.IssuedTicket, 0, len(res.Seats))
	for i, seat := range res.Seats {
		p, ok := res.PassengerForSeat(seat, i)
		if !ok {
			return nil, s.settle(ctx, res, issued,
				fmt.Sprintf("passageiro não encontrado para a poltrona %s", seat))
		}
		blk, err := s.carrier.BlockSeat(ctx, res.Trip, seat)
		if err != nil {
			return nil, s.settle(ctx, res, issued,
				fmt.Sprintf("falha ao bloquear a poltrona %s: %v", seat, err))
		}
		if blk.TransactionID == "" {
			return nil, s.settle(ctx, res, issued,
				fmt.Sprintf("bloqueio da poltrona %s retornou sem referência de transação", seat))
		}
		tkt, err := s.carrier.ConfirmSale(ctx, blk, p)
		if err != nil {
			return nil, s.settle(ctx, res, issued,
				fmt.Sprintf("falha ao confirmar a venda da poltrona %s: %v", seat, err))
		}
		if tkt.Locator == "" {
			return nil, s.settle(ctx, res, issued,
				fmt.Sprintf("confirmação da poltrona %s retornou sem localizador", seat))
		}
		issued = append(issued, tkt)
	}

	var totals model.FareBreakdown
	for _, t := range issued {
		totals = totals.Add(t.Fare)
	}
	bundle := &model.TicketBundle{
		OrderID:      orderID,
		Trip:         res.Trip,
		RegulatoryID: regID,
		Tickets:      issued,
		Totals:       totals,
		IssuedAt:     time.Now().UTC(),
	}
	if err := s.tickets.Put(ctx, orderID, bundle, s.bundleTTL); err != nil {
		// unexpected failure after seats were confirmed: still settle
		if len(issued) > 0 {
			if _, rerr := s.refunder.Refund(ctx, orderID, len(issued), "falha ao gravar os bilhetes emitidos"); rerr != nil {
				s.log.Error("settlement after bundle write failure also failed",
					zap.String("order_id", orderID), zap.Error(rerr))
			}
		}
		return nil, err
	}

	s.notifyIssued(res, bundle)
	return bundle, nil
}

// settle refunds the unissued portion of the order and wraps the outcome
// into the error returned to the caller. The failed seat is never retried
// and the already-confirmed seats stay issued on the carrier side.
func (s *TicketIssuer) settle(ctx context.Context, res *model.Reservation, issued []model.IssuedTicket, reason string) error {
	s.log.Warn("issuance stopped",
		zap.String("order_id", res.OrderID),
		zap.Int("seats_issued", len(issued)),
		zap.Int("seats_expected", len(res.Seats)),
		zap.String("reason", reason))

	out, err := s.refunder.Refund(ctx, res.OrderID, len(issued), reason)
	if err != nil {
		s.log.Error("refund attempt failed", zap.String("order_id", res.OrderID), zap.Error(err))
		return &SettlementError{Reason: reason, Refund: RefundOutcome{Message: err.Error()}}
	}
	return &SettlementError{Reason: reason, Refund: out}
}

// notifyIssued fires the ticket-issued event without blocking the caller.
func (s *TicketIssuer) notifyIssued(res *model.Reservation, b *model.TicketBundle) {
	locators := make([]string, 0, len(b.Tickets))
	for _, t := range b.Tickets {
		locators = append(locators, t.Locator)
	}
	phone, name := "", ""
	if len(res.Passengers) > 0 {
		phone = res.Passengers[0].Phone
		name = res.Passengers[0].Name
	}
	ev := queue.TicketIssuedEvent{
		OrderID:         b.OrderID,
		Locators:        locators,
		SeatCount:       len(b.Tickets),
		OriginName:      b.Trip.OriginName,
		DestinationName: b.Trip.DestinationName,
		DepartureDate:   b.Trip.DepartureDate,
		DepartureTime:   b.Trip.DepartureTime,
		PassengerName:   name,
		PassengerPhone:  phone,
		TotalFare:       b.Totals.Total().StringFixed(2),
		IssuedAt:        b.IssuedAt.Format(time.RFC3339),
	}
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.notifier.PublishTicketIssued(nctx, ev) // publisher logs its own failures
	}()
}
