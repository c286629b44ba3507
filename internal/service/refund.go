// Package service contains the booking-and-settlement workflow: the
// ticket issuance orchestrator and the pro-rated refund issuer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bernardev/good-trip-api/internal/model"
	"github.com/bernardev/good-trip-api/internal/payment"
	"github.com/bernardev/good-trip-api/internal/queue"
	"github.com/bernardev/good-trip-api/internal/repository"
)

// RefundStore is the slice of the refund record store the issuer needs.
type RefundStore interface {
	Get(ctx context.Context, orderID string) (*model.RefundRecord, error)
	Put(ctx context.Context, orderID string, rec *model.RefundRecord, ttl time.Duration) error
	PutPendingApproval(ctx context.Context, orderID string, rec *model.RefundRecord, ttl time.Duration) error
}

// Processor is the payment-processor operation the refund issuer consumes.
type Processor interface {
	RefundCharge(ctx context.Context, chargeID string, amountCents int64) (payment.Refund, error)
}

// AuditLog records terminal refund outcomes.
type AuditLog interface {
	Record(ctx context.Context, e *model.RefundAudit) error
}

// Notifier publishes fan-out events; implementations must never block the
// caller on delivery guarantees beyond the broker publish itself.
type Notifier interface {
	PublishTicketIssued(ctx context.Context, ev queue.TicketIssuedEvent) error
	PublishRefundProcessed(ctx context.Context, ev queue.RefundProcessedEvent) error
}

// RefundOutcome reports what the refund issuer did for one order.
type RefundOutcome struct {
	Processed bool               // true when the processor accepted the refund
	Status    model.RefundStatus // empty when there was nothing to refund
	Amount    decimal.Decimal
	Message   string
}

// RefundConfig carries the tunables of the refund workflow.
type RefundConfig struct {
	AutoApprovalCeiling decimal.Decimal // refunds above this go to manual approval
	ProcessingTTL       time.Duration   // PROCESSANDO records
	TerminalTTL         time.Duration   // CONCLUIDO / FALHOU records
	ApprovalTTL         time.Duration   // REQUER_APROVACAO records
}

// RefundIssuer computes and executes pro-rated refunds: given how many
// seats of a reservation were actually issued, it refunds the remainder
// against the original charge, at most once per order id.
type RefundIssuer struct {
	cfg          RefundConfig
	reservations ReservationStore
	refunds      RefundStore
	processor    Processor
	audit        AuditLog
	notifier     Notifier
	log          *zap.Logger
}

// NewRefundIssuer wires a RefundIssuer. All dependencies must be non-nil.
func NewRefundIssuer(cfg RefundConfig, reservations ReservationStore, refunds RefundStore, processor Processor, audit AuditLog, notifier Notifier, log *zap.Logger) *RefundIssuer {
	return &RefundIssuer{
		cfg:          cfg,
		reservations: reservations,
		refunds:      refunds,
		processor:    processor,
		audit:        audit,
		notifier:     notifier,
		log:          log,
	}
}

// Refund settles one order: seatsIssued counts the seats that were
// confirmed with the carrier before issuance stopped; the difference to
// the reservation's seat count is refunded pro-rata. The per-seat price
// is total/N, which assumes equal pricing across seats. A refund already
// PROCESSANDO or CONCLUIDO short-circuits without touching the processor.
// The returned error is reserved for infrastructure failures; business
// outcomes (including FALHOU) are reported through RefundOutcome.
func (r *RefundIssuer) Refund(ctx context.Context, orderID string, seatsIssued int, reason string) (RefundOutcome, error) {
	// duplicate guard
	if rec, err := r.refunds.Get(ctx, orderID); err == nil {
		if rec.Status == model.RefundProcessing || rec.Status == model.RefundCompleted {
			return RefundOutcome{
				Processed: rec.Status == model.RefundCompleted,
				Status:    rec.Status,
				Amount:    rec.Amount,
				Message:   "estorno já processado para este pedido",
			}, nil
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return RefundOutcome{}, err
	}

	res, err := r.reservations.Get(ctx, orderID)
	if err != nil {
		return RefundOutcome{}, fmt.Errorf("load reservation %s: %w", orderID, err)
	}
	n := len(res.Seats)
	if n == 0 {
		return RefundOutcome{}, fmt.Errorf("reservation %s has no seats", orderID)
	}

	perSeat := res.Total.Div(decimal.NewFromInt(int64(n)))
	amount := perSeat.Mul(decimal.NewFromInt(int64(n - seatsIssued)))

	now := time.Now().UTC()
	rec := &model.RefundRecord{
		OrderID:       orderID,
		Amount:        amount,
		SeatsExpected: n,
		SeatsIssued:   seatsIssued,
		Reason:        reason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if amount.GreaterThan(res.Total) {
		// internal consistency failure: never call the processor
		rec.Status = model.RefundFailed
		if err := r.refunds.Put(ctx, orderID, rec, r.cfg.TerminalTTL); err != nil {
			r.log.Error("refund record write failed", zap.String("order_id", orderID), zap.Error(err))
		}
		r.log.Error("computed refund exceeds original total",
			zap.String("order_id", orderID),
			zap.String("refund", amount.String()),
			zap.String("total", res.Total.String()))
		r.finish(ctx, res, rec)
		return RefundOutcome{Status: model.RefundFailed, Amount: amount,
			Message: "valor de estorno excede o total do pedido"}, nil
	}

	if !amount.IsPositive() {
		// every seat was issued; nothing to refund and no record is written
		return RefundOutcome{Message: "nada a estornar"}, nil
	}

	if amount.GreaterThan(r.cfg.AutoApprovalCeiling) {
		rec.Status = model.RefundNeedsApproval
		if err := r.refunds.PutPendingApproval(ctx, orderID, rec, r.cfg.ApprovalTTL); err != nil {
			return RefundOutcome{}, err
		}
		r.finish(ctx, res, rec)
		return RefundOutcome{Status: model.RefundNeedsApproval, Amount: amount,
			Message: "estorno acima do limite automático, aguardando aprovação manual"}, nil
	}

	// Mark PROCESSANDO before the processor call so a retried request
	// hitting the duplicate guard cannot trigger a second refund.
	rec.Status = model.RefundProcessing
	if err := r.refunds.Put(ctx, orderID, rec, r.cfg.ProcessingTTL); err != nil {
		return RefundOutcome{}, err
	}

	// Currency stays decimal until this boundary; the processor takes minor units.
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	pr, err := r.processor.RefundCharge(ctx, res.ChargeID, cents)
	rec.UpdatedAt = time.Now().UTC()
	if err != nil {
		rec.Status = model.RefundFailed
		if perr := r.refunds.Put(ctx, orderID, rec, r.cfg.TerminalTTL); perr != nil {
			r.log.Error("refund record write failed", zap.String("order_id", orderID), zap.Error(perr))
		}
		r.log.Error("processor refund failed", zap.String("order_id", orderID), zap.Error(err))
		r.finish(ctx, res, rec)
		return RefundOutcome{Status: model.RefundFailed, Amount: amount, Message: err.Error()}, nil
	}

	rec.Status = model.RefundCompleted
	rec.ProcessorRefundID = pr.ID
	if err := r.refunds.Put(ctx, orderID, rec, r.cfg.TerminalTTL); err != nil {
		r.log.Error("refund record write failed", zap.String("order_id", orderID), zap.Error(err))
	}
	r.finish(ctx, res, rec)
	return RefundOutcome{Processed: true, Status: model.RefundCompleted, Amount: amount,
		Message: "estorno concluído"}, nil
}

// finish writes the audit entry and fires the refund notification. Both
// are best-effort relative to the caller's result: audit failures are
// logged, and the publish runs detached from the request.
func (r *RefundIssuer) finish(ctx context.Context, res *model.Reservation, rec *model.RefundRecord) {
	entry := &model.RefundAudit{
		OrderID:       rec.OrderID,
		OriginalTotal: res.Total,
		SeatsExpected: rec.SeatsExpected,
		SeatsIssued:   rec.SeatsIssued,
		RefundAmount:  rec.Amount,
		Reason:        rec.Reason,
		Outcome:       rec.Status,
	}
	if err := r.audit.Record(ctx, entry); err != nil {
		r.log.Error("refund audit write failed", zap.String("order_id", rec.OrderID), zap.Error(err))
	}

	phone := ""
	if len(res.Passengers) > 0 {
		phone = res.Passengers[0].Phone
	}
	ev := queue.RefundProcessedEvent{
		OrderID:        rec.OrderID,
		Status:         string(rec.Status),
		Amount:         rec.Amount.StringFixed(2),
		SeatsExpected:  rec.SeatsExpected,
		SeatsIssued:    rec.SeatsIssued,
		Reason:         rec.Reason,
		PassengerPhone: phone,
		ProcessedAt:    rec.UpdatedAt.Format(time.RFC3339),
	}
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = r.notifier.PublishRefundProcessed(nctx, ev) // publisher logs its own failures
	}()
}
