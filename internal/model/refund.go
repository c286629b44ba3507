package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundStatus is the lifecycle state of one order's refund. Transitions
// are one-directional: (none) -> PROCESSANDO -> CONCLUIDO or FALHOU, with
// REQUER_APROVACAO as a separate terminal side-branch that only manual
// intervention can continue.
type RefundStatus string

const (
	RefundProcessing    RefundStatus = "PROCESSANDO"
	RefundCompleted     RefundStatus = "CONCLUIDO"
	RefundFailed        RefundStatus = "FALHOU"
	RefundNeedsApproval RefundStatus = "REQUER_APROVACAO"
)

// RefundRecord tracks the refund computed for one order id. SeatsExpected
// is the number of seats the reservation held; SeatsIssued how many were
// actually confirmed before the issuance loop stopped. At most one record
// per order id ever reaches CONCLUIDO.
type RefundRecord struct {
	OrderID           string          `json:"orderId"`
	Status            RefundStatus    `json:"status"`
	Amount            decimal.Decimal `json:"valorEstorno"`
	SeatsExpected     int             `json:"poltronasEsperadas"`
	SeatsIssued       int             `json:"poltronasEmitidas"`
	Reason            string          `json:"motivo"`
	ProcessorRefundID string          `json:"idEstornoProcessadora,omitempty"`
	CreatedAt         time.Time       `json:"criadoEm"`
	UpdatedAt         time.Time       `json:"atualizadoEm"`
}

// RefundAudit is one audit-trail entry, written on every terminal refund
// outcome regardless of success or failure.
type RefundAudit struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	OriginalTotal decimal.Decimal `json:"valorOriginal"`
	SeatsExpected int             `json:"poltronasEsperadas"`
	SeatsIssued   int             `json:"poltronasEmitidas"`
	RefundAmount  decimal.Decimal `json:"valorEstorno"`
	Reason        string          `json:"motivo"`
	Outcome       RefundStatus    `json:"resultado"`
	RecordedAt    time.Time       `json:"registradoEm"`
}
