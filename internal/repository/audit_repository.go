package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/bernardev/good-trip-api/internal/model"
)

// AuditRepo appends refund audit entries to MySQL. Unlike the cache
// stores, audit rows are append-only and never expire: every terminal
// refund outcome leaves exactly one row behind.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Record inserts one audit row. The entry's ID and RecordedAt are filled
// in when empty so callers only describe the outcome.
func (r *AuditRepo) Record(ctx context.Context, e *model.RefundAudit) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	const q = `INSERT INTO refund_audit
		(id, order_id, original_total, seats_expected, seats_issued, refund_amount, reason, outcome, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.OrderID, e.OriginalTotal.String(), e.SeatsExpected, e.SeatsIssued,
		e.RefundAmount.String(), e.Reason, string(e.Outcome), e.RecordedAt)
	return err
}
