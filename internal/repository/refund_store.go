package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bernardev/good-trip-api/internal/model"
)

const (
	refundKeyPrefix   = "estorno:"
	approvalKeyPrefix = "estorno:aprovacao:"
)

// RefundStore persists the refund record for each order id, plus a
// separate pending-approval record for refunds above the auto-approval
// ceiling. The refund issuer reads the record before writing to guard
// against duplicate processor calls; no conditional-write primitive is
// used, matching the single-writer assumption of the workflow.
type RefundStore struct {
	rdb *redis.Client
}

// NewRefundStore returns a RefundStore bound to the given Redis client.
func NewRefundStore(rdb *redis.Client) *RefundStore {
	return &RefundStore{rdb: rdb}
}

// Put writes the refund record under its order id with the given TTL,
// replacing any previous state.
func (s *RefundStore) Put(ctx context.Context, orderID string, rec *model.RefundRecord, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, refundKeyPrefix+orderID, b, ttl).Err()
}

// Get loads the refund record for the given order id, or ErrNotFound.
func (s *RefundStore) Get(ctx context.Context, orderID string) (*model.RefundRecord, error) {
	b, err := s.rdb.Get(ctx, refundKeyPrefix+orderID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec model.RefundRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// PutPendingApproval stores a REQUER_APROVACAO record under the separate
// approval keyspace so pending requests can be listed by the admin surface.
func (s *RefundStore) PutPendingApproval(ctx context.Context, orderID string, rec *model.RefundRecord, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, approvalKeyPrefix+orderID, b, ttl).Err()
}

// ListPendingApprovals scans the approval keyspace and returns every
// refund still waiting for manual sign-off. Entries that fail to decode
// are skipped rather than failing the whole listing.
func (s *RefundStore) ListPendingApprovals(ctx context.Context) ([]model.RefundRecord, error) {
	var out []model.RefundRecord
	iter := s.rdb.Scan(ctx, 0, approvalKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		b, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // expired between scan and read
		}
		if err != nil {
			return nil, err
		}
		var rec model.RefundRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
