package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bernardev/good-trip-api/internal/model"
)

const ticketKeyPrefix = "bilhetes:"

// TicketStore persists issued ticket bundles keyed by order id. A bundle
// is written exactly once on successful issuance and treated as immutable
// afterwards; readers (re-display, PDF rendering) never modify it and
// expiry is left to the TTL.
type TicketStore struct {
	rdb *redis.Client
}

// NewTicketStore returns a TicketStore bound to the given Redis client.
func NewTicketStore(rdb *redis.Client) *TicketStore {
	return &TicketStore{rdb: rdb}
}

// Put stores the bundle under its order id with the given TTL.
func (s *TicketStore) Put(ctx context.Context, orderID string, b *model.TicketBundle, ttl time.Duration) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, ticketKeyPrefix+orderID, raw, ttl).Err()
}

// Get loads the bundle for the given order id, or ErrNotFound.
func (s *TicketStore) Get(ctx context.Context, orderID string) (*model.TicketBundle, error) {
	raw, err := s.rdb.Get(ctx, ticketKeyPrefix+orderID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var b model.TicketBundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
