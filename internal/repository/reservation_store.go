package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bernardev/good-trip-api/internal/model"
)

const reservationKeyPrefix = "reserva:"

// ReservationStore persists pending booking payloads keyed by the
// processor-assigned order id. Entries are written once when a payment
// attempt begins and read back by the issuance workflow; there is no
// locking because each order id has exactly one writer.
type ReservationStore struct {
	rdb *redis.Client
}

// NewReservationStore returns a ReservationStore bound to the given Redis client.
func NewReservationStore(rdb *redis.Client) *ReservationStore {
	return &ReservationStore{rdb: rdb}
}

// Put stores the reservation under its order id with the given TTL.
func (s *ReservationStore) Put(ctx context.Context, orderID string, res *model.Reservation, ttl time.Duration) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, reservationKeyPrefix+orderID, b, ttl).Err()
}

// Get loads the reservation for the given order id. ErrNotFound is
// returned when the key is absent or expired.
func (s *ReservationStore) Get(ctx context.Context, orderID string) (*model.Reservation, error) {
	b, err := s.rdb.Get(ctx, reservationKeyPrefix+orderID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var res model.Reservation
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
