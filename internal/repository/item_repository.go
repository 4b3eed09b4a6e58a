package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// ItemRepo reads unit prices of hotels, transport options and meal plans.
// The returned maps only contain ids that exist, so a caller detects a
// dangling reference by a missing key.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo returns an ItemRepo bound to the given pool.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

// HotelRentsTx maps hotel id to nightly rent per room.
func (r *ItemRepo) HotelRentsTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]int64, error) {
	return priceMap(ctx, tx, "SELECT id, rent_cents FROM hotels WHERE id IN (%s)", ids)
}

// TransportFaresTx maps transport id to per-seat fare.
func (r *ItemRepo) TransportFaresTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]int64, error) {
	return priceMap(ctx, tx, "SELECT id, fare_cents FROM transport WHERE id IN (%s)", ids)
}

// FoodPricesTx maps food id to price per unit.
func (r *ItemRepo) FoodPricesTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]int64, error) {
	return priceMap(ctx, tx, "SELECT id, price_cents FROM food WHERE id IN (%s)", ids)
}

func priceMap(ctx context.Context, q queryer, query string, ids []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	marks, args := placeholders(ids)
	rows, err := q.QueryContext(ctx, fmt.Sprintf(query, marks), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    uint64
			price int64
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		out[id] = price
	}
	return out, rows.Err()
}
