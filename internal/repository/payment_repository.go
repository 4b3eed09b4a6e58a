package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
)

// PaymentRepo persists payments.  A booking has at most one payment; the
// UNIQUE key on booking_id enforces that even when two requests race.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the given pool.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// DB exposes the underlying pool.
func (r *PaymentRepo) DB() *sql.DB { return r.db }

const paymentColumns = `id, booking_id, amount_cents, method, status, transaction_id, created_at, updated_at`

func scanPayment(s rowScanner) (*model.Payment, error) {
	var (
		p      model.Payment
		method string
		status string
		txn    sql.NullString
	)
	if err := s.Scan(&p.ID, &p.BookingID, &p.AmountCents, &method, &status, &txn, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Method = model.PaymentMethod(method)
	p.Status = model.PaymentStatus(status)
	if txn.Valid {
		t := txn.String
		p.TransactionID = &t
	}
	return &p, nil
}

// CreateTx inserts a payment row.  A second payment for the same booking
// violates UNIQUE(booking_id) and is reported as ErrConflict.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (` + paymentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		p.ID, p.BookingID, p.AmountCents, string(p.Method), string(p.Status), p.TransactionID, p.CreatedAt, p.UpdatedAt)
	if IsDuplicateKey(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// GetByBookingIDForUpdateTx returns the booking's payment with its row
// locked, or (nil, nil) when the booking has no payment yet.
func (r *PaymentRepo) GetByBookingIDForUpdateTx(ctx context.Context, tx *sql.Tx, bookingID string) (*model.Payment, error) {
	p, err := scanPayment(tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE booking_id = ? FOR UPDATE`, bookingID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// BookingIDOfTx returns the booking a payment belongs to without taking a
// lock.  Callers use it to lock the booking before the payment, the order
// every transition follows.
func (r *PaymentRepo) BookingIDOfTx(ctx context.Context, tx *sql.Tx, paymentID string) (string, error) {
	var bookingID string
	err := tx.QueryRowContext(ctx, `SELECT booking_id FROM payments WHERE id = ?`, paymentID).Scan(&bookingID)
	return bookingID, err
}

// GetForUpdateTx loads a payment by id and locks it.  Returns
// sql.ErrNoRows when absent.
func (r *PaymentRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Payment, error) {
	return scanPayment(tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ? FOR UPDATE`, id))
}

// UpdateStatusTx sets the payment status.  A non-nil transactionID
// replaces the stored reference; nil keeps it.
func (r *PaymentRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id string, status model.PaymentStatus, transactionID *string, at time.Time) error {
	const q = `UPDATE payments SET status = ?, transaction_id = COALESCE(?, transaction_id), updated_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(status), transactionID, at, id)
	return err
}

// GetByBookingID returns the booking's payment, or sql.ErrNoRows.
func (r *PaymentRepo) GetByBookingID(ctx context.Context, bookingID string) (*model.Payment, error) {
	return scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE booking_id = ?`, bookingID))
}

// ListAll returns every payment, newest first.
func (r *PaymentRepo) ListAll(ctx context.Context) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// OwnerOf returns the customer owning the booking the payment settles.
func (r *PaymentRepo) OwnerOf(ctx context.Context, paymentID string) (uint64, error) {
	var customerID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT b.customer_id FROM payments p JOIN bookings b ON b.id = p.booking_id WHERE p.id = ?`,
		paymentID).Scan(&customerID)
	return customerID, err
}
