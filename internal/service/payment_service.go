package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/pricing"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// PaymentService runs the payment state machine.  Completing a payment
// confirms its booking in the same transaction.
type PaymentService struct {
	db        *sql.DB
	bookings  *repository.BookingRepo
	payments  *repository.PaymentRepo
	lifecycle *BookingService
	events    EventPublisher
	log       logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

// NewPaymentService wires the service.  events may be nil.
func NewPaymentService(db *sql.DB, bookings *repository.BookingRepo, payments *repository.PaymentRepo,
	lifecycle *BookingService, events EventPublisher, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{
		db:        db,
		bookings:  bookings,
		payments:  payments,
		lifecycle: lifecycle,
		events:    events,
		log:       log.WithField("component", "payment-service"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// ProcessInput requests a payment for a booking.  TransactionID is the
// external reference; one is generated when empty.
type ProcessInput struct {
	BookingID     string
	Method        string
	TransactionID string
}

// ProcessResult is the pending payment created by Process.
type ProcessResult struct {
	PaymentID     string `json:"payment_id"`
	BookingID     string `json:"booking_id"`
	AmountCents   int64  `json:"amount_cents"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// Process creates the single pending payment of a booking.  The amount is
// the booking total computed from its items at this moment.
func (s *PaymentService) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, internal("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetForUpdateTx(ctx, tx, in.BookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, internal("lock booking", err)
	}
	if b.Status == model.BookingCancelled {
		return nil, ErrCancelledBooking
	}
	existing, err := s.payments.GetByBookingIDForUpdateTx(ctx, tx, in.BookingID)
	if err != nil {
		return nil, internal("load payment", err)
	}
	if existing != nil {
		return nil, ErrPaymentExists
	}
	method := model.PaymentMethod(strings.ToLower(strings.TrimSpace(in.Method)))
	if !method.Valid() {
		return nil, ErrInvalidMethod.withMsg("invalid payment method %q", in.Method)
	}
	items, err := s.bookings.ItemsTx(ctx, tx, in.BookingID)
	if err != nil {
		return nil, internal("load booking items", err)
	}
	lines := items.Lines()
	if lines.Empty() {
		return nil, ErrNoPayableItems
	}
	amount, err := pricing.Total(lines)
	if err != nil {
		return nil, ErrAmountTooLarge
	}

	txn := strings.TrimSpace(in.TransactionID)
	if txn == "" {
		txn = "TXN-" + s.newID()
	}
	now := s.now()
	p := &model.Payment{
		ID:            s.newID(),
		BookingID:     in.BookingID,
		AmountCents:   amount,
		Method:        method,
		Status:        model.PaymentPending,
		TransactionID: &txn,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.CreateTx(ctx, tx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPaymentExists
		}
		return nil, internal("insert payment", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, internal("commit payment", err)
	}
	committed = true

	emit(ctx, s.events, s.log, queue.BookingEvent{
		Type:        queue.PaymentProcessed,
		BookingID:   p.BookingID,
		CustomerID:  b.CustomerID,
		PaymentID:   p.ID,
		Status:      string(p.Status),
		AmountCents: p.AmountCents,
	})
	return &ProcessResult{
		PaymentID:     p.ID,
		BookingID:     p.BookingID,
		AmountCents:   p.AmountCents,
		Status:        string(p.Status),
		TransactionID: txn,
	}, nil
}

// lockTx locks the payment's booking and then the payment itself.
func (s *PaymentService) lockTx(ctx context.Context, tx *sql.Tx, paymentID string) (*model.Booking, *model.Payment, error) {
	bookingID, err := s.payments.BookingIDOfTx(ctx, tx, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, nil, internal("load payment", err)
	}
	b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, internal("lock booking", err)
	}
	p, err := s.payments.GetForUpdateTx(ctx, tx, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, nil, internal("lock payment", err)
	}
	return b, p, nil
}

// Complete marks a pending payment completed and confirms its booking in
// the same transaction.  A non-empty transactionID replaces the stored
// reference.
func (s *PaymentService) Complete(ctx context.Context, paymentID, transactionID string) (*model.Payment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, internal("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, p, err := s.lockTx(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentPending {
		return nil, ErrNotPending
	}
	var txn *string
	if t := strings.TrimSpace(transactionID); t != "" {
		txn = &t
		p.TransactionID = txn
	}
	now := s.now()
	if err := s.payments.UpdateStatusTx(ctx, tx, p.ID, model.PaymentCompleted, txn, now); err != nil {
		return nil, internal("complete payment", err)
	}
	b, err := s.lifecycle.confirmTx(ctx, tx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, internal("commit payment", err)
	}
	committed = true
	p.Status = model.PaymentCompleted
	p.UpdatedAt = now

	emit(ctx, s.events, s.log, queue.BookingEvent{
		Type:        queue.BookingConfirmed,
		BookingID:   p.BookingID,
		CustomerID:  b.CustomerID,
		PaymentID:   p.ID,
		Status:      string(model.BookingConfirmed),
		AmountCents: p.AmountCents,
	})
	return p, nil
}

// UpdateStatusAdmin sets any valid payment status directly.  The booking
// is not touched.
func (s *PaymentService) UpdateStatusAdmin(ctx context.Context, paymentID, status, transactionID string) (*model.Payment, error) {
	st := model.PaymentStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, ErrInvalidStatus.withMsg("invalid payment status %q", status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, internal("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := s.payments.GetForUpdateTx(ctx, tx, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, internal("lock payment", err)
	}
	var txn *string
	if t := strings.TrimSpace(transactionID); t != "" {
		txn = &t
		p.TransactionID = txn
	}
	now := s.now()
	if err := s.payments.UpdateStatusTx(ctx, tx, p.ID, st, txn, now); err != nil {
		return nil, internal("update payment status", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, internal("commit payment status", err)
	}
	committed = true

	s.log.WithFields(logrus.Fields{"payment_id": p.ID, "from": p.Status, "to": st}).Info("payment status overridden")
	p.Status = st
	p.UpdatedAt = now
	emit(ctx, s.events, s.log, queue.BookingEvent{
		Type:      queue.PaymentStatusOverridden,
		BookingID: p.BookingID,
		PaymentID: p.ID,
		Status:    string(st),
	})
	return p, nil
}

// GetByBookingID returns the booking's payment.
func (s *PaymentService) GetByBookingID(ctx context.Context, bookingID string) (*model.Payment, error) {
	p, err := s.payments.GetByBookingID(ctx, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, internal("load payment", err)
	}
	return p, nil
}

// ListAll returns every payment, newest first.
func (s *PaymentService) ListAll(ctx context.Context) ([]model.Payment, error) {
	out, err := s.payments.ListAll(ctx)
	if err != nil {
		return nil, internal("list payments", err)
	}
	return out, nil
}

// OwnerOf returns the customer owning the payment's booking.
func (s *PaymentService) OwnerOf(ctx context.Context, paymentID string) (uint64, error) {
	owner, err := s.payments.OwnerOf(ctx, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPaymentNotFound
	}
	if err != nil {
		return 0, internal("load payment owner", err)
	}
	return owner, nil
}
