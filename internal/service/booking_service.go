package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/pricing"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// BookingService runs the booking lifecycle: creation, reads,
// cancellation with refund, confirmation on payment and the admin
// override.  Row locks are always taken booking first, then payment.
type BookingService struct {
	db       *sql.DB
	bookings *repository.BookingRepo
	payments *repository.PaymentRepo
	composer *Composer
	events   EventPublisher
	log      logrus.FieldLogger

	now func() time.Time
}

// NewBookingService wires the service.  events may be nil.
func NewBookingService(db *sql.DB, bookings *repository.BookingRepo, payments *repository.PaymentRepo,
	composer *Composer, events EventPublisher, log logrus.FieldLogger) *BookingService {
	return &BookingService{
		db:       db,
		bookings: bookings,
		payments: payments,
		composer: composer,
		events:   events,
		log:      log.WithField("component", "booking-service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateResult is returned by both creation modes.
type CreateResult struct {
	BookingID  string `json:"booking_id"`
	TotalCents int64  `json:"total_cents"`
}

// CreateFromCatalog books a catalog template for a customer.
func (s *BookingService) CreateFromCatalog(ctx context.Context, in CatalogBookingInput) (*CreateResult, error) {
	return s.create(ctx, func(tx *sql.Tx) (*composition, error) {
		return s.composer.FromCatalogTx(ctx, tx, in)
	})
}

// CreateCustom books an ad hoc set of hotels, transport and meals.
func (s *BookingService) CreateCustom(ctx context.Context, in CustomBookingInput) (*CreateResult, error) {
	if in.Empty() {
		return nil, ErrNoItemsSpecified
	}
	return s.create(ctx, func(tx *sql.Tx) (*composition, error) {
		return s.composer.CustomTx(ctx, tx, in)
	})
}

func (s *BookingService) create(ctx context.Context, compose func(*sql.Tx) (*composition, error)) (*CreateResult, error) {
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

	comp, err := compose(tx)
	if err != nil {
		return nil, err
	}
	if err := s.composer.WriteTx(ctx, tx, comp); err != nil {
		return nil, internal("insert booking", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, internal("commit booking", err)
	}
	committed = true

	res := &CreateResult{BookingID: comp.booking.ID, TotalCents: comp.total}
	emit(ctx, s.events, s.log, queue.BookingEvent{
		Type:        queue.BookingCreated,
		BookingID:   res.BookingID,
		CustomerID:  comp.booking.CustomerID,
		Status:      string(model.BookingPending),
		AmountCents: res.TotalCents,
	})
	return res, nil
}

// BookingDetail is the full view of one booking.
type BookingDetail struct {
	repository.BookingHeader
	Items   repository.Items  `json:"items"`
	Payment *model.Payment    `json:"payment"`
	Cost    pricing.Breakdown `json:"cost"`
}

// GetByID assembles the detail view.  The header is read first; the three
// item families and the payment are then fetched concurrently.
func (s *BookingService) GetByID(ctx context.Context, id string) (*BookingDetail, error) {
	h, err := s.bookings.GetHeader(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, internal("load booking", err)
	}

	d := &BookingDetail{BookingHeader: *h}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Items.Hotels, err = s.bookings.HotelItems(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		d.Items.Transport, err = s.bookings.TransportItems(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		d.Items.Food, err = s.bookings.FoodItems(gctx, id)
		return err
	})
	g.Go(func() error {
		p, err := s.payments.GetByBookingID(gctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		d.Payment = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal("load booking items", err)
	}
	if d.Cost, err = pricing.Summarize(d.Items.Lines()); err != nil {
		return nil, internal("price booking", err)
	}
	return d, nil
}

// ListByCustomer returns a customer's bookings, newest first.
func (s *BookingService) ListByCustomer(ctx context.Context, customerID uint64) ([]repository.BookingHeader, error) {
	out, err := s.bookings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, internal("list bookings", err)
	}
	return out, nil
}

// ListAll returns every booking, newest first.
func (s *BookingService) ListAll(ctx context.Context) ([]repository.BookingHeader, error) {
	out, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, internal("list bookings", err)
	}
	return out, nil
}

// OwnerOf returns the customer owning the booking.
func (s *BookingService) OwnerOf(ctx context.Context, id string) (uint64, error) {
	owner, err := s.bookings.OwnerOf(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, internal("load booking owner", err)
	}
	return owner, nil
}

// CancelResult reports the outcome of a cancellation.
type CancelResult struct {
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"`
	RefundIssued bool   `json:"refund_issued"`
}

// Cancel moves a booking to cancelled and records the reason.  A
// completed payment is refunded in the same transaction; a pending or
// missing payment is left alone.
func (s *BookingService) Cancel(ctx context.Context, id, reason string) (*CancelResult, error) {
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

	b, err := s.bookings.GetForUpdateTx(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, internal("lock booking", err)
	}
	if !b.Status.CanTransitionTo(model.BookingCancelled) {
		return nil, ErrAlreadyCancelled
	}

	p, err := s.payments.GetByBookingIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, internal("lock payment", err)
	}
	now := s.now()
	refunded := false
	if p != nil && p.Status == model.PaymentCompleted {
		if err := s.payments.UpdateStatusTx(ctx, tx, p.ID, model.PaymentRefunded, nil, now); err != nil {
			return nil, internal("refund payment", err)
		}
		refunded = true
	}

	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}
	if err := s.bookings.UpdateStatusTx(ctx, tx, id, model.BookingCancelled, reasonPtr, now); err != nil {
		return nil, internal("cancel booking", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, internal("commit cancel", err)
	}
	committed = true

	emit(ctx, s.events, s.log, queue.BookingEvent{
		Type:         queue.BookingCancelled,
		BookingID:    id,
		CustomerID:   b.CustomerID,
		Status:       string(model.BookingCancelled),
		RefundIssued: refunded,
		Reason:       strings.TrimSpace(reason),
	})
	return &CancelResult{BookingID: id, Status: string(model.BookingCancelled), RefundIssued: refunded}, nil
}

// confirmTx moves a pending booking to confirmed inside the caller's
// transaction.  Only payment completion calls it.  An already confirmed
// booking is left as is; a cancelled one cannot be confirmed.
func (s *BookingService) confirmTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
	b, err := s.bookings.GetForUpdateTx(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, internal("lock booking", err)
	}
	if b.Status == model.BookingConfirmed {
		return b, nil
	}
	if !b.Status.CanTransitionTo(model.BookingConfirmed) {
		return nil, ErrCancelledBooking
	}
	if err := s.bookings.UpdateStatusTx(ctx, tx, id, model.BookingConfirmed, nil, s.now()); err != nil {
		return nil, internal("confirm booking", err)
	}
	b.Status = model.BookingConfirmed
	return b, nil
}

// SetStatusAdmin sets any valid status directly, bypassing the lifecycle
// table and without touching the payment.
func (s *BookingService) SetStatusAdmin(ctx context.Context, id, status string) error {
	st := model.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return ErrInvalidStatus.withMsg("invalid booking status %q", status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return internal("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetForUpdateTx(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return internal("lock booking", err)
	}
	if err := s.bookings.UpdateStatusTx(ctx, tx, id, st, nil, s.now()); err != nil {
		return internal("update booking status", err)
	}
	if err := tx.Commit(); err != nil {
		return internal("commit booking status", err)
	}
	committed = true

	s.log.WithFields(logrus.Fields{"booking_id": id, "from": b.Status, "to": st}).Info("booking status overridden")
	emit(ctx, s.events, s.log, queue.BookingEvent{
		Type:       queue.BookingStatusOverridden,
		BookingID:  id,
		CustomerID: b.CustomerID,
		Status:     string(st),
	})
	return nil
}
