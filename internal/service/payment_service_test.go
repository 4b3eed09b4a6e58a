package service

import (
	"context"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
)

func TestProcessCreatesPendingPayment(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "pending"))
	f.mock.ExpectQuery(lockPaymentByBooking).WithArgs("b-1").WillReturnRows(sqlmock.NewRows(paymentCols))
	expectBookingItems(f.mock)
	f.mock.ExpectExec(`INSERT INTO payments`).
		WithArgs("id-2", "b-1", int64(bookingItemsTotal), "paypal", "pending", "TXN-id-1", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "PayPal"})
	require.NoError(t, err)
	assert.Equal(t, "id-2", res.PaymentID)
	assert.Equal(t, int64(bookingItemsTotal), res.AmountCents)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, "TXN-id-1", res.TransactionID)
	f.verify(t)
	assert.Equal(t, []queue.EventType{queue.PaymentProcessed}, f.events.types())
}

func TestProcessKeepsSuppliedTransactionID(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "confirmed"))
	f.mock.ExpectQuery(lockPaymentByBooking).WithArgs("b-1").WillReturnRows(sqlmock.NewRows(paymentCols))
	expectBookingItems(f.mock)
	f.mock.ExpectExec(`INSERT INTO payments`).
		WithArgs("id-1", "b-1", int64(bookingItemsTotal), "bank_transfer", "pending", "BANK-42", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	res, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "bank_transfer", TransactionID: "BANK-42"})
	require.NoError(t, err)
	assert.Equal(t, "BANK-42", res.TransactionID)
	f.verify(t)
}

func TestProcessRejections(t *testing.T) {
	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(sqlmock.NewRows(bookingCols))
		f.mock.ExpectRollback()

		_, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "paypal"})
		assert.ErrorIs(t, err, ErrNotFound)
		f.verify(t)
	})
	t.Run("cancelled booking", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "cancelled"))
		f.mock.ExpectRollback()

		_, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "paypal"})
		assert.ErrorIs(t, err, ErrCancelledBooking)
		f.verify(t)
	})
	t.Run("payment already exists", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "pending"))
		f.mock.ExpectQuery(lockPaymentByBooking).WithArgs("b-1").WillReturnRows(paymentRows("p-1", "b-1", bookingItemsTotal, "failed"))
		f.mock.ExpectRollback()

		_, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "paypal"})
		assert.ErrorIs(t, err, ErrPaymentExists)
		assert.Equal(t, KindConflict, KindOf(err))
		f.verify(t)
	})
	t.Run("invalid method", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "pending"))
		f.mock.ExpectQuery(lockPaymentByBooking).WithArgs("b-1").WillReturnRows(sqlmock.NewRows(paymentCols))
		f.mock.ExpectRollback()

		_, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "cash"})
		assert.ErrorIs(t, err, ErrInvalidMethod)
		f.verify(t)
	})
	t.Run("no payable items", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "pending"))
		f.mock.ExpectQuery(lockPaymentByBooking).WithArgs("b-1").WillReturnRows(sqlmock.NewRows(paymentCols))
		f.mock.ExpectQuery(bookingHotelItemsSQL).WithArgs("b-1").WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}))
		f.mock.ExpectQuery(bookingTransportItems).WithArgs("b-1").WillReturnRows(sqlmock.NewRows([]string{"transport_id"}))
		f.mock.ExpectQuery(bookingFoodItemsSQL).WithArgs("b-1").WillReturnRows(sqlmock.NewRows([]string{"food_id"}))
		f.mock.ExpectRollback()

		_, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "paypal"})
		assert.ErrorIs(t, err, ErrNoPayableItems)
		f.verify(t)
	})
	t.Run("total out of range", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "pending"))
		f.mock.ExpectQuery(lockPaymentByBooking).WithArgs("b-1").WillReturnRows(sqlmock.NewRows(paymentCols))
		f.mock.ExpectQuery(bookingHotelItemsSQL).WithArgs("b-1").WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}))
		f.mock.ExpectQuery(bookingTransportItems).WithArgs("b-1").WillReturnRows(sqlmock.NewRows([]string{"transport_id"}))
		f.mock.ExpectQuery(bookingFoodItemsSQL).WithArgs("b-1").WillReturnRows(
			sqlmock.NewRows([]string{"food_id", "name", "meal_type", "quantity", "price_cents"}).
				AddRow(31, "Breakfast", "breakfast", 1, int64(math.MaxInt64)).
				AddRow(32, "Dinner", "dinner", 1, 1))
		f.mock.ExpectRollback()

		_, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "paypal"})
		assert.ErrorIs(t, err, ErrAmountTooLarge)
		f.verify(t)
		assert.Empty(t, f.events.types())
	})
}

func TestProcessDuplicateKeyMapsToPaymentExists(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "pending"))
	f.mock.ExpectQuery(lockPaymentByBooking).WithArgs("b-1").WillReturnRows(sqlmock.NewRows(paymentCols))
	expectBookingItems(f.mock)
	f.mock.ExpectExec(`INSERT INTO payments`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'b-1' for key 'uq_payments_booking'"})
	f.mock.ExpectRollback()

	_, err := f.payments.Process(context.Background(), ProcessInput{BookingID: "b-1", Method: "debit_card"})
	assert.ErrorIs(t, err, ErrPaymentExists)
	f.verify(t)
	assert.Empty(t, f.events.types())
}

func expectLockPayment(mock sqlmock.Sqlmock, bookingStatus, paymentStatus string) {
	mock.ExpectQuery(paymentBookingIDSQL).WithArgs("p-1").WillReturnRows(sqlmock.NewRows([]string{"booking_id"}).AddRow("b-1"))
	mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, bookingStatus))
	mock.ExpectQuery(lockPaymentByIDSQL).WithArgs("p-1").WillReturnRows(paymentRows("p-1", "b-1", bookingItemsTotal, paymentStatus))
}

func TestCompleteConfirmsBooking(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLockPayment(f.mock, "pending", "pending")
	f.mock.ExpectExec(updatePaymentStatus).WithArgs("completed", "GW-9", fixedNow, "p-1").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "pending"))
	f.mock.ExpectExec(updateBookingStatus).WithArgs("confirmed", nil, fixedNow, "b-1").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	p, err := f.payments.Complete(context.Background(), "p-1", "GW-9")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, p.Status)
	require.NotNil(t, p.TransactionID)
	assert.Equal(t, "GW-9", *p.TransactionID)
	f.verify(t)
	assert.Equal(t, []queue.EventType{queue.BookingConfirmed}, f.events.types())
}

func TestCompleteRejections(t *testing.T) {
	t.Run("unknown payment", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(paymentBookingIDSQL).WithArgs("p-1").WillReturnRows(sqlmock.NewRows([]string{"booking_id"}))
		f.mock.ExpectRollback()

		_, err := f.payments.Complete(context.Background(), "p-1", "")
		assert.ErrorIs(t, err, ErrPaymentNotFound)
		f.verify(t)
	})
	t.Run("not pending", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		expectLockPayment(f.mock, "confirmed", "completed")
		f.mock.ExpectRollback()

		_, err := f.payments.Complete(context.Background(), "p-1", "")
		assert.ErrorIs(t, err, ErrNotPending)
		f.verify(t)
	})
	t.Run("booking cancelled meanwhile", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		expectLockPayment(f.mock, "cancelled", "pending")
		f.mock.ExpectExec(updatePaymentStatus).WithArgs("completed", nil, fixedNow, "p-1").WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectQuery(lockBookingSQL).WithArgs("b-1").WillReturnRows(bookingRows("b-1", 7, "cancelled"))
		f.mock.ExpectRollback()

		_, err := f.payments.Complete(context.Background(), "p-1", "")
		assert.ErrorIs(t, err, ErrCancelledBooking)
		f.verify(t)
		assert.Empty(t, f.events.types())
	})
}

func TestUpdateStatusAdminLeavesBookingAlone(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockPaymentByIDSQL).WithArgs("p-1").WillReturnRows(paymentRows("p-1", "b-1", bookingItemsTotal, "pending"))
	f.mock.ExpectExec(updatePaymentStatus).WithArgs("failed", nil, fixedNow, "p-1").WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	p, err := f.payments.UpdateStatusAdmin(context.Background(), "p-1", "failed", "")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, p.Status)
	f.verify(t)
	assert.Equal(t, []queue.EventType{queue.PaymentStatusOverridden}, f.events.types())
}

func TestUpdateStatusAdminRejections(t *testing.T) {
	f := newFixture(t)
	_, err := f.payments.UpdateStatusAdmin(context.Background(), "p-1", "settled", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockPaymentByIDSQL).WithArgs("p-1").WillReturnRows(sqlmock.NewRows(paymentCols))
	f.mock.ExpectRollback()
	_, err = f.payments.UpdateStatusAdmin(context.Background(), "p-1", "refunded", "")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	f.verify(t)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.events.err = assert.AnError
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(lockPaymentByIDSQL).WithArgs("p-1").WillReturnRows(paymentRows("p-1", "b-1", bookingItemsTotal, "pending"))
	f.mock.ExpectExec(updatePaymentStatus).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	_, err := f.payments.UpdateStatusAdmin(context.Background(), "p-1", "refunded", "")
	require.NoError(t, err)
	f.verify(t)
}

func TestGetByBookingIDWithoutPayment(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`FROM payments WHERE booking_id`).WithArgs("b-1").WillReturnRows(sqlmock.NewRows(paymentCols))

	_, err := f.payments.GetByBookingID(context.Background(), "b-1")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	f.verify(t)
}
