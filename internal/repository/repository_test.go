package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/model"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1452, Message: "foreign key"}))
	assert.True(t, IsDuplicateKey(errors.New("Error 1062: Duplicate entry 'x' for key 'PRIMARY'")))
	assert.False(t, IsDuplicateKey(nil))
}

func TestPlaceholders(t *testing.T) {
	marks, args := placeholders([]uint64{4, 5, 6})
	assert.Equal(t, "?,?,?", marks)
	assert.Equal(t, []any{uint64(4), uint64(5), uint64(6)}, args)
}

func TestCreateHotelsTxBuildsOneStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	in := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 2)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_hotels (booking_id, hotel_id, rooms_booked, check_in, check_out) VALUES (?, ?, ?, ?, ?),(?, ?, ?, ?, ?)")).
		WithArgs("b-1", 1, 2, in, out, "b-1", 2, 1, in, out).
		WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	repo := NewBookingRepo(db)
	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.CreateHotelsTx(context.Background(), tx, []model.BookingHotel{
		{BookingID: "b-1", HotelID: 1, RoomsBooked: 2, CheckIn: in, CheckOut: out},
		{BookingID: "b-1", HotelID: 2, RoomsBooked: 1, CheckIn: in, CheckOut: out},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// Empty input never reaches the database.
	require.NoError(t, repo.CreateFoodTx(context.Background(), nil, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByCustomerNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	newer := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	cols := []string{"id", "customer_id", "name", "catalog_id", "name", "is_custom", "description", "status", "cancel_reason", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.customer_id = ? ORDER BY b.created_at DESC")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b-2", 7, "Ada", nil, nil, true, "", "pending", nil, newer, newer).
			AddRow("b-1", 7, "Ada", 3, "Island Escape", false, "", "cancelled", "changed plans", older, older))

	list, err := NewBookingRepo(db).ListByCustomer(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b-2", list[0].ID)
	assert.Nil(t, list[0].CatalogID)
	require.NotNil(t, list[1].CancelReason)
	assert.Equal(t, "changed plans", *list[1].CancelReason)
	assert.Equal(t, uint64(3), *list[1].CatalogID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentCreateTxReportsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'b-1' for key 'uq_payments_booking'"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	now := time.Now().UTC()
	err = NewPaymentRepo(db).CreateTx(context.Background(), tx, &model.Payment{
		ID: "p-1", BookingID: "b-1", AmountCents: 100, Method: model.MethodPayPal,
		Status: model.PaymentPending, CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
