package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingPublisher) types() []queue.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]queue.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type fixture struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	events   *recordingPublisher
	bookings *BookingService
	payments *PaymentService
	catalogs *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	bookingRepo := repository.NewBookingRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)

	comp := NewComposer(catalogRepo, repository.NewCustomerRepo(db), repository.NewItemRepo(db), bookingRepo)
	comp.now = func() time.Time { return fixedNow }
	comp.newID = sequence("booking")

	rec := &recordingPublisher{}
	bs := NewBookingService(db, bookingRepo, paymentRepo, comp, rec, log)
	bs.now = func() time.Time { return fixedNow }
	ps := NewPaymentService(db, bookingRepo, paymentRepo, bs, rec, log)
	ps.now = func() time.Time { return fixedNow }
	ps.newID = sequence("id")

	return &fixture{db: db, mock: mock, events: rec, bookings: bs, payments: ps, catalogs: NewCatalogService(catalogRepo)}
}

func (f *fixture) verify(t *testing.T) {
	t.Helper()
	require.NoError(t, f.mock.ExpectationsWereMet())
}

var (
	bookingCols = []string{"id", "customer_id", "catalog_id", "is_custom", "description", "status", "cancel_reason", "created_at", "updated_at"}
	paymentCols = []string{"id", "booking_id", "amount_cents", "method", "status", "transaction_id", "created_at", "updated_at"}
)

func bookingRows(id string, customerID uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(id, customerID, nil, true, "", status, nil, fixedNow, fixedNow)
}

func paymentRows(id, bookingID string, amount int64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(paymentCols).AddRow(id, bookingID, amount, "credit_card", status, "TXN-abc", fixedNow, fixedNow)
}

const (
	lockBookingSQL        = `FROM bookings WHERE id = \? FOR UPDATE`
	lockPaymentByBooking  = `FROM payments WHERE booking_id = \? FOR UPDATE`
	lockPaymentByIDSQL    = `FROM payments WHERE id = \? FOR UPDATE`
	paymentBookingIDSQL   = `SELECT booking_id FROM payments WHERE id = \?`
	updateBookingStatus   = `UPDATE bookings SET status`
	updatePaymentStatus   = `UPDATE payments SET status`
	bookingHotelItemsSQL  = `FROM booking_hotels bh`
	bookingTransportItems = `FROM booking_transport bt`
	bookingFoodItemsSQL   = `FROM booking_food bf`
)

// expectCatalogTemplate registers the four reads of catalog 3: two hotels
// nights apart, one flight and one meal plan.
func expectCatalogTemplate(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM catalogs WHERE id`).WithArgs(3).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "destination", "description", "duration_days", "budget_cents", "departure_date", "arrival_date"}).
			AddRow(3, "Island Escape", "Bali", "five days", 5, 500000, day(2026, 4, 1), day(2026, 4, 6)))
	mock.ExpectQuery(`FROM catalog_hotels`).WithArgs(3).WillReturnRows(
		sqlmock.NewRows([]string{"hotel_id", "name", "rooms_included", "rent_cents"}).
			AddRow(11, "Sea View", 2, 10000))
	mock.ExpectQuery(`FROM catalog_transport`).WithArgs(3).WillReturnRows(
		sqlmock.NewRows([]string{"transport_id", "mode", "provider", "seats_included", "fare_cents"}).
			AddRow(21, "flight", "AirX", 2, 25000))
	mock.ExpectQuery(`FROM catalog_food`).WithArgs(3).WillReturnRows(
		sqlmock.NewRows([]string{"food_id", "name", "price_cents"}).
			AddRow(31, "Breakfast", 1600))
}

// expectBookingItems registers the three priced item reads of booking b-1.
func expectBookingItems(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(bookingHotelItemsSQL).WithArgs("b-1").WillReturnRows(
		sqlmock.NewRows([]string{"hotel_id", "name", "location", "rooms_booked", "check_in", "check_out", "rent_cents"}).
			AddRow(11, "Sea View", "Bali", 2, day(2026, 4, 1), day(2026, 4, 3), 10000))
	mock.ExpectQuery(bookingTransportItems).WithArgs("b-1").WillReturnRows(
		sqlmock.NewRows([]string{"transport_id", "mode", "provider", "seats_booked", "travel_date", "fare_cents"}).
			AddRow(21, "flight", "AirX", 2, day(2026, 4, 1), 5000))
	mock.ExpectQuery(bookingFoodItemsSQL).WithArgs("b-1").WillReturnRows(
		sqlmock.NewRows([]string{"food_id", "name", "meal_type", "quantity", "price_cents"}).
			AddRow(31, "Breakfast", "breakfast", 1, 1600))
}

// bookingItemsTotal is the amount expectBookingItems prices to:
// 10000×2×2 + 5000×2 + 1600.
const bookingItemsTotal = 51600
