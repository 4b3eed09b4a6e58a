package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/iliyamo/travel-booking/internal/model"
    "github.com/iliyamo/travel-booking/internal/pricing"
)

// dateLayout is how stay and travel dates are rendered in API payloads.
const dateLayout = "2006-01-02"

// BookingRepo persists bookings and their hotel, transport and food line
// items.  Writes are exposed as XxxTx methods so a service can group the
// booking row and every item insert into a single transaction.  All
// timestamps are stored in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given pool.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying pool so services can begin transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts the booking header.  The caller supplies the ID and
// timestamps; nothing is read back from the database.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings (id, customer_id, catalog_id, is_custom, description, status, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := tx.ExecContext(ctx, q,
        b.ID, b.CustomerID, b.CatalogID, b.IsCustom, b.Description, string(b.Status), b.CreatedAt, b.UpdatedAt)
    return err
}

// CreateHotelsTx inserts all hotel stays of a booking in one statement.
// An empty slice is a no-op.
func (r *BookingRepo) CreateHotelsTx(ctx context.Context, tx *sql.Tx, items []model.BookingHotel) error {
    if len(items) == 0 {
        return nil
    }
    var sb strings.Builder
    sb.WriteString(`INSERT INTO booking_hotels (booking_id, hotel_id, rooms_booked, check_in, check_out) VALUES `)
    args := make([]any, 0, len(items)*5)
    for i, it := range items {
        if i > 0 {
            sb.WriteString(",")
        }
        sb.WriteString("(?, ?, ?, ?, ?)")
        args = append(args, it.BookingID, it.HotelID, it.RoomsBooked, it.CheckIn, it.CheckOut)
    }
    _, err := tx.ExecContext(ctx, sb.String(), args...)
    return err
}

// CreateTransportTx inserts all transport reservations of a booking.
func (r *BookingRepo) CreateTransportTx(ctx context.Context, tx *sql.Tx, items []model.BookingTransport) error {
    if len(items) == 0 {
        return nil
    }
    var sb strings.Builder
    sb.WriteString(`INSERT INTO booking_transport (booking_id, transport_id, seats_booked, travel_date) VALUES `)
    args := make([]any, 0, len(items)*4)
    for i, it := range items {
        if i > 0 {
            sb.WriteString(",")
        }
        sb.WriteString("(?, ?, ?, ?)")
        args = append(args, it.BookingID, it.TransportID, it.SeatsBooked, it.TravelDate)
    }
    _, err := tx.ExecContext(ctx, sb.String(), args...)
    return err
}

// CreateFoodTx inserts all meal plans of a booking.
func (r *BookingRepo) CreateFoodTx(ctx context.Context, tx *sql.Tx, items []model.BookingFood) error {
    if len(items) == 0 {
        return nil
    }
    var sb strings.Builder
    sb.WriteString(`INSERT INTO booking_food (booking_id, food_id, quantity) VALUES `)
    args := make([]any, 0, len(items)*3)
    for i, it := range items {
        if i > 0 {
            sb.WriteString(",")
        }
        sb.WriteString("(?, ?, ?)")
        args = append(args, it.BookingID, it.FoodID, it.Quantity)
    }
    _, err := tx.ExecContext(ctx, sb.String(), args...)
    return err
}

// GetForUpdateTx loads a booking and locks its row until the transaction
// ends.  Concurrent payment, cancel and confirm calls for the same booking
// are serialized on this lock.  Returns sql.ErrNoRows when absent.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
    const q = `SELECT id, customer_id, catalog_id, is_custom, description, status, cancel_reason, created_at, updated_at
               FROM bookings WHERE id = ? FOR UPDATE`
    var (
        b         model.Booking
        status    string
        catalogID sql.NullInt64
        reason    sql.NullString
    )
    err := tx.QueryRowContext(ctx, q, id).Scan(
        &b.ID, &b.CustomerID, &catalogID, &b.IsCustom, &b.Description, &status, &reason, &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    b.Status = model.BookingStatus(status)
    if catalogID.Valid {
        cid := uint64(catalogID.Int64)
        b.CatalogID = &cid
    }
    if reason.Valid {
        rs := reason.String
        b.CancelReason = &rs
    }
    return &b, nil
}

// UpdateStatusTx sets the booking status.  A non-nil reason is stored as
// the cancellation reason; nil leaves the current value untouched.  The
// caller is expected to hold the row lock from GetForUpdateTx.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id string, status model.BookingStatus, reason *string, at time.Time) error {
    const q = `UPDATE bookings SET status = ?, cancel_reason = COALESCE(?, cancel_reason), updated_at = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, string(status), reason, at, id)
    return err
}

// OwnerOf returns the customer that owns the booking, or sql.ErrNoRows.
func (r *BookingRepo) OwnerOf(ctx context.Context, id string) (uint64, error) {
    var customerID uint64
    err := r.db.QueryRowContext(ctx, `SELECT customer_id FROM bookings WHERE id = ?`, id).Scan(&customerID)
    return customerID, err
}

// BookingHeader is a booking row joined with its customer's name and,
// for catalog bookings, the catalog name.  It is the unit returned by the
// list endpoints and the head of the detail view.
type BookingHeader struct {
    ID           string    `json:"id"`
    CustomerID   uint64    `json:"customer_id"`
    CustomerName string    `json:"customer_name"`
    CatalogID    *uint64   `json:"catalog_id,omitempty"`
    CatalogName  *string   `json:"catalog_name,omitempty"`
    IsCustom     bool      `json:"is_custom"`
    Description  string    `json:"description"`
    Status       string    `json:"status"`
    CancelReason *string   `json:"cancel_reason,omitempty"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}

const headerSelect = `SELECT b.id, b.customer_id, c.name, b.catalog_id, cat.name, b.is_custom, b.description,
                             b.status, b.cancel_reason, b.created_at, b.updated_at
                      FROM bookings b
                      JOIN customers c ON c.id = b.customer_id
                      LEFT JOIN catalogs cat ON cat.id = b.catalog_id`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanHeader(s rowScanner) (BookingHeader, error) {
    var (
        h           BookingHeader
        catalogID   sql.NullInt64
        catalogName sql.NullString
        reason      sql.NullString
    )
    err := s.Scan(&h.ID, &h.CustomerID, &h.CustomerName, &catalogID, &catalogName, &h.IsCustom, &h.Description,
        &h.Status, &reason, &h.CreatedAt, &h.UpdatedAt)
    if err != nil {
        return h, err
    }
    if catalogID.Valid {
        cid := uint64(catalogID.Int64)
        h.CatalogID = &cid
    }
    if catalogName.Valid {
        n := catalogName.String
        h.CatalogName = &n
    }
    if reason.Valid {
        rs := reason.String
        h.CancelReason = &rs
    }
    return h, nil
}

// GetHeader loads a single booking header.  Returns sql.ErrNoRows when the
// booking does not exist.
func (r *BookingRepo) GetHeader(ctx context.Context, id string) (*BookingHeader, error) {
    h, err := scanHeader(r.db.QueryRowContext(ctx, headerSelect+` WHERE b.id = ?`, id))
    if err != nil {
        return nil, err
    }
    return &h, nil
}

// ListByCustomer returns the customer's bookings, newest first.
func (r *BookingRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]BookingHeader, error) {
    return r.listHeaders(ctx, headerSelect+` WHERE b.customer_id = ? ORDER BY b.created_at DESC, b.id DESC`, customerID)
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingHeader, error) {
    return r.listHeaders(ctx, headerSelect+` ORDER BY b.created_at DESC, b.id DESC`)
}

func (r *BookingRepo) listHeaders(ctx context.Context, q string, args ...any) ([]BookingHeader, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]BookingHeader, 0)
    for rows.Next() {
        h, err := scanHeader(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, h)
    }
    return out, rows.Err()
}

// HotelItem is a booked hotel stay with its current unit price and the
// resulting line cost.
type HotelItem struct {
    HotelID     uint64 `json:"hotel_id"`
    HotelName   string `json:"hotel_name"`
    Location    string `json:"location"`
    RoomsBooked int    `json:"rooms_booked"`
    CheckIn     string `json:"check_in"`
    CheckOut    string `json:"check_out"`
    Nights      int    `json:"nights"`
    RentCents   int64  `json:"rent_cents"`
    LineCents   int64  `json:"line_cents"`

    line pricing.HotelLine
}

// TransportItem is a booked block of seats.
type TransportItem struct {
    TransportID uint64 `json:"transport_id"`
    Mode        string `json:"mode"`
    Provider    string `json:"provider"`
    SeatsBooked int    `json:"seats_booked"`
    TravelDate  string `json:"travel_date"`
    FareCents   int64  `json:"fare_cents"`
    LineCents   int64  `json:"line_cents"`
}

// FoodItem is a booked meal plan.
type FoodItem struct {
    FoodID     uint64 `json:"food_id"`
    Name       string `json:"name"`
    MealType   string `json:"meal_type"`
    Quantity   int    `json:"quantity"`
    PriceCents int64  `json:"price_cents"`
    LineCents  int64  `json:"line_cents"`
}

// Items groups the three line-item families of one booking.
type Items struct {
    Hotels    []HotelItem     `json:"hotels"`
    Transport []TransportItem `json:"transport"`
    Food      []FoodItem      `json:"food"`
}

// Lines converts the priced items to pricing lines.
func (it *Items) Lines() pricing.Lines {
    var l pricing.Lines
    for _, h := range it.Hotels {
        l.Hotels = append(l.Hotels, h.line)
    }
    for _, t := range it.Transport {
        l.Transport = append(l.Transport, pricing.TransportLine{FareCents: t.FareCents, Seats: t.SeatsBooked})
    }
    for _, f := range it.Food {
        l.Food = append(l.Food, pricing.FoodLine{PriceCents: f.PriceCents, Quantity: f.Quantity})
    }
    return l
}

// ItemsTx loads every line item of a booking with prices, inside tx.  The
// payment path uses it so the amount is computed from the same snapshot
// that holds the booking lock.
func (r *BookingRepo) ItemsTx(ctx context.Context, tx *sql.Tx, bookingID string) (*Items, error) {
    var (
        it  Items
        err error
    )
    if it.Hotels, err = hotelItems(ctx, tx, bookingID); err != nil {
        return nil, err
    }
    if it.Transport, err = transportItems(ctx, tx, bookingID); err != nil {
        return nil, err
    }
    if it.Food, err = foodItems(ctx, tx, bookingID); err != nil {
        return nil, err
    }
    return &it, nil
}

// HotelItems loads the hotel stays of a booking.
func (r *BookingRepo) HotelItems(ctx context.Context, bookingID string) ([]HotelItem, error) {
    return hotelItems(ctx, r.db, bookingID)
}

// TransportItems loads the transport reservations of a booking.
func (r *BookingRepo) TransportItems(ctx context.Context, bookingID string) ([]TransportItem, error) {
    return transportItems(ctx, r.db, bookingID)
}

// FoodItems loads the meal plans of a booking.
func (r *BookingRepo) FoodItems(ctx context.Context, bookingID string) ([]FoodItem, error) {
    return foodItems(ctx, r.db, bookingID)
}

func hotelItems(ctx context.Context, q queryer, bookingID string) ([]HotelItem, error) {
    const sel = `SELECT bh.hotel_id, h.name, h.location, bh.rooms_booked, bh.check_in, bh.check_out, h.rent_cents
                 FROM booking_hotels bh
                 JOIN hotels h ON h.id = bh.hotel_id
                 WHERE bh.booking_id = ?
                 ORDER BY bh.id`
    rows, err := q.QueryContext(ctx, sel, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]HotelItem, 0)
    for rows.Next() {
        var (
            it                HotelItem
            checkIn, checkOut time.Time
        )
        if err := rows.Scan(&it.HotelID, &it.HotelName, &it.Location, &it.RoomsBooked, &checkIn, &checkOut, &it.RentCents); err != nil {
            return nil, err
        }
        it.line = pricing.HotelLine{RentCents: it.RentCents, Rooms: it.RoomsBooked, CheckIn: checkIn, CheckOut: checkOut}
        it.CheckIn = checkIn.UTC().Format(dateLayout)
        it.CheckOut = checkOut.UTC().Format(dateLayout)
        it.Nights = pricing.Nights(checkIn, checkOut)
        if it.LineCents, err = it.line.Cost(); err != nil {
            return nil, err
        }
        out = append(out, it)
    }
    return out, rows.Err()
}

func transportItems(ctx context.Context, q queryer, bookingID string) ([]TransportItem, error) {
    const sel = `SELECT bt.transport_id, t.mode, t.provider, bt.seats_booked, bt.travel_date, t.fare_cents
                 FROM booking_transport bt
                 JOIN transport t ON t.id = bt.transport_id
                 WHERE bt.booking_id = ?
                 ORDER BY bt.id`
    rows, err := q.QueryContext(ctx, sel, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]TransportItem, 0)
    for rows.Next() {
        var (
            it     TransportItem
            travel time.Time
        )
        if err := rows.Scan(&it.TransportID, &it.Mode, &it.Provider, &it.SeatsBooked, &travel, &it.FareCents); err != nil {
            return nil, err
        }
        it.TravelDate = travel.UTC().Format(dateLayout)
        if it.LineCents, err = pricing.TransportLineCost(it.FareCents, it.SeatsBooked); err != nil {
            return nil, err
        }
        out = append(out, it)
    }
    return out, rows.Err()
}

func foodItems(ctx context.Context, q queryer, bookingID string) ([]FoodItem, error) {
    const sel = `SELECT bf.food_id, f.name, f.meal_type, bf.quantity, f.price_cents
                 FROM booking_food bf
                 JOIN food f ON f.id = bf.food_id
                 WHERE bf.booking_id = ?
                 ORDER BY bf.id`
    rows, err := q.QueryContext(ctx, sel, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]FoodItem, 0)
    for rows.Next() {
        var it FoodItem
        if err := rows.Scan(&it.FoodID, &it.Name, &it.MealType, &it.Quantity, &it.PriceCents); err != nil {
            return nil, err
        }
        if it.LineCents, err = pricing.FoodLineCost(it.PriceCents, it.Quantity); err != nil {
            return nil, err
        }
        out = append(out, it)
    }
    return out, rows.Err()
}
