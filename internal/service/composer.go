// Package service implements the booking and payment transaction engine:
// composing bookings from catalog templates or ad hoc items, the booking
// and payment state machines and the coupling between them.  Services own
// their transactions; repositories only run statements inside them.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/pricing"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// CatalogSource loads a priced catalog template.  It returns
// repository.ErrNotFound for an unknown catalog.
type CatalogSource interface {
	GetTemplateTx(ctx context.Context, tx *sql.Tx, catalogID uint64) (*repository.CatalogTemplate, error)
}

// CustomerDirectory answers whether a customer exists.
type CustomerDirectory interface {
	ExistsTx(ctx context.Context, tx *sql.Tx, customerID uint64) (bool, error)
}

// ItemPricer returns unit prices keyed by id.  Unknown ids are absent
// from the returned map.
type ItemPricer interface {
	HotelRentsTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]int64, error)
	TransportFaresTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]int64, error)
	FoodPricesTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]int64, error)
}

// CatalogBookingInput books a catalog for one stay window shared by all
// of its hotels and transport options.
type CatalogBookingInput struct {
	CustomerID  uint64
	CatalogID   uint64
	Description string
	CheckIn     time.Time
	CheckOut    time.Time
	TravelDate  time.Time
}

// CustomHotel is one hotel stay of a custom booking.
type CustomHotel struct {
	HotelID     uint64
	RoomsBooked int
	CheckIn     time.Time
	CheckOut    time.Time
}

// CustomTransport is one transport reservation of a custom booking.
type CustomTransport struct {
	TransportID uint64
	SeatsBooked int
	TravelDate  time.Time
}

// CustomFood is one meal plan of a custom booking.
type CustomFood struct {
	FoodID   uint64
	Quantity int
}

// CustomBookingInput is an ad hoc booking.  At least one of the three
// slices must be non-empty.
type CustomBookingInput struct {
	CustomerID  uint64
	Description string
	Hotels      []CustomHotel
	Transport   []CustomTransport
	Food        []CustomFood
}

// Empty reports whether no item of any family was supplied.
func (in CustomBookingInput) Empty() bool {
	return len(in.Hotels) == 0 && len(in.Transport) == 0 && len(in.Food) == 0
}

const (
	// MaxItemQuantity bounds rooms, seats and meal quantities per item.
	MaxItemQuantity = 10_000
	// MaxStayNights bounds the length of a single hotel stay.
	MaxStayNights = 366
)

// composition is a validated booking with its items and priced lines,
// ready to be written.
type composition struct {
	booking   model.Booking
	hotels    []model.BookingHotel
	transport []model.BookingTransport
	food      []model.BookingFood
	lines     pricing.Lines
	total     int64
}

// Composer validates booking requests and turns them into rows.  Every
// check runs before the first write so a rejected request leaves no trace.
type Composer struct {
	catalogs  CatalogSource
	customers CustomerDirectory
	items     ItemPricer
	bookings  *repository.BookingRepo

	now   func() time.Time
	newID func() string
}

// NewComposer wires a Composer to its collaborators.
func NewComposer(catalogs CatalogSource, customers CustomerDirectory, items ItemPricer, bookings *repository.BookingRepo) *Composer {
	return &Composer{
		catalogs:  catalogs,
		customers: customers,
		items:     items,
		bookings:  bookings,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func atLeastOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func checkQuantity(family string, id uint64, n int) error {
	if n > MaxItemQuantity {
		return ErrQuantityTooLarge.withMsg("%s %d: quantity exceeds %d", family, id, MaxItemQuantity)
	}
	return nil
}

func checkStay(checkIn, checkOut time.Time) error {
	if n := pricing.Nights(checkIn, checkOut); n > MaxStayNights {
		return ErrStayTooLong.withMsg("stay of %d nights exceeds %d", n, MaxStayNights)
	}
	return nil
}

// priced totals comp.lines, rejecting a total that does not fit in cents.
func (comp *composition) priced() (*composition, error) {
	total, err := pricing.Total(comp.lines)
	if err != nil {
		return nil, ErrAmountTooLarge
	}
	comp.total = total
	return comp, nil
}

func (c *Composer) newBooking(customerID uint64, catalogID *uint64, description string) model.Booking {
	now := c.now()
	return model.Booking{
		ID:          c.newID(),
		CustomerID:  customerID,
		CatalogID:   catalogID,
		IsCustom:    catalogID == nil,
		Description: description,
		Status:      model.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Composer) requireCustomer(ctx context.Context, tx *sql.Tx, customerID uint64) error {
	ok, err := c.customers.ExistsTx(ctx, tx, customerID)
	if err != nil {
		return internal("lookup customer", err)
	}
	if !ok {
		return ErrCustomerNotFound
	}
	return nil
}

// FromCatalogTx copies a catalog template into a new pending booking.
// Checks run in order: catalog, customer, date range, check-in not past.
func (c *Composer) FromCatalogTx(ctx context.Context, tx *sql.Tx, in CatalogBookingInput) (*composition, error) {
	tpl, err := c.catalogs.GetTemplateTx(ctx, tx, in.CatalogID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCatalogNotFound
	}
	if err != nil {
		return nil, internal("load catalog", err)
	}
	if err := c.requireCustomer(ctx, tx, in.CustomerID); err != nil {
		return nil, err
	}
	if !in.CheckOut.After(in.CheckIn) {
		return nil, ErrInvalidDateRange
	}
	if err := checkStay(in.CheckIn, in.CheckOut); err != nil {
		return nil, err
	}
	if dateOf(in.CheckIn).Before(dateOf(c.now())) {
		return nil, ErrDateInPast
	}

	catalogID := in.CatalogID
	comp := &composition{booking: c.newBooking(in.CustomerID, &catalogID, in.Description)}
	id := comp.booking.ID
	for _, h := range tpl.Hotels {
		comp.hotels = append(comp.hotels, model.BookingHotel{
			BookingID: id, HotelID: h.HotelID, RoomsBooked: h.RoomsIncluded,
			CheckIn: in.CheckIn, CheckOut: in.CheckOut,
		})
	}
	for _, t := range tpl.Transport {
		comp.transport = append(comp.transport, model.BookingTransport{
			BookingID: id, TransportID: t.TransportID, SeatsBooked: t.SeatsIncluded, TravelDate: in.TravelDate,
		})
	}
	for _, f := range tpl.Food {
		comp.food = append(comp.food, model.BookingFood{BookingID: id, FoodID: f.FoodID, Quantity: 1})
	}
	comp.lines = tpl.Lines(in.CheckIn, in.CheckOut)
	return comp.priced()
}

// CustomTx builds a pending booking from explicitly listed items.
// Non-positive quantities default to one; quantities above
// MaxItemQuantity and stays above MaxStayNights are rejected.
func (c *Composer) CustomTx(ctx context.Context, tx *sql.Tx, in CustomBookingInput) (*composition, error) {
	if in.Empty() {
		return nil, ErrNoItemsSpecified
	}
	for _, h := range in.Hotels {
		if h.CheckOut.Before(h.CheckIn) {
			return nil, ErrInvalidDateRange.withMsg("hotel %d: check-out is before check-in", h.HotelID)
		}
		if err := checkStay(h.CheckIn, h.CheckOut); err != nil {
			return nil, err
		}
		if err := checkQuantity("hotel", h.HotelID, h.RoomsBooked); err != nil {
			return nil, err
		}
	}
	for _, t := range in.Transport {
		if err := checkQuantity("transport", t.TransportID, t.SeatsBooked); err != nil {
			return nil, err
		}
	}
	for _, f := range in.Food {
		if err := checkQuantity("food", f.FoodID, f.Quantity); err != nil {
			return nil, err
		}
	}
	if err := c.requireCustomer(ctx, tx, in.CustomerID); err != nil {
		return nil, err
	}

	rents, err := c.items.HotelRentsTx(ctx, tx, hotelIDs(in.Hotels))
	if err != nil {
		return nil, internal("load hotel prices", err)
	}
	fares, err := c.items.TransportFaresTx(ctx, tx, transportIDs(in.Transport))
	if err != nil {
		return nil, internal("load transport prices", err)
	}
	prices, err := c.items.FoodPricesTx(ctx, tx, foodIDs(in.Food))
	if err != nil {
		return nil, internal("load food prices", err)
	}

	comp := &composition{booking: c.newBooking(in.CustomerID, nil, in.Description)}
	id := comp.booking.ID
	for _, h := range in.Hotels {
		rent, ok := rents[h.HotelID]
		if !ok {
			return nil, ErrItemNotFound.withMsg("hotel %d does not exist", h.HotelID)
		}
		rooms := atLeastOne(h.RoomsBooked)
		comp.hotels = append(comp.hotels, model.BookingHotel{
			BookingID: id, HotelID: h.HotelID, RoomsBooked: rooms, CheckIn: h.CheckIn, CheckOut: h.CheckOut,
		})
		comp.lines.Hotels = append(comp.lines.Hotels, pricing.HotelLine{
			RentCents: rent, Rooms: rooms, CheckIn: h.CheckIn, CheckOut: h.CheckOut,
		})
	}
	for _, t := range in.Transport {
		fare, ok := fares[t.TransportID]
		if !ok {
			return nil, ErrItemNotFound.withMsg("transport %d does not exist", t.TransportID)
		}
		seats := atLeastOne(t.SeatsBooked)
		comp.transport = append(comp.transport, model.BookingTransport{
			BookingID: id, TransportID: t.TransportID, SeatsBooked: seats, TravelDate: t.TravelDate,
		})
		comp.lines.Transport = append(comp.lines.Transport, pricing.TransportLine{FareCents: fare, Seats: seats})
	}
	for _, f := range in.Food {
		price, ok := prices[f.FoodID]
		if !ok {
			return nil, ErrItemNotFound.withMsg("food %d does not exist", f.FoodID)
		}
		qty := atLeastOne(f.Quantity)
		comp.food = append(comp.food, model.BookingFood{BookingID: id, FoodID: f.FoodID, Quantity: qty})
		comp.lines.Food = append(comp.lines.Food, pricing.FoodLine{PriceCents: price, Quantity: qty})
	}
	return comp.priced()
}

// WriteTx inserts the booking header followed by each item family.  Any
// failure leaves the transaction for the caller to roll back.
func (c *Composer) WriteTx(ctx context.Context, tx *sql.Tx, comp *composition) error {
	if err := c.bookings.CreateTx(ctx, tx, &comp.booking); err != nil {
		return err
	}
	if err := c.bookings.CreateHotelsTx(ctx, tx, comp.hotels); err != nil {
		return err
	}
	if err := c.bookings.CreateTransportTx(ctx, tx, comp.transport); err != nil {
		return err
	}
	return c.bookings.CreateFoodTx(ctx, tx, comp.food)
}

func hotelIDs(in []CustomHotel) []uint64 {
	ids := make([]uint64, 0, len(in))
	for _, h := range in {
		ids = append(ids, h.HotelID)
	}
	return ids
}

func transportIDs(in []CustomTransport) []uint64 {
	ids := make([]uint64, 0, len(in))
	for _, t := range in {
		ids = append(ids, t.TransportID)
	}
	return ids
}

func foodIDs(in []CustomFood) []uint64 {
	ids := make([]uint64, 0, len(in))
	for _, f := range in {
		ids = append(ids, f.FoodID)
	}
	return ids
}
