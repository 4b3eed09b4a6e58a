// Package pricing turns booking and catalog line items into money totals.
// Every amount is an integer in minor currency units (cents).  The same
// functions price a catalog template, a freshly composed booking and the
// payment that settles it, so all three always agree.
package pricing

import (
	"errors"
	"math"
	"math/bits"
	"time"
)

// HotelLine is a hotel stay: nightly rent per room, rooms and the stay window.
type HotelLine struct {
	RentCents int64
	Rooms     int
	CheckIn   time.Time
	CheckOut  time.Time
}

// TransportLine is a number of seats at a per-seat fare.
type TransportLine struct {
	FareCents int64
	Seats     int
}

// FoodLine is a meal plan bought Quantity times.
type FoodLine struct {
	PriceCents int64
	Quantity   int
}

// Lines groups the three line-item families of a booking or catalog.
type Lines struct {
	Hotels    []HotelLine
	Transport []TransportLine
	Food      []FoodLine
}

// Empty reports whether no line item of any family is present.
func (l Lines) Empty() bool {
	return len(l.Hotels) == 0 && len(l.Transport) == 0 && len(l.Food) == 0
}

// Breakdown holds per-family subtotals and their sum.
type Breakdown struct {
	HotelsCents    int64 `json:"hotels_cents"`
	TransportCents int64 `json:"transport_cents"`
	FoodCents      int64 `json:"food_cents"`
	TotalCents     int64 `json:"total_cents"`
}

// ErrOverflow is returned when an amount does not fit in int64 cents.
var ErrOverflow = errors.New("pricing: amount overflows")

const secondsPerDay = 24 * 60 * 60

// Nights returns the number of billable nights between check-in and
// check-out: the day difference rounded up, never less than one.  A
// same-day or inverted stay still bills one night.
func Nights(checkIn, checkOut time.Time) int {
	secs := checkOut.Unix() - checkIn.Unix()
	if secs < 0 || (secs == 0 && checkOut.Nanosecond() <= checkIn.Nanosecond()) {
		return 1
	}
	n := secs / secondsPerDay
	if secs%secondsPerDay != 0 || checkOut.Nanosecond() > checkIn.Nanosecond() {
		n++
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// mul returns a × b, or ErrOverflow when either factor is negative or the
// product exceeds math.MaxInt64.
func mul(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrOverflow
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(lo), nil
}

func add(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// HotelLineCost = rent × rooms × max(nights, 1).
func HotelLineCost(rentCents int64, rooms, nights int) (int64, error) {
	if nights < 1 {
		nights = 1
	}
	perNight, err := mul(rentCents, int64(rooms))
	if err != nil {
		return 0, err
	}
	return mul(perNight, int64(nights))
}

// TransportLineCost = fare × seats.
func TransportLineCost(fareCents int64, seats int) (int64, error) {
	return mul(fareCents, int64(seats))
}

// FoodLineCost = price × quantity.
func FoodLineCost(priceCents int64, quantity int) (int64, error) {
	return mul(priceCents, int64(quantity))
}

// Cost prices a single hotel line.
func (h HotelLine) Cost() (int64, error) {
	return HotelLineCost(h.RentCents, h.Rooms, Nights(h.CheckIn, h.CheckOut))
}

// Cost prices a single transport line.
func (t TransportLine) Cost() (int64, error) { return TransportLineCost(t.FareCents, t.Seats) }

// Cost prices a single food line.
func (f FoodLine) Cost() (int64, error) { return FoodLineCost(f.PriceCents, f.Quantity) }

func accumulate(sum *int64, cost func() (int64, error)) error {
	c, err := cost()
	if err != nil {
		return err
	}
	*sum, err = add(*sum, c)
	return err
}

// Summarize computes the subtotal of each family and the grand total.  It
// fails with ErrOverflow instead of returning a wrapped amount.
func Summarize(l Lines) (Breakdown, error) {
	var b Breakdown
	for _, h := range l.Hotels {
		if err := accumulate(&b.HotelsCents, h.Cost); err != nil {
			return Breakdown{}, err
		}
	}
	for _, t := range l.Transport {
		if err := accumulate(&b.TransportCents, t.Cost); err != nil {
			return Breakdown{}, err
		}
	}
	for _, f := range l.Food {
		if err := accumulate(&b.FoodCents, f.Cost); err != nil {
			return Breakdown{}, err
		}
	}
	var err error
	if b.TotalCents, err = add(b.HotelsCents, b.TransportCents); err != nil {
		return Breakdown{}, err
	}
	if b.TotalCents, err = add(b.TotalCents, b.FoodCents); err != nil {
		return Breakdown{}, err
	}
	return b, nil
}

// Total is the authoritative amount for a set of lines.  Payments are
// created with exactly this value.
func Total(l Lines) (int64, error) {
	b, err := Summarize(l)
	return b.TotalCents, err
}
