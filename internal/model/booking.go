package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
    BookingPending   BookingStatus = "pending"
    BookingConfirmed BookingStatus = "confirmed"
    BookingCancelled BookingStatus = "cancelled"
)

// bookingTransitions lists the moves allowed on the customer-facing path.
// Administrative overrides do not consult this table.
var bookingTransitions = map[BookingStatus][]BookingStatus{
    BookingPending:   {BookingConfirmed, BookingCancelled},
    BookingConfirmed: {BookingCancelled},
    BookingCancelled: {},
}

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
    _, ok := bookingTransitions[s]
    return ok
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
    for _, t := range bookingTransitions[s] {
        if t == next {
            return true
        }
    }
    return false
}

// Booking is a customer's trip.  Its line items are copied at creation
// time and never edited afterwards; only Status, CancelReason and
// Description change later.
//
// Fields:
//  ID           – opaque UUID generated at creation.
//  CustomerID   – owner of the booking.
//  CatalogID    – source catalog, nil for custom bookings.
//  IsCustom     – true when the items were supplied by the customer.
//  Status       – pending, confirmed or cancelled.
//  CancelReason – free text recorded when the booking is cancelled.
type Booking struct {
    ID           string        // bookings.id
    CustomerID   uint64        // bookings.customer_id
    CatalogID    *uint64       // bookings.catalog_id (nullable)
    IsCustom     bool          // bookings.is_custom
    Description  string        // bookings.description
    Status       BookingStatus // bookings.status
    CancelReason *string       // bookings.cancel_reason (nullable)
    CreatedAt    time.Time     // bookings.created_at
    UpdatedAt    time.Time     // bookings.updated_at
}

// BookingHotel is a hotel stay attached to a booking.
type BookingHotel struct {
    ID          uint64    // booking_hotels.id
    BookingID   string    // booking_hotels.booking_id
    HotelID     uint64    // booking_hotels.hotel_id
    RoomsBooked int       // booking_hotels.rooms_booked
    CheckIn     time.Time // booking_hotels.check_in
    CheckOut    time.Time // booking_hotels.check_out
}

// BookingTransport is a block of seats attached to a booking.
type BookingTransport struct {
    ID          uint64    // booking_transport.id
    BookingID   string    // booking_transport.booking_id
    TransportID uint64    // booking_transport.transport_id
    SeatsBooked int       // booking_transport.seats_booked
    TravelDate  time.Time // booking_transport.travel_date
}

// BookingFood is a meal plan attached to a booking.
type BookingFood struct {
    ID        uint64 // booking_food.id
    BookingID string // booking_food.booking_id
    FoodID    uint64 // booking_food.food_id
    Quantity  int    // booking_food.quantity
}
