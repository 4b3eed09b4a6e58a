package model

import "time"

// Catalog is an admin-authored trip template.  Bookings copy its items;
// later edits to a catalog never reach existing bookings.
type Catalog struct {
    ID            uint64    // catalogs.id
    Name          string    // catalogs.name
    Destination   string    // catalogs.destination
    Description   string    // catalogs.description
    DurationDays  int       // catalogs.duration_days
    BudgetCents   int64     // catalogs.budget_cents
    DepartureDate time.Time // catalogs.departure_date
    ArrivalDate   time.Time // catalogs.arrival_date
}

// CatalogHotel is a hotel included in a catalog with a room count.
type CatalogHotel struct {
    CatalogID     uint64 // catalog_hotels.catalog_id
    HotelID       uint64 // catalog_hotels.hotel_id
    RoomsIncluded int    // catalog_hotels.rooms_included
}

// CatalogTransport is a transport option included in a catalog.
type CatalogTransport struct {
    CatalogID     uint64 // catalog_transport.catalog_id
    TransportID   uint64 // catalog_transport.transport_id
    SeatsIncluded int    // catalog_transport.seats_included
}

// CatalogFood is a meal plan included in a catalog.
type CatalogFood struct {
    CatalogID uint64 // catalog_food.catalog_id
    FoodID    uint64 // catalog_food.food_id
}
