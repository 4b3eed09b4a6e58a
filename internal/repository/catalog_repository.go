package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/pricing"
)

// CatalogRepo reads catalog templates.  Catalog CRUD lives elsewhere; the
// booking engine only needs a priced snapshot of a template.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a CatalogRepo bound to the given pool.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// TemplateHotel is a hotel included in a catalog with its current rent.
type TemplateHotel struct {
	HotelID       uint64 `json:"hotel_id"`
	Name          string `json:"name"`
	RoomsIncluded int    `json:"rooms_included"`
	RentCents     int64  `json:"rent_cents"`
}

// TemplateTransport is a transport option included in a catalog.
type TemplateTransport struct {
	TransportID   uint64 `json:"transport_id"`
	Mode          string `json:"mode"`
	Provider      string `json:"provider"`
	SeatsIncluded int    `json:"seats_included"`
	FareCents     int64  `json:"fare_cents"`
}

// TemplateFood is a meal plan included in a catalog.
type TemplateFood struct {
	FoodID     uint64 `json:"food_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// CatalogTemplate is a catalog with its priced item sets.
type CatalogTemplate struct {
	Catalog   model.Catalog
	Hotels    []TemplateHotel
	Transport []TemplateTransport
	Food      []TemplateFood
}

// Lines prices the template for a stay window: every hotel uses the same
// check-in/check-out and every meal plan counts once.
func (t *CatalogTemplate) Lines(checkIn, checkOut time.Time) pricing.Lines {
	var l pricing.Lines
	for _, h := range t.Hotels {
		l.Hotels = append(l.Hotels, pricing.HotelLine{RentCents: h.RentCents, Rooms: h.RoomsIncluded, CheckIn: checkIn, CheckOut: checkOut})
	}
	for _, tr := range t.Transport {
		l.Transport = append(l.Transport, pricing.TransportLine{FareCents: tr.FareCents, Seats: tr.SeatsIncluded})
	}
	for _, f := range t.Food {
		l.Food = append(l.Food, pricing.FoodLine{PriceCents: f.PriceCents, Quantity: 1})
	}
	return l
}

// GetTemplateTx loads a catalog template inside tx.  Returns ErrNotFound
// when the catalog does not exist.
func (r *CatalogRepo) GetTemplateTx(ctx context.Context, tx *sql.Tx, id uint64) (*CatalogTemplate, error) {
	return getTemplate(ctx, tx, id)
}

// GetTemplate loads a catalog template directly from the pool.
func (r *CatalogRepo) GetTemplate(ctx context.Context, id uint64) (*CatalogTemplate, error) {
	return getTemplate(ctx, r.db, id)
}

func getTemplate(ctx context.Context, q queryer, id uint64) (*CatalogTemplate, error) {
	var t CatalogTemplate
	c := &t.Catalog
	err := q.QueryRowContext(ctx,
		`SELECT id, name, destination, description, duration_days, budget_cents, departure_date, arrival_date
		 FROM catalogs WHERE id = ?`, id).Scan(
		&c.ID, &c.Name, &c.Destination, &c.Description, &c.DurationDays, &c.BudgetCents, &c.DepartureDate, &c.ArrivalDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT ch.hotel_id, h.name, ch.rooms_included, h.rent_cents
		 FROM catalog_hotels ch JOIN hotels h ON h.id = ch.hotel_id
		 WHERE ch.catalog_id = ? ORDER BY ch.hotel_id`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var h TemplateHotel
		if err := rows.Scan(&h.HotelID, &h.Name, &h.RoomsIncluded, &h.RentCents); err != nil {
			rows.Close()
			return nil, err
		}
		t.Hotels = append(t.Hotels, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = q.QueryContext(ctx,
		`SELECT ct.transport_id, tr.mode, tr.provider, ct.seats_included, tr.fare_cents
		 FROM catalog_transport ct JOIN transport tr ON tr.id = ct.transport_id
		 WHERE ct.catalog_id = ? ORDER BY ct.transport_id`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var tr TemplateTransport
		if err := rows.Scan(&tr.TransportID, &tr.Mode, &tr.Provider, &tr.SeatsIncluded, &tr.FareCents); err != nil {
			rows.Close()
			return nil, err
		}
		t.Transport = append(t.Transport, tr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = q.QueryContext(ctx,
		`SELECT cf.food_id, f.name, f.price_cents
		 FROM catalog_food cf JOIN food f ON f.id = cf.food_id
		 WHERE cf.catalog_id = ? ORDER BY cf.food_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var f TemplateFood
		if err := rows.Scan(&f.FoodID, &f.Name, &f.PriceCents); err != nil {
			return nil, err
		}
		t.Food = append(t.Food, f)
	}
	return &t, rows.Err()
}
