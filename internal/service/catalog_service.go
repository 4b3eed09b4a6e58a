package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/travel-booking/internal/pricing"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// CatalogReader loads catalog templates outside a transaction.
type CatalogReader interface {
	GetTemplate(ctx context.Context, catalogID uint64) (*repository.CatalogTemplate, error)
}

// CatalogService prices catalog templates for display.
type CatalogService struct {
	catalogs CatalogReader
}

func NewCatalogService(catalogs CatalogReader) *CatalogService {
	return &CatalogService{catalogs: catalogs}
}

// CatalogCost is what booking the catalog for the given window would cost.
type CatalogCost struct {
	CatalogID   uint64                         `json:"catalog_id"`
	Name        string                         `json:"name"`
	Destination string                         `json:"destination"`
	CheckIn     string                         `json:"check_in"`
	CheckOut    string                         `json:"check_out"`
	Hotels      []repository.TemplateHotel     `json:"hotels"`
	Transport   []repository.TemplateTransport `json:"transport"`
	Food        []repository.TemplateFood      `json:"food"`
	Cost        pricing.Breakdown              `json:"cost"`
}

// Cost prices a catalog for a stay window.  A zero checkIn or checkOut
// falls back to the catalog's own departure or arrival date.
func (s *CatalogService) Cost(ctx context.Context, catalogID uint64, checkIn, checkOut time.Time) (*CatalogCost, error) {
	tpl, err := s.catalogs.GetTemplate(ctx, catalogID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCatalogNotFound
	}
	if err != nil {
		return nil, internal("load catalog", err)
	}
	if checkIn.IsZero() {
		checkIn = tpl.Catalog.DepartureDate
	}
	if checkOut.IsZero() {
		checkOut = tpl.Catalog.ArrivalDate
	}
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidDateRange
	}
	if err := checkStay(checkIn, checkOut); err != nil {
		return nil, err
	}
	cost, err := pricing.Summarize(tpl.Lines(checkIn, checkOut))
	if err != nil {
		return nil, ErrAmountTooLarge
	}
	return &CatalogCost{
		CatalogID:   tpl.Catalog.ID,
		Name:        tpl.Catalog.Name,
		Destination: tpl.Catalog.Destination,
		CheckIn:     checkIn.UTC().Format("2006-01-02"),
		CheckOut:    checkOut.UTC().Format("2006-01-02"),
		Hotels:      nonNil(tpl.Hotels),
		Transport:   nonNil(tpl.Transport),
		Food:        nonNil(tpl.Food),
		Cost:        cost,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
