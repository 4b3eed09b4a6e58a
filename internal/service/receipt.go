package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// Receipt renders a booking's detail view as a one-page PDF.  The
// returned name is a suggested download filename.
func (s *BookingService) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return buildReceiptPDF(d, true)
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// buildReceiptPDF uses the core Helvetica font, so every user-supplied
// string goes through the cp1252 translator.  Accented Latin text renders
// as-is; runes outside cp1252 are replaced by a dot instead of mojibake.
func buildReceiptPDF(d *BookingDetail, compress bool) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Booking receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	head := []string{
		"Booking   : " + d.ID,
		"Customer  : " + tr(d.CustomerName),
		"Status    : " + d.Status,
		"Created   : " + d.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
	if d.CatalogName != nil {
		head = append(head, "Catalog   : "+tr(*d.CatalogName))
	}
	if d.Description != "" {
		head = append(head, "Notes     : "+tr(d.Description))
	}
	for _, s := range head {
		pdf.Cell(0, 6, s)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
	}
	row := func(label string, amount int64) {
		pdf.CellFormat(150, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, formatCents(amount), "", 1, "R", false, 0, "")
	}

	if len(d.Items.Hotels) > 0 {
		section("Hotels")
		for _, h := range d.Items.Hotels {
			row(fmt.Sprintf("%s, %d room(s) x %d night(s), %s to %s", h.HotelName, h.RoomsBooked, h.Nights, h.CheckIn, h.CheckOut), h.LineCents)
		}
		pdf.Ln(2)
	}
	if len(d.Items.Transport) > 0 {
		section("Transport")
		for _, t := range d.Items.Transport {
			row(fmt.Sprintf("%s %s, %d seat(s) on %s", t.Provider, t.Mode, t.SeatsBooked, t.TravelDate), t.LineCents)
		}
		pdf.Ln(2)
	}
	if len(d.Items.Food) > 0 {
		section("Meals")
		for _, f := range d.Items.Food {
			row(fmt.Sprintf("%s (%s) x %d", f.Name, f.MealType, f.Quantity), f.LineCents)
		}
		pdf.Ln(2)
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	row("Total", d.Cost.TotalCents)

	if d.Payment != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 10)
		ref := "-"
		if d.Payment.TransactionID != nil {
			ref = *d.Payment.TransactionID
		}
		pdf.Cell(0, 6, fmt.Sprintf("Payment %s via %s: %s (ref %s)", d.Payment.ID, d.Payment.Method, d.Payment.Status, ref))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("receipt-%s.pdf", d.ID), nil
}
