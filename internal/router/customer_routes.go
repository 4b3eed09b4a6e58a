package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// RegisterCustomer registers booking and payment endpoints under /v1.
// Creating and listing bookings is for customers; reading, cancelling and
// paying a specific booking is also open to admins, with ownership
// enforced in the handlers.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)

	customer := middleware.RequireRole(model.RoleCustomer)
	g.POST("/bookings/catalog", b.CreateFromCatalog, customer)
	g.POST("/bookings/custom", b.CreateCustom, customer)
	g.GET("/bookings", b.List, customer)

	either := middleware.RequireRole(model.RoleCustomer, model.RoleAdmin)
	g.GET("/bookings/:id", b.Get, either)
	g.GET("/bookings/:id/receipt", b.Receipt, either)
	g.POST("/bookings/:id/cancel", b.Cancel, either)
	g.POST("/bookings/:id/payment", p.Process, either)
	g.GET("/bookings/:id/payment", p.GetForBooking, either)
	g.POST("/payments/:id/complete", p.Complete, either)
}
