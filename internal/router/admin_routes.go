package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// RegisterAdmin registers the ADMIN-only listing and override endpoints
// under /v1/admin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		limiter,
	)
	g.GET("/bookings", h.ListBookings)
	g.PATCH("/bookings/:id/status", h.SetBookingStatus)
	g.GET("/payments", h.ListPayments)
	g.PATCH("/payments/:id/status", h.SetPaymentStatus)
}
