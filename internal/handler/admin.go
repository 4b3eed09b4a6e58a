package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// AdminHandler exposes the administrative overrides.  Routes are
// restricted to the ADMIN role.
type AdminHandler struct {
    Bookings BookingAPI
    Payments PaymentAPI
    Log      logrus.FieldLogger
}

func NewAdminHandler(bookings BookingAPI, payments PaymentAPI, log logrus.FieldLogger) *AdminHandler {
    if bookings == nil || payments == nil {
        panic("nil service passed to NewAdminHandler")
    }
    return &AdminHandler{Bookings: bookings, Payments: payments, Log: log.WithField("component", "admin-handler")}
}

type statusReq struct {
    Status        string `json:"status"`
    TransactionID string `json:"transaction_id"`
}

// ListBookings handles GET /v1/admin/bookings.
func (h *AdminHandler) ListBookings(c echo.Context) error {
    list, err := h.Bookings.ListAll(c.Request().Context())
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": list, "count": len(list)})
}

// SetBookingStatus handles PATCH /v1/admin/bookings/:id/status.
func (h *AdminHandler) SetBookingStatus(c echo.Context) error {
    var req statusReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
        return badRequest(c, "status is required")
    }
    id := c.Param("id")
    if err := h.Bookings.SetStatusAdmin(c.Request().Context(), id, req.Status); err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"booking_id": id, "status": strings.ToLower(strings.TrimSpace(req.Status))})
}

// ListPayments handles GET /v1/admin/payments.
func (h *AdminHandler) ListPayments(c echo.Context) error {
    list, err := h.Payments.ListAll(c.Request().Context())
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"payments": list, "count": len(list)})
}

// SetPaymentStatus handles PATCH /v1/admin/payments/:id/status.
func (h *AdminHandler) SetPaymentStatus(c echo.Context) error {
    var req statusReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
        return badRequest(c, "status is required")
    }
    p, err := h.Payments.UpdateStatusAdmin(c.Request().Context(), c.Param("id"), req.Status, strings.TrimSpace(req.TransactionID))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, p)
}
