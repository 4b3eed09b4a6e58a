package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/travel-booking/internal/service"
)

// PaymentHandler serves payment endpoints for customers and admins.
// Ownership is checked through the booking the payment belongs to.
type PaymentHandler struct {
    Bookings BookingAPI
    Payments PaymentAPI
    Log      logrus.FieldLogger
}

func NewPaymentHandler(bookings BookingAPI, payments PaymentAPI, log logrus.FieldLogger) *PaymentHandler {
    if bookings == nil || payments == nil {
        panic("nil service passed to NewPaymentHandler")
    }
    return &PaymentHandler{Bookings: bookings, Payments: payments, Log: log.WithField("component", "payment-handler")}
}

type processReq struct {
    Method        string `json:"method"`
    TransactionID string `json:"transaction_id"`
}

type completeReq struct {
    TransactionID string `json:"transaction_id"`
}

// Process handles POST /v1/bookings/:id/payment.
func (h *PaymentHandler) Process(c echo.Context) error {
    bookingID := c.Param("id")
    if handled, err := requireOwner(c, h.Log, h.Bookings.OwnerOf, bookingID); handled {
        return err
    }
    var req processReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    res, err := h.Payments.Process(c.Request().Context(), service.ProcessInput{
        BookingID:     bookingID,
        Method:        strings.TrimSpace(req.Method),
        TransactionID: strings.TrimSpace(req.TransactionID),
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// GetForBooking handles GET /v1/bookings/:id/payment.
func (h *PaymentHandler) GetForBooking(c echo.Context) error {
    bookingID := c.Param("id")
    if handled, err := requireOwner(c, h.Log, h.Bookings.OwnerOf, bookingID); handled {
        return err
    }
    p, err := h.Payments.GetByBookingID(c.Request().Context(), bookingID)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, p)
}

// Complete handles POST /v1/payments/:id/complete.  A completed payment
// confirms its booking.
func (h *PaymentHandler) Complete(c echo.Context) error {
    paymentID := c.Param("id")
    if handled, err := requireOwner(c, h.Log, h.Payments.OwnerOf, paymentID); handled {
        return err
    }
    var req completeReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    p, err := h.Payments.Complete(c.Request().Context(), paymentID, strings.TrimSpace(req.TransactionID))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, p)
}
