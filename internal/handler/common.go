package handler // HTTP handlers for the booking, payment, catalog and auth endpoints

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"
    "unicode/utf8"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/travel-booking/internal/middleware"
    "github.com/iliyamo/travel-booking/internal/model"
    "github.com/iliyamo/travel-booking/internal/repository"
    "github.com/iliyamo/travel-booking/internal/service"
)

// BookingAPI is the booking lifecycle as seen by the HTTP layer.
type BookingAPI interface {
    CreateFromCatalog(ctx context.Context, in service.CatalogBookingInput) (*service.CreateResult, error)
    CreateCustom(ctx context.Context, in service.CustomBookingInput) (*service.CreateResult, error)
    GetByID(ctx context.Context, id string) (*service.BookingDetail, error)
    ListByCustomer(ctx context.Context, customerID uint64) ([]repository.BookingHeader, error)
    ListAll(ctx context.Context) ([]repository.BookingHeader, error)
    OwnerOf(ctx context.Context, id string) (uint64, error)
    Cancel(ctx context.Context, id, reason string) (*service.CancelResult, error)
    SetStatusAdmin(ctx context.Context, id, status string) error
    Receipt(ctx context.Context, id string) ([]byte, string, error)
}

// PaymentAPI is the payment state machine as seen by the HTTP layer.
type PaymentAPI interface {
    Process(ctx context.Context, in service.ProcessInput) (*service.ProcessResult, error)
    Complete(ctx context.Context, paymentID, transactionID string) (*model.Payment, error)
    UpdateStatusAdmin(ctx context.Context, paymentID, status, transactionID string) (*model.Payment, error)
    GetByBookingID(ctx context.Context, bookingID string) (*model.Payment, error)
    ListAll(ctx context.Context) ([]model.Payment, error)
    OwnerOf(ctx context.Context, paymentID string) (uint64, error)
}

// CatalogAPI prices catalogs for display.
type CatalogAPI interface {
    Cost(ctx context.Context, catalogID uint64, checkIn, checkOut time.Time) (*service.CatalogCost, error)
}

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD value as UTC midnight.
func parseDate(s string) (time.Time, error) {
    return time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
}

// parseOptionalDate returns the zero time for an empty value.
func parseOptionalDate(s string) (time.Time, error) {
    if strings.TrimSpace(s) == "" {
        return time.Time{}, nil
    }
    return parseDate(s)
}

// maxTextLen matches the VARCHAR(500) description and cancel_reason columns.
const maxTextLen = 500

func tooLong(s string) bool { return utf8.RuneCountInString(s) > maxTextLen }

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": "INVALID_REQUEST"})
}

func forbidden(c echo.Context) error {
    return c.JSON(http.StatusForbidden, echo.Map{"error": repository.ErrForbidden.Error(), "code": "FORBIDDEN"})
}

// statusFor maps a service failure kind to an HTTP status.
func statusFor(k service.Kind) int {
    switch k {
    case service.KindNotFound:
        return http.StatusNotFound
    case service.KindConflict:
        return http.StatusConflict
    case service.KindValidation:
        return http.StatusBadRequest
    default:
        return http.StatusInternalServerError
    }
}

// writeError renders err as {"error", "code"}.  Internal failures are
// logged and their detail withheld from the client.
func writeError(c echo.Context, log logrus.FieldLogger, err error) error {
    kind := service.KindOf(err)
    if kind == service.KindInternal {
        log.WithError(err).WithField("path", c.Path()).Error("request failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": "INTERNAL"})
    }
    msg := err.Error()
    var e *service.Error
    if errors.As(err, &e) {
        msg = e.Msg
    }
    return c.JSON(statusFor(kind), echo.Map{"error": msg, "code": service.CodeOf(err)})
}

// authorize returns repository.ErrForbidden unless the caller owns the
// resource or is an administrator.
func authorize(c echo.Context, owner uint64) error {
    if middleware.Role(c) == model.RoleAdmin {
        return nil
    }
    if id, ok := middleware.CustomerID(c); ok && id == owner {
        return nil
    }
    return repository.ErrForbidden
}

// requireOwner resolves the owner of id with lookup.  When the caller may
// not act on it a response is written and handled is true.
func requireOwner(c echo.Context, log logrus.FieldLogger, lookup func(context.Context, string) (uint64, error), id string) (handled bool, err error) {
    owner, err := lookup(c.Request().Context(), id)
    if err != nil {
        return true, writeError(c, log, err)
    }
    if err := authorize(c, owner); err != nil {
        return true, forbidden(c)
    }
    return false, nil
}
