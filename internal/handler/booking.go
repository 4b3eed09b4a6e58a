package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/travel-booking/internal/middleware"
    "github.com/iliyamo/travel-booking/internal/service"
)

// BookingHandler serves the customer booking endpoints.  Routes are
// registered behind JWTAuth, so a customer id is always present.
type BookingHandler struct {
    Bookings BookingAPI
    Log      logrus.FieldLogger
}

func NewBookingHandler(bookings BookingAPI, log logrus.FieldLogger) *BookingHandler {
    if bookings == nil {
        panic("nil booking service passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: bookings, Log: log.WithField("component", "booking-handler")}
}

type catalogBookingReq struct {
    CatalogID   uint64 `json:"catalog_id"`
    Description string `json:"description"`
    CheckIn     string `json:"check_in"`
    CheckOut    string `json:"check_out"`
    TravelDate  string `json:"travel_date"`
}

type customHotelReq struct {
    HotelID     uint64 `json:"hotel_id"`
    RoomsBooked int    `json:"rooms_booked"`
    CheckIn     string `json:"check_in"`
    CheckOut    string `json:"check_out"`
}

type customTransportReq struct {
    TransportID uint64 `json:"transport_id"`
    SeatsBooked int    `json:"seats_booked"`
    TravelDate  string `json:"travel_date"`
}

type customFoodReq struct {
    FoodID   uint64 `json:"food_id"`
    Quantity int    `json:"quantity"`
}

type customBookingReq struct {
    Description string               `json:"description"`
    Hotels      []customHotelReq     `json:"hotels"`
    Transport   []customTransportReq `json:"transport"`
    Food        []customFoodReq      `json:"food"`
}

type cancelReq struct {
    Reason string `json:"reason"`
}

// CreateFromCatalog handles POST /v1/bookings/catalog.  travel_date
// defaults to check_in.
func (h *BookingHandler) CreateFromCatalog(c echo.Context) error {
    customerID, ok := middleware.CustomerID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req catalogBookingReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    if req.CatalogID == 0 {
        return badRequest(c, "catalog_id is required")
    }
    description := strings.TrimSpace(req.Description)
    if tooLong(description) {
        return badRequest(c, "description must be at most 500 characters")
    }
    checkIn, err := parseDate(req.CheckIn)
    if err != nil {
        return badRequest(c, "check_in must be YYYY-MM-DD")
    }
    checkOut, err := parseDate(req.CheckOut)
    if err != nil {
        return badRequest(c, "check_out must be YYYY-MM-DD")
    }
    travel, err := parseOptionalDate(req.TravelDate)
    if err != nil {
        return badRequest(c, "travel_date must be YYYY-MM-DD")
    }
    if travel.IsZero() {
        travel = checkIn
    }

    res, err := h.Bookings.CreateFromCatalog(c.Request().Context(), service.CatalogBookingInput{
        CustomerID:  customerID,
        CatalogID:   req.CatalogID,
        Description: description,
        CheckIn:     checkIn,
        CheckOut:    checkOut,
        TravelDate:  travel,
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// CreateCustom handles POST /v1/bookings/custom.
func (h *BookingHandler) CreateCustom(c echo.Context) error {
    customerID, ok := middleware.CustomerID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req customBookingReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }

    in := service.CustomBookingInput{CustomerID: customerID, Description: strings.TrimSpace(req.Description)}
    if tooLong(in.Description) {
        return badRequest(c, "description must be at most 500 characters")
    }
    for i, hr := range req.Hotels {
        checkIn, err1 := parseDate(hr.CheckIn)
        checkOut, err2 := parseDate(hr.CheckOut)
        if hr.HotelID == 0 || err1 != nil || err2 != nil {
            return badRequest(c, "hotels["+strconv.Itoa(i)+"] needs hotel_id, check_in and check_out (YYYY-MM-DD)")
        }
        in.Hotels = append(in.Hotels, service.CustomHotel{
            HotelID: hr.HotelID, RoomsBooked: hr.RoomsBooked, CheckIn: checkIn, CheckOut: checkOut,
        })
    }
    for i, tr := range req.Transport {
        travel, err := parseDate(tr.TravelDate)
        if tr.TransportID == 0 || err != nil {
            return badRequest(c, "transport["+strconv.Itoa(i)+"] needs transport_id and travel_date (YYYY-MM-DD)")
        }
        in.Transport = append(in.Transport, service.CustomTransport{
            TransportID: tr.TransportID, SeatsBooked: tr.SeatsBooked, TravelDate: travel,
        })
    }
    for i, fr := range req.Food {
        if fr.FoodID == 0 {
            return badRequest(c, "food["+strconv.Itoa(i)+"] needs food_id")
        }
        in.Food = append(in.Food, service.CustomFood{FoodID: fr.FoodID, Quantity: fr.Quantity})
    }

    res, err := h.Bookings.CreateCustom(c.Request().Context(), in)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// List handles GET /v1/bookings: the caller's bookings, newest first.
func (h *BookingHandler) List(c echo.Context) error {
    customerID, ok := middleware.CustomerID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.Bookings.ListByCustomer(c.Request().Context(), customerID)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": list, "count": len(list)})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
    id := c.Param("id")
    if handled, err := requireOwner(c, h.Log, h.Bookings.OwnerOf, id); handled {
        return err
    }
    d, err := h.Bookings.GetByID(c.Request().Context(), id)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, d)
}

// Receipt handles GET /v1/bookings/:id/receipt and streams a PDF.
func (h *BookingHandler) Receipt(c echo.Context) error {
    id := c.Param("id")
    if handled, err := requireOwner(c, h.Log, h.Bookings.OwnerOf, id); handled {
        return err
    }
    pdf, name, err := h.Bookings.Receipt(c.Request().Context(), id)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
    return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// Cancel handles POST /v1/bookings/:id/cancel.  The body is optional.
func (h *BookingHandler) Cancel(c echo.Context) error {
    id := c.Param("id")
    if handled, err := requireOwner(c, h.Log, h.Bookings.OwnerOf, id); handled {
        return err
    }
    var req cancelReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    reason := strings.TrimSpace(req.Reason)
    if tooLong(reason) {
        return badRequest(c, "reason must be at most 500 characters")
    }
    res, err := h.Bookings.Cancel(c.Request().Context(), id, reason)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, res)
}
