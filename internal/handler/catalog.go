package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// CatalogHandler serves the public catalog pricing endpoint.
type CatalogHandler struct {
    Catalogs CatalogAPI
    Log      logrus.FieldLogger
}

func NewCatalogHandler(catalogs CatalogAPI, log logrus.FieldLogger) *CatalogHandler {
    return &CatalogHandler{Catalogs: catalogs, Log: log.WithField("component", "catalog-handler")}
}

// Cost handles GET /v1/catalogs/:id/cost?check_in=&check_out=.  Omitted
// dates fall back to the catalog's departure and arrival.
func (h *CatalogHandler) Cost(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return badRequest(c, "invalid catalog id")
    }
    checkIn, err := parseOptionalDate(c.QueryParam("check_in"))
    if err != nil {
        return badRequest(c, "check_in must be YYYY-MM-DD")
    }
    checkOut, err := parseOptionalDate(c.QueryParam("check_out"))
    if err != nil {
        return badRequest(c, "check_out must be YYYY-MM-DD")
    }
    cost, err := h.Catalogs.Cost(c.Request().Context(), id, checkIn, checkOut)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, cost)
}
