package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/service"
	"github.com/iliyamo/travel-booking/internal/utils"
)

const secret = "router-secret"

type stubCatalogs struct{}

func (stubCatalogs) Cost(_ context.Context, id uint64, _, _ time.Time) (*service.CatalogCost, error) {
	return &service.CatalogCost{CatalogID: id, Name: "Lisbon"}, nil
}

func newTestRouter() *echo.Echo {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(Deps{
		JWTSecret:      secret,
		RequestTimeout: time.Second,
		Log:            log,
		Auth:           &handler.AuthHandler{Log: log},
		Bookings:       &handler.BookingHandler{Log: log},
		Payments:       &handler.PaymentHandler{Log: log},
		Admin:          &handler.AdminHandler{Log: log},
		Catalogs:       handler.NewCatalogHandler(stubCatalogs{}, log),
	})
}

func do(t *testing.T, e *echo.Echo, method, path string, id uint64, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if id != 0 {
		tok, err := utils.NewAccessToken(secret, id, role, 5)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	e := newTestRouter()

	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/healthz", 0, "").Code)

	rec := do(t, e, http.MethodGet, "/v1/catalogs/3/cost", 0, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Lisbon"`)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestAuthenticationRequired(t *testing.T) {
	e := newTestRouter()
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/v1/bookings"},
		{http.MethodPost, "/v1/bookings/catalog"},
		{http.MethodPost, "/v1/payments/p-1/complete"},
		{http.MethodGet, "/v1/admin/bookings"},
		{http.MethodGet, "/v1/me"},
	} {
		assert.Equal(t, http.StatusUnauthorized, do(t, e, r.method, r.path, 0, "").Code, r.path)
	}
}

func TestRoleSeparation(t *testing.T) {
	e := newTestRouter()

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/v1/admin/bookings"},
		{http.MethodPatch, "/v1/admin/bookings/b-1/status"},
		{http.MethodGet, "/v1/admin/payments"},
		{http.MethodPatch, "/v1/admin/payments/p-1/status"},
	} {
		assert.Equal(t, http.StatusForbidden, do(t, e, r.method, r.path, 7, model.RoleCustomer).Code, r.path)
	}

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/v1/bookings/catalog"},
		{http.MethodPost, "/v1/bookings/custom"},
		{http.MethodGet, "/v1/bookings"},
	} {
		assert.Equal(t, http.StatusForbidden, do(t, e, r.method, r.path, 1, model.RoleAdmin).Code, r.path)
	}

	assert.Equal(t, http.StatusForbidden, do(t, e, http.MethodGet, "/v1/bookings", 7, "GUEST").Code)
}
