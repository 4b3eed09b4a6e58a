package router // package router wires handlers and middleware onto an echo instance

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
)

// Deps is everything the route table needs.  Redis may be nil, in which
// case caching and rate limiting are skipped.
type Deps struct {
	JWTSecret      string
	RequestTimeout time.Duration
	RateLimit      config.RateLimitConfig
	Cache          config.CacheConfig
	Redis          *redis.Client
	Log            logrus.FieldLogger

	DB       handler.Pinger
	Auth     *handler.AuthHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Admin    *handler.AdminHandler
	Catalogs *handler.CatalogHandler
}

// New builds the echo instance with global middleware and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Timeout(d.RequestTimeout))

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d.Auth, d.JWTSecret)
	RegisterPublic(e, d.Catalogs, middleware.NewRedisCache(d.Cache, d.Redis, d.Log))

	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	RegisterCustomer(e, d.Bookings, d.Payments, d.JWTSecret, limiter)
	RegisterAdmin(e, d.Admin, d.JWTSecret, limiter)
	return e
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers registration, login and token endpoints under
// /v1/auth and the authenticated profile endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers unauthenticated catalog endpoints.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/catalogs/:id/cost", h.Cost, cache)
}
