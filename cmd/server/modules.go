package main

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/router"
	"github.com/iliyamo/travel-booking/internal/service"
)

var storeModule = fx.Module("store",
	fx.Provide(
		provideDB,
		provideRedis,
		repository.NewBookingRepo,
		repository.NewPaymentRepo,
		repository.NewCatalogRepo,
		repository.NewItemRepo,
		repository.NewCustomerRepo,
		repository.NewTokenRepo,
	),
)

var serviceModule = fx.Module("service",
	fx.Provide(
		provideEvents,
		provideComposer,
		service.NewBookingService,
		service.NewPaymentService,
		provideCatalogService,
	),
)

var httpModule = fx.Module("http",
	fx.Provide(
		provideHandlers,
		provideRouter,
	),
)

// provideEvents publishes to RabbitMQ unless EVENTS_ENABLED=false.
func provideEvents(cfg config.Config, log logrus.FieldLogger) service.EventPublisher {
	if !cfg.Broker.Enabled {
		return service.NopPublisher{}
	}
	return queue.NewPublisher(cfg.Broker.URL, log)
}

func provideComposer(catalogs *repository.CatalogRepo, customers *repository.CustomerRepo,
	items *repository.ItemRepo, bookings *repository.BookingRepo) *service.Composer {
	return service.NewComposer(catalogs, customers, items, bookings)
}

func provideCatalogService(catalogs *repository.CatalogRepo) *service.CatalogService {
	return service.NewCatalogService(catalogs)
}

type handlers struct {
	fx.Out

	Auth     *handler.AuthHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Admin    *handler.AdminHandler
	Catalogs *handler.CatalogHandler
}

func provideHandlers(cfg config.Config, log logrus.FieldLogger,
	customers *repository.CustomerRepo, tokens *repository.TokenRepo,
	bookings *service.BookingService, payments *service.PaymentService, catalogs *service.CatalogService) handlers {
	return handlers{
		Auth:     handler.NewAuthHandler(cfg, customers, tokens, log),
		Bookings: handler.NewBookingHandler(bookings, log),
		Payments: handler.NewPaymentHandler(bookings, payments, log),
		Admin:    handler.NewAdminHandler(bookings, payments, log),
		Catalogs: handler.NewCatalogHandler(catalogs, log),
	}
}

type routerParams struct {
	fx.In

	Cfg   config.Config
	Log   logrus.FieldLogger
	DB    *sql.DB
	Redis *redis.Client `optional:"true"`

	Auth     *handler.AuthHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Admin    *handler.AdminHandler
	Catalogs *handler.CatalogHandler
}

func provideRouter(p routerParams) *echo.Echo {
	return router.New(router.Deps{
		JWTSecret:      p.Cfg.JWTSecret,
		RequestTimeout: p.Cfg.RequestTimeout,
		RateLimit:      config.LoadRateLimitConfig(),
		Cache:          config.LoadCacheConfig(),
		Redis:          p.Redis,
		Log:            p.Log,
		DB:             p.DB,
		Auth:           p.Auth,
		Bookings:       p.Bookings,
		Payments:       p.Payments,
		Admin:          p.Admin,
		Catalogs:       p.Catalogs,
	})
}
