package main // entry point of the booking HTTP server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/queue"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(config.Load, provideLogger),
		storeModule,
		serviceModule,
		httpModule,
		fx.Invoke(startAuditConsumer, startServer),
	)
	if err := app.Err(); err != nil {
		logger.New(os.Getenv("APP_ENV")).WithError(err).Fatal("startup failed")
	}
	app.Run()
}

func provideLogger(cfg config.Config) logrus.FieldLogger {
	return logger.New(cfg.Env)
}

// provideDB opens the pool and, when DB_AUTO_MIGRATE is set, creates the
// schema before anything serves traffic.
func provideDB(lc fx.Lifecycle, cfg config.Config, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.AutoMigrate {
				return nil
			}
			log.Info("applying schema")
			return database.Migrate(ctx, db)
		},
		OnStop: func(context.Context) error { return db.Close() },
	})
	return db, nil
}

func provideRedis(lc fx.Lifecycle, log logrus.FieldLogger) *redis.Client {
	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return rdb.Close() }})
	}
	return rdb
}

// startAuditConsumer runs the audit log writer for the lifetime of the app.
func startAuditConsumer(lc fx.Lifecycle, cfg config.Config, log logrus.FieldLogger) {
	if !cfg.Broker.Enabled {
		return
	}
	consumer := queue.NewAuditConsumer(cfg.Broker.URL, cfg.Broker.AuditDir, log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("audit consumer stopped")
				}
			}()
			return nil
		},
		OnStop: func(stop context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stop.Done():
				return stop.Err()
			}
		},
	})
}

func startServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, e *echo.Echo, cfg config.Config, log logrus.FieldLogger) {
	addr := ":" + cfg.Port
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.WithError(err).Error("http server failed")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping http server")
			return e.Shutdown(ctx)
		},
	})
}
