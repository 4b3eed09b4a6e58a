// Command travelctl is the operator tool for the booking database: schema
// migration, inspecting a booking, the administrative status overrides and
// purging the response cache.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "travelctl",
		Usage: "operate the travel booking database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "publish lifecycle events for overrides to RabbitMQ",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "create missing tables",
				Action: migrateCommand,
			},
			{
				Name:  "booking",
				Usage: "inspect or override bookings",
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "print a booking with its items, payment and cost",
						ArgsUsage: "<booking-id>",
						Action:    bookingShowCommand,
					},
					{
						Name:      "set-status",
						Usage:     "force a booking status (pending, confirmed, cancelled)",
						ArgsUsage: "<booking-id> <status>",
						Action:    bookingSetStatusCommand,
					},
				},
			},
			{
				Name:  "payment",
				Usage: "override payments",
				Subcommands: []*cli.Command{
					{
						Name:      "set-status",
						Usage:     "force a payment status (pending, completed, failed, refunded)",
						ArgsUsage: "<payment-id> <status>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "txn", Usage: "transaction reference to record"},
						},
						Action: paymentSetStatusCommand,
					},
				},
			},
			{
				Name:  "cache",
				Usage: "manage the catalog cost response cache",
				Subcommands: []*cli.Command{
					{
						Name:   "purge",
						Usage:  "drop every cached response, e.g. after editing prices",
						Action: cachePurgeCommand,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "travelctl:", err)
		os.Exit(1)
	}
}

// env bundles what the commands need.  Close releases the pool.
type env struct {
	db       *sql.DB
	bookings *service.BookingService
	payments *service.PaymentService
}

func (e *env) Close() { _ = e.db.Close() }

func open(c *cli.Context) (*env, error) {
	log := logger.New(os.Getenv("APP_ENV"))
	db, err := openDB()
	if err != nil {
		return nil, err
	}

	var events service.EventPublisher = service.NopPublisher{}
	if c.Bool("publish") {
		events = queue.NewPublisher(config.LoadBroker().URL, log)
	}

	bookingRepo := repository.NewBookingRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	composer := service.NewComposer(repository.NewCatalogRepo(db), repository.NewCustomerRepo(db),
		repository.NewItemRepo(db), bookingRepo)
	bookings := service.NewBookingService(db, bookingRepo, paymentRepo, composer, events, log)
	return &env{
		db:       db,
		bookings: bookings,
		payments: service.NewPaymentService(db, bookingRepo, paymentRepo, bookings, events, log),
	}, nil
}

func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("expected %d argument(s), got %d; usage: %s %s", n, c.NArg(), c.Command.FullName(), c.Command.ArgsUsage)
	}
	return c.Args().Slice(), nil
}

func openDB() (*sql.DB, error) {
	cfg, err := config.LoadDB()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func migrateCommand(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(c.Context, db); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "schema up to date")
	return nil
}

func bookingShowCommand(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.Close()

	d, err := e.bookings.GetByID(c.Context, a[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func bookingSetStatusCommand(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.bookings.SetStatusAdmin(c.Context, a[0], a[1]); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "booking %s set to %s\n", a[0], a[1])
	return nil
}

func cachePurgeCommand(c *cli.Context) error {
	log := logger.New(os.Getenv("APP_ENV"))
	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb == nil {
		return fmt.Errorf("redis unavailable")
	}
	defer rdb.Close()

	n, err := middleware.PurgeCache(c.Context, config.LoadCacheConfig(), rdb)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "removed %d cached response(s)\n", n)
	return nil
}

func paymentSetStatusCommand(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.payments.UpdateStatusAdmin(c.Context, a[0], a[1], c.String("txn"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "payment %s is now %s\n", p.ID, p.Status)
	return nil
}
