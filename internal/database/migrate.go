package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(120) NOT NULL DEFAULT '',
		email         VARCHAR(190) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('CUSTOMER','ADMIN') NOT NULL DEFAULT 'CUSTOMER',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_customers_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		customer_id BIGINT UNSIGNED NOT NULL,
		token_hash  CHAR(64) NOT NULL,
		expires_at  DATETIME NOT NULL,
		revoked_at  DATETIME NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY ix_refresh_tokens_customer (customer_id),
		CONSTRAINT fk_refresh_tokens_customer FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS hotels (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name            VARCHAR(160) NOT NULL,
		location        VARCHAR(160) NOT NULL DEFAULT '',
		rent_cents      BIGINT NOT NULL,
		rooms_available INT NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS transport (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		mode            VARCHAR(40) NOT NULL,
		provider        VARCHAR(160) NOT NULL DEFAULT '',
		fare_cents      BIGINT NOT NULL,
		seats_available INT NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS food (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(160) NOT NULL,
		meal_type   VARCHAR(40) NOT NULL DEFAULT '',
		price_cents BIGINT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS catalogs (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name           VARCHAR(160) NOT NULL,
		destination    VARCHAR(160) NOT NULL DEFAULT '',
		description    TEXT NOT NULL,
		duration_days  INT NOT NULL DEFAULT 1,
		budget_cents   BIGINT NOT NULL DEFAULT 0,
		departure_date DATE NOT NULL,
		arrival_date   DATE NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS catalog_hotels (
		catalog_id     BIGINT UNSIGNED NOT NULL,
		hotel_id       BIGINT UNSIGNED NOT NULL,
		rooms_included INT NOT NULL DEFAULT 1,
		PRIMARY KEY (catalog_id, hotel_id),
		CONSTRAINT fk_catalog_hotels_catalog FOREIGN KEY (catalog_id) REFERENCES catalogs(id) ON DELETE CASCADE,
		CONSTRAINT fk_catalog_hotels_hotel FOREIGN KEY (hotel_id) REFERENCES hotels(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS catalog_transport (
		catalog_id     BIGINT UNSIGNED NOT NULL,
		transport_id   BIGINT UNSIGNED NOT NULL,
		seats_included INT NOT NULL DEFAULT 1,
		PRIMARY KEY (catalog_id, transport_id),
		CONSTRAINT fk_catalog_transport_catalog FOREIGN KEY (catalog_id) REFERENCES catalogs(id) ON DELETE CASCADE,
		CONSTRAINT fk_catalog_transport_transport FOREIGN KEY (transport_id) REFERENCES transport(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS catalog_food (
		catalog_id BIGINT UNSIGNED NOT NULL,
		food_id    BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (catalog_id, food_id),
		CONSTRAINT fk_catalog_food_catalog FOREIGN KEY (catalog_id) REFERENCES catalogs(id) ON DELETE CASCADE,
		CONSTRAINT fk_catalog_food_food FOREIGN KEY (food_id) REFERENCES food(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id            CHAR(36) PRIMARY KEY,
		customer_id   BIGINT UNSIGNED NOT NULL,
		catalog_id    BIGINT UNSIGNED NULL,
		is_custom     BOOLEAN NOT NULL DEFAULT FALSE,
		description   VARCHAR(500) NOT NULL DEFAULT '',
		status        ENUM('pending','confirmed','cancelled') NOT NULL DEFAULT 'pending',
		cancel_reason VARCHAR(500) NULL,
		created_at    DATETIME(3) NOT NULL,
		updated_at    DATETIME(3) NOT NULL,
		KEY ix_bookings_customer_created (customer_id, created_at),
		KEY ix_bookings_created (created_at),
		CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES customers(id),
		CONSTRAINT fk_bookings_catalog FOREIGN KEY (catalog_id) REFERENCES catalogs(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS booking_hotels (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id   CHAR(36) NOT NULL,
		hotel_id     BIGINT UNSIGNED NOT NULL,
		rooms_booked INT NOT NULL,
		check_in     DATE NOT NULL,
		check_out    DATE NOT NULL,
		KEY ix_booking_hotels_booking (booking_id),
		CONSTRAINT fk_booking_hotels_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
		CONSTRAINT fk_booking_hotels_hotel FOREIGN KEY (hotel_id) REFERENCES hotels(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS booking_transport (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id   CHAR(36) NOT NULL,
		transport_id BIGINT UNSIGNED NOT NULL,
		seats_booked INT NOT NULL,
		travel_date  DATE NOT NULL,
		KEY ix_booking_transport_booking (booking_id),
		CONSTRAINT fk_booking_transport_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
		CONSTRAINT fk_booking_transport_transport FOREIGN KEY (transport_id) REFERENCES transport(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS booking_food (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id CHAR(36) NOT NULL,
		food_id    BIGINT UNSIGNED NOT NULL,
		quantity   INT NOT NULL,
		KEY ix_booking_food_booking (booking_id),
		CONSTRAINT fk_booking_food_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
		CONSTRAINT fk_booking_food_food FOREIGN KEY (food_id) REFERENCES food(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS payments (
		id             CHAR(36) PRIMARY KEY,
		booking_id     CHAR(36) NOT NULL,
		amount_cents   BIGINT NOT NULL,
		method         ENUM('credit_card','debit_card','paypal','bank_transfer') NOT NULL,
		status         ENUM('pending','completed','failed','refunded') NOT NULL DEFAULT 'pending',
		transaction_id VARCHAR(120) NULL,
		created_at     DATETIME(3) NOT NULL,
		updated_at     DATETIME(3) NOT NULL,
		UNIQUE KEY uq_payments_booking (booking_id),
		KEY ix_payments_created (created_at),
		CONSTRAINT fk_payments_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates every table the service reads or writes.  It is safe to
// run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
