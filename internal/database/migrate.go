package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        name       VARCHAR(200)    NOT NULL,
        area       VARCHAR(100)    NOT NULL,
        latitude   DOUBLE          NOT NULL,
        longitude  DOUBLE          NOT NULL,
        cuisines   VARCHAR(255)    NULL,
        amenities  VARCHAR(255)    NULL,
        rating     DOUBLE          NULL,
        created_at DATETIME        NOT NULL,
        KEY idx_restaurants_name (name),
        KEY idx_restaurants_area (area),
        KEY idx_restaurants_lat_lon (latitude, longitude)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS restaurant_tables (
        id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        restaurant_id BIGINT UNSIGNED NOT NULL,
        table_no      INT             NOT NULL,
        seats         INT             NOT NULL DEFAULT 6,
        UNIQUE KEY uq_tables_restaurant_no (restaurant_id, table_no),
        CONSTRAINT fk_tables_restaurant FOREIGN KEY (restaurant_id)
            REFERENCES restaurants (id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        name       VARCHAR(100)    NULL,
        phone      VARCHAR(32)     NOT NULL,
        email      VARCHAR(190)    NULL,
        created_at DATETIME        NOT NULL,
        UNIQUE KEY uq_users_phone (phone)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
        id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        user_id       BIGINT UNSIGNED NOT NULL,
        restaurant_id BIGINT UNSIGNED NOT NULL,
        start_dt      DATETIME        NOT NULL,
        end_dt        DATETIME        NOT NULL,
        guests        INT             NOT NULL,
        status        VARCHAR(20)     NOT NULL DEFAULT 'confirmed',
        created_at    DATETIME        NOT NULL,
        KEY idx_bookings_restaurant_window (restaurant_id, start_dt, end_dt),
        KEY idx_bookings_user (user_id),
        CONSTRAINT fk_bookings_user FOREIGN KEY (user_id)
            REFERENCES users (id) ON DELETE CASCADE,
        CONSTRAINT fk_bookings_restaurant FOREIGN KEY (restaurant_id)
            REFERENCES restaurants (id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        booking_id BIGINT UNSIGNED NOT NULL,
        table_id   BIGINT UNSIGNED NOT NULL,
        created_at DATETIME        NOT NULL,
        UNIQUE KEY uq_reservations_booking_table (booking_id, table_id),
        KEY idx_reservations_table (table_id),
        CONSTRAINT fk_reservations_booking FOREIGN KEY (booking_id)
            REFERENCES bookings (id) ON DELETE CASCADE,
        CONSTRAINT fk_reservations_table FOREIGN KEY (table_id)
            REFERENCES restaurant_tables (id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS feedbacks (
        id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        booking_id    BIGINT UNSIGNED NOT NULL,
        user_id       BIGINT UNSIGNED NOT NULL,
        restaurant_id BIGINT UNSIGNED NOT NULL,
        stars         TINYINT         NOT NULL,
        text          TEXT            NULL,
        created_at    DATETIME        NOT NULL,
        UNIQUE KEY uq_feedback_booking (booking_id),
        KEY idx_feedback_user_created (user_id, created_at),
        KEY idx_feedback_restaurant_created (restaurant_id, created_at),
        CONSTRAINT fk_feedback_booking FOREIGN KEY (booking_id)
            REFERENCES bookings (id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
