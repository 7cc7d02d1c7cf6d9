package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the tables owned by the service.  bookings rows are never
// deleted; slot_locks holds one row per (date, time) that booking
// transactions lock to serialize admission for that slot.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customer_name VARCHAR(120) NOT NULL,
		email VARCHAR(254) NOT NULL,
		phone VARCHAR(40) NOT NULL,
		date DATE NOT NULL,
		time VARCHAR(16) NOT NULL,
		time_minutes SMALLINT UNSIGNED NOT NULL,
		party_size TINYINT UNSIGNED NOT NULL,
		special_requests TEXT NULL,
		status ENUM('confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_bookings_slot (date, time, status),
		KEY idx_bookings_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS slot_locks (
		date DATE NOT NULL,
		time VARCHAR(16) NOT NULL,
		PRIMARY KEY (date, time)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS staff_users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(254) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		role ENUM('STAFF','MANAGER') NOT NULL DEFAULT 'STAFF',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES staff_users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
