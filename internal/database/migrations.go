package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so every startup can run them.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ingredients (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(120) NOT NULL UNIQUE,
		current_stock DECIMAL(12,3) NOT NULL DEFAULT 0,
		min_stock     DECIMAL(12,3) NOT NULL DEFAULT 0,
		max_stock     DECIMAL(12,3) NOT NULL DEFAULT 0,
		unit          VARCHAR(20) NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT chk_stock_non_negative CHECK (current_stock >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS menu_items (
		id                   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name                 VARCHAR(150) NOT NULL,
		description          VARCHAR(500) NOT NULL DEFAULT '',
		price                DECIMAL(10,2) NOT NULL,
		requires_preparation BOOLEAN NOT NULL DEFAULT TRUE,
		active               BOOLEAN NOT NULL DEFAULT TRUE,
		available            BOOLEAN NOT NULL DEFAULT TRUE,
		created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS recipe_lines (
		menu_item_id  BIGINT UNSIGNED NOT NULL,
		ingredient_id BIGINT UNSIGNED NOT NULL,
		quantity      DECIMAL(12,3) NOT NULL,
		PRIMARY KEY (menu_item_id, ingredient_id),
		FOREIGN KEY (menu_item_id) REFERENCES menu_items(id) ON DELETE CASCADE,
		FOREIGN KEY (ingredient_id) REFERENCES ingredients(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS restaurant_tables (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		table_number INT NOT NULL UNIQUE,
		capacity     INT NOT NULL,
		location     VARCHAR(120) NULL,
		status       VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
		is_occupied  BOOLEAN NOT NULL DEFAULT FALSE,
		comments     VARCHAR(300) NULL,
		created_by   VARCHAR(100) NULL,
		updated_by   VARCHAR(100) NULL,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS orders (
		id                  BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		order_number        VARCHAR(20) NOT NULL UNIQUE,
		order_type          VARCHAR(10) NOT NULL,
		status              VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		customer_name       VARCHAR(150) NOT NULL DEFAULT '',
		customer_phone      VARCHAR(30) NULL,
		delivery_address    VARCHAR(300) NULL,
		delivery_references VARCHAR(300) NULL,
		table_id            BIGINT UNSIGNED NULL,
		customer_id         BIGINT UNSIGNED NULL,
		payment_method      VARCHAR(20) NULL,
		subtotal            DECIMAL(10,2) NOT NULL DEFAULT 0,
		tax_rate            DECIMAL(5,2) NOT NULL DEFAULT 0,
		tax_amount          DECIMAL(10,2) NOT NULL DEFAULT 0,
		tip                 DECIMAL(10,2) NOT NULL DEFAULT 0,
		total               DECIMAL(10,2) NOT NULL DEFAULT 0,
		created_by          VARCHAR(100) NOT NULL,
		updated_by          VARCHAR(100) NULL,
		prepared_by         VARCHAR(100) NULL,
		paid_by             VARCHAR(100) NULL,
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_orders_status (status),
		INDEX idx_orders_table (table_id, status),
		FOREIGN KEY (table_id) REFERENCES restaurant_tables(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		order_id     BIGINT UNSIGNED NOT NULL,
		menu_item_id BIGINT UNSIGNED NOT NULL,
		quantity     INT NOT NULL,
		unit_price   DECIMAL(10,2) NOT NULL,
		subtotal     DECIMAL(10,2) NOT NULL,
		status       VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		is_new       BOOLEAN NOT NULL DEFAULT FALSE,
		comments     VARCHAR(300) NULL,
		prepared_by  VARCHAR(100) NULL,
		added_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_order_items_order (order_id),
		FOREIGN KEY (order_id) REFERENCES orders(id),
		FOREIGN KEY (menu_item_id) REFERENCES menu_items(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		table_id         BIGINT UNSIGNED NOT NULL,
		customer_name    VARCHAR(150) NOT NULL,
		customer_phone   VARCHAR(30) NOT NULL,
		customer_email   VARCHAR(150) NULL,
		guests           INT NOT NULL,
		reservation_date DATE NOT NULL,
		reservation_time TIME NOT NULL,
		status           VARCHAR(20) NOT NULL DEFAULT 'RESERVED',
		special_requests VARCHAR(300) NULL,
		created_by       VARCHAR(100) NOT NULL,
		updated_by       VARCHAR(100) NULL,
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_reservations_table_date (table_id, reservation_date, status),
		FOREIGN KEY (table_id) REFERENCES restaurant_tables(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS settings (
		id                   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		restaurant_name      VARCHAR(150) NOT NULL,
		slogan               VARCHAR(200) NULL,
		address              VARCHAR(300) NULL,
		phone                VARCHAR(30) NULL,
		email                VARCHAR(150) NULL,
		tax_rate             DECIMAL(5,2) NOT NULL DEFAULT 0,
		avg_consumption_mins INT NOT NULL DEFAULT 120,
		created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS settings_payment_methods (
		settings_id BIGINT UNSIGNED NOT NULL,
		method      VARCHAR(20) NOT NULL,
		enabled     BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (settings_id, method),
		FOREIGN KEY (settings_id) REFERENCES settings(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS business_hours (
		settings_id BIGINT UNSIGNED NOT NULL,
		day_of_week TINYINT NOT NULL,
		opens_at    TIME NOT NULL,
		closes_at   TIME NOT NULL,
		closed      BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (settings_id, day_of_week),
		FOREIGN KEY (settings_id) REFERENCES settings(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}
