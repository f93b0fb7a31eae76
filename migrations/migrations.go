package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

var tables = []struct {
	name  string
	query string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			fullname VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL,
			phone_number VARCHAR(20) NOT NULL UNIQUE,
			address VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role_name VARCHAR(20) NOT NULL DEFAULT 'customer',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`},
	{"categories", `
		CREATE TABLE IF NOT EXISTS categories (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description VARCHAR(255) NOT NULL DEFAULT '',
			image VARCHAR(500) NOT NULL DEFAULT ''
		);`},
	{"menu_items", `
		CREATE TABLE IF NOT EXISTS menu_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			price BIGINT NOT NULL,
			img VARCHAR(500) NOT NULL DEFAULT '',
			category_id INT NOT NULL DEFAULT 0,
			available TINYINT(1) NOT NULL DEFAULT 1
		);`},
	{"cart_items", `
		CREATE TABLE IF NOT EXISTS cart_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			menu_item_id INT NOT NULL,
			quantity INT NOT NULL,
			UNIQUE KEY uq_cart_user_item (user_id, menu_item_id),
			FOREIGN KEY (menu_item_id) REFERENCES menu_items(id) ON DELETE CASCADE
		);`},
	{"vouchers", `
		CREATE TABLE IF NOT EXISTS vouchers (
			id INT AUTO_INCREMENT PRIMARY KEY,
			code VARCHAR(50) NOT NULL UNIQUE,
			description VARCHAR(255) NOT NULL DEFAULT '',
			discount_type VARCHAR(10) NOT NULL,
			discount_value DECIMAL(12,2) NOT NULL,
			min_order_amount BIGINT NOT NULL DEFAULT 0,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			usage_limit INT NOT NULL DEFAULT 0,
			max_uses_per_user INT NOT NULL DEFAULT 0,
			used_count INT NOT NULL DEFAULT 0,
			status VARCHAR(10) NOT NULL DEFAULT 'active'
		);`},
	{"voucher_usages", `
		CREATE TABLE IF NOT EXISTS voucher_usages (
			id INT AUTO_INCREMENT PRIMARY KEY,
			voucher_id INT NOT NULL,
			user_id INT NOT NULL,
			order_id INT NOT NULL UNIQUE,
			FOREIGN KEY (voucher_id) REFERENCES vouchers(id) ON DELETE CASCADE
		);`},
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			subtotal BIGINT NOT NULL,
			discount BIGINT NOT NULL,
			shipping_fee BIGINT NOT NULL,
			total_price BIGINT NOT NULL,
			voucher_code VARCHAR(50) NOT NULL DEFAULT '',
			full_name VARCHAR(100) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			shipping_address VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL,
			payment_status VARCHAR(20) NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			idempotency_key VARCHAR(64) NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`},
	{"order_details", `
		CREATE TABLE IF NOT EXISTS order_details (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			menu_item_id INT NOT NULL,
			quantity INT NOT NULL,
			price BIGINT NOT NULL,
			line_total BIGINT NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);`},
}

// AutoMigrate creates every table that does not exist yet, in dependency
// order, retrying each one up to retries times.
func AutoMigrate(db *sql.DB, retries int, wait time.Duration) error {
	for _, t := range tables {
		_, err := db.Exec(t.query)
		for i := 0; err != nil && i < retries; i++ {
			time.Sleep(wait)
			_, err = db.Exec(t.query)
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", t.name, err)
		}
	}
	return nil
}
