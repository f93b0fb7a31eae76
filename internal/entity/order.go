package entity

import "time"

// Order is the immutable snapshot taken at checkout. Money fields are whole VND.
type Order struct {
	ID              int           `json:"id"`
	UserID          int           `json:"user_id"`
	Subtotal        int64         `json:"subtotal"`
	Discount        int64         `json:"discount"`
	ShippingFee     int64         `json:"shipping_fee"`
	TotalPrice      int64         `json:"total_price"`
	VoucherCode     string        `json:"voucher_code,omitempty"`
	VoucherID       int           `json:"-"`
	FullName        string        `json:"full_name"`
	Phone           string        `json:"phone"`
	ShippingAddress string        `json:"shipping_address"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentMethod   string        `json:"payment_method"`
	IdempotencyKey  string        `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	Lines           []OrderLine   `json:"lines,omitempty"`
}

// OrderLine is captured at checkout and never recomputed from the catalog.
type OrderLine struct {
	ID        int   `json:"id"`
	OrderID   int   `json:"order_id"`
	ProductID int   `json:"menu_item_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"price"`
	LineTotal int64 `json:"line_total"`
}

/*
Mysql Schema:
CREATE TABLE orders (
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
);

CREATE TABLE order_details (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id),
	menu_item_id INT NOT NULL,
	quantity INT NOT NULL,
	price BIGINT NOT NULL,
	line_total BIGINT NOT NULL
);
*/
