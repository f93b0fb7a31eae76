package repository

import (
	"context"
	"database/sql"

	"food-order-service/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

const orderColumns = `id, user_id, subtotal, discount, shipping_fee, total_price, voucher_code, full_name, phone, shipping_address, status, payment_status, payment_method, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*entity.Order, error) {
	o := &entity.Order{}
	err := row.Scan(&o.ID, &o.UserID, &o.Subtotal, &o.Discount, &o.ShippingFee, &o.TotalPrice, &o.VoucherCode,
		&o.FullName, &o.Phone, &o.ShippingAddress, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CreateOrder inserts the order header, any lines it carries and the use of
// its voucher in one transaction.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	var key any
	if order.IdempotencyKey != "" {
		key = order.IdempotencyKey
	}

	orderQuery := `INSERT INTO orders (user_id, subtotal, discount, shipping_fee, total_price, voucher_code, full_name, phone, shipping_address, status, payment_status, payment_method, idempotency_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery, order.UserID, order.Subtotal, order.Discount, order.ShippingFee, order.TotalPrice,
		order.VoucherCode, order.FullName, order.Phone, order.ShippingAddress, order.Status, order.PaymentStatus, order.PaymentMethod, key)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if len(order.Lines) > 0 {
		lineQuery := `INSERT INTO order_details (order_id, menu_item_id, quantity, price, line_total) VALUES `
		var values []any
		for i, l := range order.Lines {
			lineQuery += "(?, ?, ?, ?, ?),"
			values = append(values, orderID, l.ProductID, l.Quantity, l.UnitPrice, l.LineTotal)
			order.Lines[i].OrderID = int(orderID)
		}
		lineQuery = lineQuery[:len(lineQuery)-1]

		if _, err = tx.ExecContext(ctx, lineQuery, values...); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if order.VoucherID > 0 {
		if err = redeemVoucher(ctx, tx, order.VoucherID, order.UserID, orderID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	return order, nil
}

// GetOrderByIdempotencyKey finds the order an earlier request with the same
// key created.
func (r *OrderRepository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*entity.Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = ?`, key))
}

func (r *OrderRepository) CreateOrderLine(ctx context.Context, line *entity.OrderLine) (*entity.OrderLine, error) {
	query := `INSERT INTO order_details (order_id, menu_item_id, quantity, price, line_total) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	line.ID = int(id)
	return line, nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	lines, err := r.GetOrderLines(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

func (r *OrderRepository) GetOrderLines(ctx context.Context, orderID int) ([]entity.OrderLine, error) {
	query := `SELECT id, order_id, menu_item_id, quantity, price, line_total FROM order_details WHERE order_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []entity.OrderLine{}
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *OrderRepository) GetOrders(ctx context.Context) ([]*entity.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id DESC`)
}

func (r *OrderRepository) GetOrdersByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY id DESC`, userID)
}

func (r *OrderRepository) listOrders(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*entity.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus, payment entity.PaymentStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, payment_status = ? WHERE id = ?`, status, payment, id)
	return err
}
