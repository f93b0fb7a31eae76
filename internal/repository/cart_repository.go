package repository

import (
	"context"
	"database/sql"

	"food-order-service/internal/entity"
)

// CartRepository stores one row per (user, menu item).
type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db}
}

// GetCartItems returns the user's rows joined with the current menu price,
// oldest first.
func (r *CartRepository) GetCartItems(ctx context.Context, userID int) ([]entity.CartItemRow, error) {
	query := `
		SELECT c.id, c.user_id, c.menu_item_id, c.quantity, m.price, m.name, m.img
		FROM cart_items c
		JOIN menu_items m ON m.id = c.menu_item_id
		WHERE c.user_id = ?
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []entity.CartItemRow{}
	for rows.Next() {
		var it entity.CartItemRow
		if err := rows.Scan(&it.ID, &it.UserID, &it.MenuItemID, &it.Quantity, &it.Price, &it.Name, &it.Image); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CountItems returns the number of distinct lines.
func (r *CartRepository) CountItems(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_items WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// AddItem inserts a row or adds quantity to the existing one.
func (r *CartRepository) AddItem(ctx context.Context, userID, menuItemID, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, menu_item_id, quantity) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`
	_, err := r.db.ExecContext(ctx, query, userID, menuItemID, quantity)
	return err
}

// UpdateQuantity sets the quantity of an existing row. It returns
// sql.ErrNoRows when the product is not in the cart.
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, menuItemID, quantity int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cart_items SET quantity = ? WHERE user_id = ? AND menu_item_id = ?`, quantity, userID, menuItemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the value did not change.
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_items WHERE user_id = ? AND menu_item_id = ?`, userID, menuItemID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, menuItemID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ? AND menu_item_id = ?`, userID, menuItemID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *CartRepository) ClearCart(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
