package repository

import (
	"context"
	"database/sql"

	"food-order-service/internal/entity"
)

type MenuItemRepository struct {
	db *sql.DB
}

func NewMenuItemRepository(db *sql.DB) *MenuItemRepository {
	return &MenuItemRepository{db}
}

const menuItemColumns = `id, name, description, price, img, category_id, available`

func (r *MenuItemRepository) GetMenuItemByID(ctx context.Context, id int) (*entity.MenuItem, error) {
	item := &entity.MenuItem{}
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.Image, &item.CategoryID, &item.Available)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *MenuItemRepository) GetMenuItems(ctx context.Context) ([]*entity.MenuItem, error) {
	var items []*entity.MenuItem

	query := `SELECT ` + menuItemColumns + ` FROM menu_items ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.MenuItem
		err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.Image, &item.CategoryID, &item.Available)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *MenuItemRepository) CreateMenuItem(ctx context.Context, item *entity.MenuItem) (*entity.MenuItem, error) {
	query := `INSERT INTO menu_items (name, description, price, img, category_id, available) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, item.Name, item.Description, item.Price, item.Image, item.CategoryID, item.Available)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	item.ID = int(id)
	return item, nil
}

func (r *MenuItemRepository) UpdateMenuItem(ctx context.Context, item *entity.MenuItem) (*entity.MenuItem, error) {
	query := `UPDATE menu_items SET name = ?, description = ?, price = ?, img = ?, category_id = ?, available = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, item.Name, item.Description, item.Price, item.Image, item.CategoryID, item.Available, item.ID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *MenuItemRepository) DeleteMenuItem(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// expectAffected turns "no row matched" into sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
