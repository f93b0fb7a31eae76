package repository

import (
	"context"
	"database/sql"

	"food-order-service/internal/entity"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db}
}

const categoryColumns = `id, name, description, image`

func scanCategory(row interface{ Scan(...any) error }) (*entity.Category, error) {
	c := &entity.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Image); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id int) (*entity.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
}

func (r *CategoryRepository) GetCategoryByName(ctx context.Context, name string) (*entity.Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name))
}

func (r *CategoryRepository) GetCategories(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*entity.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name, description, image) VALUES (?, ?, ?)`, c.Name, c.Description, c.Image)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	c.ID = int(id)
	return c, nil
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	_, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ?, description = ?, image = ? WHERE id = ?`, c.Name, c.Description, c.Image, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CountMenuItems returns how many menu items belong to category id.
func (r *CategoryRepository) CountMenuItems(ctx context.Context, id int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items WHERE category_id = ?`, id).Scan(&n)
	return n, err
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
