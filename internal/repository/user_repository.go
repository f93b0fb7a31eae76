package repository

import (
	"context"
	"database/sql"

	"food-order-service/internal/entity"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

const userColumns = `id, fullname, email, phone_number, address, role_name, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.PhoneNumber, &user.Address, &user.RoleName, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, phone))
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (fullname, email, phone_number, address, role_name, password_hash) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.FullName, user.Email, user.PhoneNumber, user.Address, user.RoleName, user.PasswordHash)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	user.ID = int(id)
	return user, nil
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser rewrites the profile fields and the role. The password hash is
// changed only through UpdatePassword.
func (r *UserRepository) UpdateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `UPDATE users SET fullname = ?, email = ?, phone_number = ?, address = ?, role_name = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, user.FullName, user.Email, user.PhoneNumber, user.Address, user.RoleName, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteUser removes the account and its cart. Orders stay for the records.
func (r *UserRepository) DeleteUser(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err = expectAffected(res); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
