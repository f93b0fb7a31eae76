package repository

import (
	"context"
	"database/sql"
	"errors"

	"food-order-service/internal/entity"
)

type VoucherRepository struct {
	db *sql.DB
}

func NewVoucherRepository(db *sql.DB) *VoucherRepository {
	return &VoucherRepository{db}
}

const voucherColumns = `id, code, description, discount_type, discount_value, min_order_amount, start_date, end_date, usage_limit, max_uses_per_user, used_count, status`

func scanVoucher(row interface{ Scan(...any) error }) (*entity.Voucher, error) {
	v := &entity.Voucher{}
	err := row.Scan(&v.ID, &v.Code, &v.Description, &v.DiscountType, &v.DiscountValue, &v.MinOrderAmount,
		&v.StartDate, &v.EndDate, &v.UsageLimit, &v.PerUserLimit, &v.UsedCount, &v.Status)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VoucherRepository) GetVoucherByID(ctx context.Context, id int) (*entity.Voucher, error) {
	return scanVoucher(r.db.QueryRowContext(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = ?`, id))
}

func (r *VoucherRepository) GetVoucherByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	return scanVoucher(r.db.QueryRowContext(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE code = ?`, code))
}

func (r *VoucherRepository) GetVouchers(ctx context.Context) ([]*entity.Voucher, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+voucherColumns+` FROM vouchers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vouchers []*entity.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

func (r *VoucherRepository) CreateVoucher(ctx context.Context, v *entity.Voucher) (*entity.Voucher, error) {
	query := `INSERT INTO vouchers (code, description, discount_type, discount_value, min_order_amount, start_date, end_date, usage_limit, max_uses_per_user, used_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, v.Code, v.Description, v.DiscountType, v.DiscountValue, v.MinOrderAmount,
		v.StartDate, v.EndDate, v.UsageLimit, v.PerUserLimit, v.UsedCount, v.Status)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	v.ID = int(id)
	return v, nil
}

// UpdateVoucher rewrites the editable fields. used_count only moves with
// order creation and cancellation and is left alone.
func (r *VoucherRepository) UpdateVoucher(ctx context.Context, v *entity.Voucher) (*entity.Voucher, error) {
	query := `UPDATE vouchers SET code = ?, description = ?, discount_type = ?, discount_value = ?, min_order_amount = ?,
		start_date = ?, end_date = ?, usage_limit = ?, max_uses_per_user = ?, status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, v.Code, v.Description, v.DiscountType, v.DiscountValue, v.MinOrderAmount,
		v.StartDate, v.EndDate, v.UsageLimit, v.PerUserLimit, v.Status, v.ID)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VoucherRepository) DeleteVoucher(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vouchers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// CountUserUsages returns how many orders of userID redeemed voucherID.
func (r *VoucherRepository) CountUserUsages(ctx context.Context, voucherID, userID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM voucher_usages WHERE voucher_id = ? AND user_id = ?`, voucherID, userID).Scan(&n)
	return n, err
}

// ErrVoucherExhausted means a redemption would go past the voucher's usage
// limit or the user's own limit.
var ErrVoucherExhausted = errors.New("voucher usage limit reached")

// redeemVoucher counts one use of voucherID by userID for orderID inside tx.
// The limits are checked against the locked voucher row, so concurrent
// orders cannot both take the last use.
func redeemVoucher(ctx context.Context, tx *sql.Tx, voucherID, userID int, orderID int64) error {
	query := `UPDATE vouchers SET used_count = used_count + 1
		WHERE id = ? AND (usage_limit = 0 OR used_count < usage_limit)
		AND (max_uses_per_user = 0 OR max_uses_per_user > (SELECT COUNT(*) FROM voucher_usages WHERE voucher_id = ? AND user_id = ?))`
	res, err := tx.ExecContext(ctx, query, voucherID, voucherID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVoucherExhausted
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO voucher_usages (voucher_id, user_id, order_id) VALUES (?, ?, ?)`, voucherID, userID, orderID)
	return err
}

// ReleaseUsage gives back the voucher use of an order, if it had one. A
// second call for the same order changes nothing.
func (r *VoucherRepository) ReleaseUsage(ctx context.Context, orderID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var voucherID int
	err = tx.QueryRowContext(ctx, `SELECT voucher_id FROM voucher_usages WHERE order_id = ? FOR UPDATE`, orderID).Scan(&voucherID)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return nil
	}
	if err != nil {
		tx.Rollback()
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM voucher_usages WHERE order_id = ?`, orderID); err != nil {
		tx.Rollback()
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE vouchers SET used_count = GREATEST(used_count - 1, 0) WHERE id = ?`, voucherID); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
