package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
	"food-order-service/internal/repository"
)

func newVoucherService(db *sql.DB, now time.Time) *VoucherService {
	svc := NewVoucherService(repository.NewVoucherRepository(db))
	svc.now = func() time.Time { return now }
	return svc
}

func save10Row() *sqlmock.Rows {
	return sqlmock.NewRows(voucherCols).
		AddRow(4, "SAVE10", "", "percent", "10", 50000, "2024-06-01", "2024-06-30", 100, 1, 3, "active")
}

func TestVoucherServiceCheck(t *testing.T) {
	ctx := context.Background()
	june15 := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("applies", func(t *testing.T) {
		db, mock := newMock(t)
		svc := newVoucherService(db, june15)

		mock.ExpectQuery(q("FROM vouchers WHERE code = ?")).WithArgs("SAVE10").WillReturnRows(save10Row())
		mock.ExpectQuery(q("FROM voucher_usages WHERE voucher_id = ? AND user_id = ?")).WithArgs(4, 7).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		v, discount, err := svc.Check(ctx, " save10 ", 7, 120000)
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", v.Code)
		assert.Equal(t, int64(12000), discount)
	})

	t.Run("per-user limit", func(t *testing.T) {
		db, mock := newMock(t)
		svc := newVoucherService(db, june15)

		mock.ExpectQuery(q("FROM vouchers WHERE code = ?")).WillReturnRows(save10Row())
		mock.ExpectQuery(q("FROM voucher_usages")).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, _, err := svc.Check(ctx, "SAVE10", 7, 120000)
		assert.ErrorIs(t, err, apperr.ErrPerUserLimitReached)
	})

	t.Run("expired", func(t *testing.T) {
		db, mock := newMock(t)
		svc := newVoucherService(db, june15.AddDate(0, 1, 0))

		mock.ExpectQuery(q("FROM vouchers WHERE code = ?")).WillReturnRows(save10Row())
		mock.ExpectQuery(q("FROM voucher_usages")).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		_, _, err := svc.Check(ctx, "SAVE10", 7, 120000)
		assert.ErrorIs(t, err, apperr.ErrVoucherExpired)
	})

	t.Run("unknown code", func(t *testing.T) {
		db, mock := newMock(t)
		svc := newVoucherService(db, june15)

		mock.ExpectQuery(q("FROM vouchers WHERE code = ?")).WithArgs("NOPE").WillReturnError(sql.ErrNoRows)

		_, _, err := svc.Check(ctx, "nope", 7, 120000)
		assert.ErrorIs(t, err, apperr.ErrVoucherNotFound)
	})
}

func TestVoucherServiceGetVouchersReportsExpiry(t *testing.T) {
	db, mock := newMock(t)
	svc := newVoucherService(db, time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery(q("FROM vouchers ORDER BY id")).WillReturnRows(save10Row())

	vouchers, err := svc.GetVouchers(context.Background())
	require.NoError(t, err)
	require.Len(t, vouchers, 1)
	assert.Equal(t, entity.VoucherExpired, vouchers[0].Status)
}

func TestVoucherServiceCreate(t *testing.T) {
	ctx := context.Background()
	valid := func() *entity.Voucher {
		return &entity.Voucher{
			Code:          "summer",
			DiscountType:  "percentage",
			DiscountValue: decimal.NewFromInt(15),
			StartDate:     entity.NewDate(2024, 6, 1),
			EndDate:       entity.NewDate(2024, 8, 31),
		}
	}

	t.Run("normalizes and stores", func(t *testing.T) {
		db, mock := newMock(t)
		svc := newVoucherService(db, time.Now())

		mock.ExpectQuery(q("FROM vouchers WHERE code = ?")).WithArgs("SUMMER").WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(q("INSERT INTO vouchers")).WillReturnResult(sqlmock.NewResult(11, 1))

		v, err := svc.CreateVoucher(ctx, valid())
		require.NoError(t, err)
		assert.Equal(t, 11, v.ID)
		assert.Equal(t, "SUMMER", v.Code)
		assert.Equal(t, entity.DiscountPercent, v.DiscountType)
		assert.Equal(t, entity.VoucherActive, v.Status)
	})

	t.Run("duplicate code", func(t *testing.T) {
		db, mock := newMock(t)
		svc := newVoucherService(db, time.Now())

		mock.ExpectQuery(q("FROM vouchers WHERE code = ?")).WithArgs("SUMMER").WillReturnRows(save10Row())

		_, err := svc.CreateVoucher(ctx, valid())
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc := newVoucherService(nil, time.Now())
		tests := []struct {
			name   string
			mutate func(v *entity.Voucher)
		}{
			{"empty code", func(v *entity.Voucher) { v.Code = " " }},
			{"unknown type", func(v *entity.Voucher) { v.DiscountType = "bogo" }},
			{"percent over 100", func(v *entity.Voucher) { v.DiscountValue = decimal.NewFromInt(101) }},
			{"negative limit", func(v *entity.Voucher) { v.UsageLimit = -1 }},
			{"window reversed", func(v *entity.Voucher) { v.EndDate = entity.NewDate(2024, 5, 1) }},
			{"missing dates", func(v *entity.Voucher) { v.StartDate = entity.Date{} }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v := valid()
				tt.mutate(v)
				_, err := svc.CreateVoucher(ctx, v)
				assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
			})
		}
	})
}
