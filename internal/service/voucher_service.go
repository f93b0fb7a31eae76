package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
	"food-order-service/internal/pricing"
	"food-order-service/internal/repository"
	"food-order-service/internal/voucher"
)

var hundred = decimal.NewFromInt(100)

type VoucherService struct {
	repo *repository.VoucherRepository
	now  func() time.Time
}

// NewVoucherService creates a new instance of VoucherService.
func NewVoucherService(repo *repository.VoucherRepository) *VoucherService {
	return &VoucherService{repo: repo, now: time.Now}
}

func (s *VoucherService) today() entity.Date {
	return entity.DateOf(s.now())
}

// GetVouchers lists all vouchers with their status as of today.
func (s *VoucherService) GetVouchers(ctx context.Context) ([]*entity.Voucher, error) {
	vouchers, err := s.repo.GetVouchers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting vouchers")
		return nil, err
	}
	today := s.today()
	for _, v := range vouchers {
		v.Status = v.EffectiveStatus(today)
	}
	if vouchers == nil {
		vouchers = []*entity.Voucher{}
	}
	return vouchers, nil
}

func (s *VoucherService) GetVoucherByID(ctx context.Context, id int) (*entity.Voucher, error) {
	v, err := s.repo.GetVoucherByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "voucher", id)
	}
	v.Status = v.EffectiveStatus(s.today())
	return v, nil
}

func validateVoucher(v *entity.Voucher) error {
	v.Code = entity.NormalizeVoucherCode(v.Code)
	if v.Code == "" {
		return apperr.InvalidArgument("code is required")
	}

	t, err := entity.ParseDiscountType(string(v.DiscountType))
	if err != nil {
		return apperr.InvalidArgument("%v", err)
	}
	v.DiscountType = t

	st, err := entity.ParseVoucherStatus(string(v.Status))
	if err != nil {
		return apperr.InvalidArgument("%v", err)
	}
	v.Status = st

	if v.DiscountValue.IsNegative() || v.MinOrderAmount < 0 || v.UsageLimit < 0 || v.PerUserLimit < 0 {
		return apperr.InvalidArgument("amounts and limits must not be negative")
	}
	if v.DiscountType == entity.DiscountPercent && v.DiscountValue.GreaterThan(hundred) {
		return apperr.InvalidArgument("a percent discount cannot exceed 100")
	}
	if v.StartDate.IsZero() || v.EndDate.IsZero() {
		return apperr.InvalidArgument("start_date and end_date are required")
	}
	if v.EndDate.Before(v.StartDate) {
		return apperr.InvalidArgument("end_date is before start_date")
	}
	return nil
}

func (s *VoucherService) CreateVoucher(ctx context.Context, v *entity.Voucher) (*entity.Voucher, error) {
	if err := validateVoucher(v); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetVoucherByCode(ctx, v.Code); err == nil {
		return nil, fmt.Errorf("voucher code %s already exists: %w", v.Code, ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	v.UsedCount = 0
	created, err := s.repo.CreateVoucher(ctx, v)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating voucher")
		return nil, err
	}
	return created, nil
}

func (s *VoucherService) UpdateVoucher(ctx context.Context, v *entity.Voucher) (*entity.Voucher, error) {
	if err := validateVoucher(v); err != nil {
		return nil, err
	}
	current, err := s.repo.GetVoucherByID(ctx, v.ID)
	if err != nil {
		return nil, notFound(err, "voucher", v.ID)
	}
	if other, err := s.repo.GetVoucherByCode(ctx, v.Code); err == nil && other.ID != v.ID {
		return nil, fmt.Errorf("voucher code %s already exists: %w", v.Code, ErrConflict)
	}

	v.UsedCount = current.UsedCount
	updated, err := s.repo.UpdateVoucher(ctx, v)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating voucher %d", v.ID)
		return nil, err
	}
	return updated, nil
}

func (s *VoucherService) DeleteVoucher(ctx context.Context, id int) error {
	if err := s.repo.DeleteVoucher(ctx, id); err != nil {
		return notFound(err, "voucher", id)
	}
	return nil
}

// Check validates code for userID against subtotal, including the per-user
// cap, and returns the voucher with the discount it grants.
func (s *VoucherService) Check(ctx context.Context, code string, userID int, subtotal int64) (*entity.Voucher, int64, error) {
	code = entity.NormalizeVoucherCode(code)
	if code == "" {
		return nil, 0, apperr.InvalidArgument("voucher code is empty")
	}
	if subtotal < 0 {
		return nil, 0, apperr.InvalidArgument("subtotal must not be negative")
	}

	v, err := s.repo.GetVoucherByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, apperr.ErrVoucherNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting voucher %s", code)
		return nil, 0, err
	}

	uses, err := s.repo.CountUserUsages(ctx, v.ID, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error counting usages of voucher %s", code)
		return nil, 0, err
	}

	if err := voucher.ValidateForUser(v, subtotal, uses, s.now()); err != nil {
		return nil, 0, err
	}
	return v, pricing.Discount(subtotal, v), nil
}

// ReleaseUsage gives back the voucher use of a cancelled order.
func (s *VoucherService) ReleaseUsage(ctx context.Context, orderID int) error {
	return s.repo.ReleaseUsage(ctx, orderID)
}
