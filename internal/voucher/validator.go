// Package voucher decides whether a voucher can be applied to an order.
package voucher

import (
	"context"
	"time"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
)

// Validate checks v against the subtotal on the day now falls on. It returns
// nil or exactly one *apperr.VoucherError. The per-user cap needs the user's
// redemption history and is left to the caller (see Checker).
func Validate(v *entity.Voucher, subtotal int64, now time.Time) error {
	if v == nil {
		return apperr.ErrVoucherNotFound
	}

	today := entity.DateOf(now)
	if !v.StartDate.IsZero() && today.Before(v.StartDate) {
		return apperr.ErrVoucherNotYetValid
	}
	if !v.EndDate.IsZero() && today.After(v.EndDate) {
		return apperr.ErrVoucherExpired
	}

	switch v.Status {
	case entity.VoucherActive:
	case entity.VoucherExpired:
		return apperr.ErrVoucherExpired
	default:
		return apperr.ErrVoucherInactive
	}

	if subtotal < v.MinOrderAmount {
		return apperr.ErrBelowMinimumOrder
	}

	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return apperr.ErrUsageLimitReached
	}

	return nil
}

// ValidateForUser runs Validate and then the per-user cap, given how many
// times the user has already redeemed v.
func ValidateForUser(v *entity.Voucher, subtotal int64, userUses int, now time.Time) error {
	if err := Validate(v, subtotal, now); err != nil {
		return err
	}
	if v.PerUserLimit > 0 && userUses >= v.PerUserLimit {
		return apperr.ErrPerUserLimitReached
	}
	return nil
}

// CheckResult is the server's verdict on a code for a given subtotal.
type CheckResult struct {
	Voucher  entity.Voucher
	Discount int64
}

// RemoteChecker asks the backend to validate a code for a user, which
// includes the per-user cap.
type RemoteChecker interface {
	CheckVoucher(ctx context.Context, code string, userID int, subtotal int64) (*CheckResult, error)
}

// Checker validates a code remotely and then re-runs the local rules on the
// voucher the server returned, so a stale server answer is still caught.
type Checker struct {
	remote RemoteChecker
	now    func() time.Time
}

func NewChecker(remote RemoteChecker) *Checker {
	return &Checker{remote: remote, now: time.Now}
}

// Check returns the voucher for code if it applies to subtotal for userID.
func (c *Checker) Check(ctx context.Context, code string, userID int, subtotal int64) (*entity.Voucher, error) {
	code = entity.NormalizeVoucherCode(code)
	if code == "" {
		return nil, apperr.InvalidArgument("voucher code is empty")
	}
	if userID <= 0 {
		return nil, apperr.ErrNotAuthenticated
	}

	res, err := c.remote.CheckVoucher(ctx, code, userID, subtotal)
	if err != nil {
		return nil, err
	}

	v := res.Voucher
	if err := Validate(&v, subtotal, c.now()); err != nil {
		return nil, err
	}
	return &v, nil
}
