package entity

import (
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

type VoucherStatus string

const (
	VoucherActive   VoucherStatus = "active"
	VoucherInactive VoucherStatus = "inactive"
	VoucherExpired  VoucherStatus = "expired"
)

// Voucher is a discount code. UsageLimit and PerUserLimit use zero for
// unlimited. StartDate and EndDate are inclusive calendar days.
type Voucher struct {
	ID             int             `json:"id"`
	Code           string          `json:"code"`
	Description    string          `json:"description,omitempty"`
	DiscountType   DiscountType    `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount int64           `json:"min_order_amount"`
	StartDate      Date            `json:"start_date"`
	EndDate        Date            `json:"end_date"`
	UsageLimit     int             `json:"limit"`
	PerUserLimit   int             `json:"max_uses_per_user"`
	UsedCount      int             `json:"used_count"`
	Status         VoucherStatus   `json:"status"`
}

/*
Mysql Schema:
CREATE TABLE vouchers (
	id INT AUTO_INCREMENT PRIMARY KEY,
	code VARCHAR(50) NOT NULL UNIQUE,
	description VARCHAR(255) NOT NULL DEFAULT '',
	discount_type VARCHAR(10) NOT NULL,
	discount_value DECIMAL(12,2) NOT NULL,
	min_order_amount BIGINT NOT NULL DEFAULT 0,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	usage_limit INT NOT NULL DEFAULT 0,
	max_uses_per_user INT NOT NULL DEFAULT 0,
	used_count INT NOT NULL DEFAULT 0,
	status VARCHAR(10) NOT NULL DEFAULT 'active'
);

CREATE TABLE voucher_usages (
	id INT AUTO_INCREMENT PRIMARY KEY,
	voucher_id INT NOT NULL,
	user_id INT NOT NULL,
	order_id INT NOT NULL UNIQUE
);
*/

// EffectiveStatus reports the stored status, or expired once the window has
// closed on the given day.
func (v Voucher) EffectiveStatus(today Date) VoucherStatus {
	if !v.EndDate.IsZero() && today.After(v.EndDate) {
		return VoucherExpired
	}
	return v.Status
}
