// Package pricing derives order totals from cart lines and an optional voucher.
// All amounts are whole VND.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"food-order-service/internal/entity"
	"food-order-service/internal/voucher"
)

// DefaultShippingFee is the flat delivery fee charged per order.
const DefaultShippingFee int64 = 30000

var hundred = decimal.NewFromInt(100)

// Subtotal is the sum of unit price times quantity over all lines.
func Subtotal(lines []entity.CartLine) int64 {
	var total int64
	for _, l := range lines {
		if l.Quantity <= 0 || l.UnitPrice <= 0 {
			continue
		}
		total += l.LineTotal()
	}
	return total
}

// ItemCount is the number of distinct lines, not the number of units.
func ItemCount(lines []entity.CartLine) int {
	return len(lines)
}

// Discount is the amount v takes off subtotal. It is zero without a voucher
// or below the voucher's minimum, and never exceeds subtotal.
func Discount(subtotal int64, v *entity.Voucher) int64 {
	if v == nil || subtotal <= 0 || subtotal < v.MinOrderAmount {
		return 0
	}
	if v.DiscountValue.IsNegative() {
		return 0
	}

	sub := decimal.NewFromInt(subtotal)
	var d decimal.Decimal
	switch v.DiscountType {
	case entity.DiscountPercent:
		d = sub.Mul(v.DiscountValue).Div(hundred).Floor()
	case entity.DiscountFixed:
		d = v.DiscountValue.Floor()
	default:
		return 0
	}

	if d.GreaterThan(sub) {
		return subtotal
	}
	return d.IntPart()
}

// GrandTotal is subtotal minus discount plus shipping, never below zero.
func GrandTotal(subtotal, discount, shipping int64) int64 {
	total := subtotal - discount + shipping
	if total < 0 {
		return 0
	}
	return total
}

// Totals is everything the checkout screen shows.
type Totals struct {
	ItemCount   int
	Subtotal    int64
	Discount    int64
	ShippingFee int64
	GrandTotal  int64
	// VoucherErr is set when a voucher was given but does not apply.
	VoucherErr error
}

// Quote computes the totals of lines with an optional voucher. An
// inapplicable voucher gives no discount and its reason lands in VoucherErr.
func Quote(lines []entity.CartLine, v *entity.Voucher, shipping int64, now time.Time) Totals {
	t := Totals{
		ItemCount:   ItemCount(lines),
		Subtotal:    Subtotal(lines),
		ShippingFee: shipping,
	}
	if v != nil {
		if err := voucher.Validate(v, t.Subtotal, now); err != nil {
			t.VoucherErr = err
		} else {
			t.Discount = Discount(t.Subtotal, v)
		}
	}
	t.GrandTotal = GrandTotal(t.Subtotal, t.Discount, t.ShippingFee)
	return t
}
