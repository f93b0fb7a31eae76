package entity

import (
	"fmt"
	"strings"
)

// OrderStatus is the canonical five-state order lifecycle. The admin screens
// and the customer screens of the mobile app spell the states differently;
// every spelling is mapped here before it reaches the rest of the code.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatusAliases = map[string]OrderStatus{
	"pending":    OrderPending,
	"processing": OrderProcessing,
	"confirmed":  OrderProcessing,
	"preparing":  OrderProcessing,
	"shipped":    OrderShipped,
	"delivering": OrderShipped,
	"delivered":  OrderDelivered,
	"completed":  OrderDelivered,
	"cancelled":  OrderCancelled,
	"canceled":   OrderCancelled,
}

var orderStatusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st, ok := orderStatusAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether an order may move from s to next. Orders only
// move forward; cancelling is allowed until the order has shipped.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == OrderCancelled {
		return s == OrderPending || s == OrderProcessing
	}
	return orderStatusRank[next] > orderStatusRank[s]
}

// PaymentStatus is binary: the backend's "pending" means not yet paid.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return PaymentPaid, nil
	case "unpaid", "pending", "":
		return PaymentUnpaid, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

func ParseVoucherStatus(s string) (VoucherStatus, error) {
	switch VoucherStatus(strings.ToLower(strings.TrimSpace(s))) {
	case VoucherActive, "":
		return VoucherActive, nil
	case VoucherInactive:
		return VoucherInactive, nil
	case VoucherExpired:
		return VoucherExpired, nil
	}
	return "", fmt.Errorf("unknown voucher status %q", s)
}

func ParseDiscountType(s string) (DiscountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percent", "percentage":
		return DiscountPercent, nil
	case "fixed":
		return DiscountFixed, nil
	}
	return "", fmt.Errorf("unknown discount type %q", s)
}

// NormalizeVoucherCode upper-cases and trims a human-entered code.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
