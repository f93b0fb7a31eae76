package apperr

import "errors"

// VoucherReason says why a voucher code cannot be applied.
type VoucherReason string

const (
	ReasonInactive            VoucherReason = "voucher_inactive"
	ReasonNotYetValid         VoucherReason = "voucher_not_yet_valid"
	ReasonExpired             VoucherReason = "voucher_expired"
	ReasonBelowMinimumOrder   VoucherReason = "below_minimum_order"
	ReasonUsageLimitReached   VoucherReason = "usage_limit_reached"
	ReasonPerUserLimitReached VoucherReason = "per_user_limit_reached"
	ReasonNotFound            VoucherReason = "voucher_not_found"
)

var (
	ErrVoucherInactive     = &VoucherError{Reason: ReasonInactive}
	ErrVoucherNotYetValid  = &VoucherError{Reason: ReasonNotYetValid}
	ErrVoucherExpired      = &VoucherError{Reason: ReasonExpired}
	ErrBelowMinimumOrder   = &VoucherError{Reason: ReasonBelowMinimumOrder}
	ErrUsageLimitReached   = &VoucherError{Reason: ReasonUsageLimitReached}
	ErrPerUserLimitReached = &VoucherError{Reason: ReasonPerUserLimitReached}
	ErrVoucherNotFound     = &VoucherError{Reason: ReasonNotFound}
)

var voucherMessages = map[VoucherReason]string{
	ReasonInactive:            "voucher is not active",
	ReasonNotYetValid:         "voucher is not valid yet",
	ReasonExpired:             "voucher has expired",
	ReasonBelowMinimumOrder:   "order amount is below the voucher minimum",
	ReasonUsageLimitReached:   "voucher usage limit reached",
	ReasonPerUserLimitReached: "voucher already used the maximum number of times by this user",
	ReasonNotFound:            "voucher not found",
}

// VoucherError is one rejection reason of the voucher validator.
type VoucherError struct {
	Reason VoucherReason
	// Message overrides the default text, e.g. when relayed from the server.
	Message string
}

func NewVoucherError(reason VoucherReason, message string) error {
	return &VoucherError{Reason: reason, Message: message}
}

func (e *VoucherError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if msg, ok := voucherMessages[e.Reason]; ok {
		return msg
	}
	return string(e.Reason)
}

// Is matches ErrVoucherInapplicable and any VoucherError with the same reason.
func (e *VoucherError) Is(target error) bool {
	if target == ErrVoucherInapplicable {
		return true
	}
	var other *VoucherError
	if errors.As(target, &other) {
		return other.Reason == e.Reason
	}
	return false
}

// VoucherReasonOf extracts the rejection reason, if err is a voucher error.
func VoucherReasonOf(err error) (VoucherReason, bool) {
	var ve *VoucherError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}

// ParseVoucherReason maps a reason string sent by the server back to a known
// reason. Unknown strings report false.
func ParseVoucherReason(s string) (VoucherReason, bool) {
	r := VoucherReason(s)
	_, ok := voucherMessages[r]
	return r, ok
}
