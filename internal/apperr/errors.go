// Package apperr holds the error kinds shared by the storefront core and the
// backend. Callers classify errors with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means a mutation was attempted without a known user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNetworkFailure matches every NetworkError.
	ErrNetworkFailure = errors.New("network failure")
	// ErrRemoteRejected matches every RemoteError.
	ErrRemoteRejected = errors.New("remote rejected")
	// ErrVoucherInapplicable matches every VoucherError.
	ErrVoucherInapplicable = errors.New("voucher inapplicable")
	// ErrInvalidArgument is returned before any I/O when input is malformed.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NetworkError is a transport-level failure or timeout. It is retryable at
// the user's discretion and is never retried automatically.
type NetworkError struct {
	Op  string
	Err error
}

func NewNetworkError(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetworkFailure }

// RemoteError is a non-success answer from the backend. Message is what the
// server said and is shown to the user as is.
type RemoteError struct {
	Status  int
	Message string
}

func NewRemoteError(status int, message string) error {
	return &RemoteError{Status: status, Message: message}
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote rejected with status %d", e.Status)
	}
	return e.Message
}

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteRejected }

// InvalidArgument wraps a validation message so it matches ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
