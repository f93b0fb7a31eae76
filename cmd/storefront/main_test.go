package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"food-order-service/internal/apperr"
	"food-order-service/internal/checkout"
	"food-order-service/internal/session"
)

func TestVND(t *testing.T) {
	tests := map[int64]string{
		0:        "0 ₫",
		500:      "500 ₫",
		45000:    "45.000 ₫",
		1234567:  "1.234.567 ₫",
		-30000:   "-30.000 ₫",
		10000000: "10.000.000 ₫",
	}
	for in, want := range tests {
		assert.Equal(t, want, vnd(in), in)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "please log in first", describe(apperr.ErrNotAuthenticated))
	assert.Equal(t, "your cart is empty", describe(fmt.Errorf("checkout: %w", checkout.ErrEmptyCart)))
	assert.Contains(t, describe(apperr.NewNetworkError("GET /cart/1", errors.New("dial tcp: refused"))), "cannot reach the server")
	assert.Contains(t, describe(apperr.ErrVoucherExpired), "voucher cannot be used")
	assert.Equal(t, "out of stock", describe(apperr.NewRemoteError(409, "out of stock")))
}

func TestMemorySessionHintsAtRedis(t *testing.T) {
	a := &app{session: session.New(nil, session.NewMemoryStore()), inMemory: true}

	called := false
	err := a.withUser(func(int) error { called = true; return nil })
	assert.False(t, called)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)
	assert.Contains(t, describe(err), "--redis")

	err = a.placeOrder(context.Background(), checkout.ShippingInfo{}, "")
	assert.Contains(t, describe(err), "--redis")

	a.inMemory = false
	err = a.withUser(func(int) error { return nil })
	assert.Equal(t, "please log in first", describe(err))
}
