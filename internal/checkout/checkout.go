// Package checkout turns the current cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"food-order-service/internal/apperr"
	"food-order-service/internal/client"
	"food-order-service/internal/entity"
	"food-order-service/internal/pricing"
)

var ErrEmptyCart = errors.New("cart is empty")

const DefaultPaymentMethod = "cod"

type OrderAPI interface {
	CreateOrder(ctx context.Context, r client.OrderRequest, idempotencyKey string) (*entity.Order, error)
	CreateOrderLine(ctx context.Context, line entity.OrderLine) (*entity.OrderLine, error)
	CancelOrder(ctx context.Context, id int) (*entity.Order, error)
}

type VoucherChecker interface {
	Check(ctx context.Context, code string, userID int, subtotal int64) (*entity.Voucher, error)
}

type Cart interface {
	Load(ctx context.Context, userID int) error
	Snapshot() entity.Cart
	Clear(ctx context.Context, userID int) error
}

type ShippingInfo struct {
	FullName      string
	Phone         string
	Address       string
	PaymentMethod string
}

func (i ShippingInfo) validate() error {
	if strings.TrimSpace(i.FullName) == "" || strings.TrimSpace(i.Phone) == "" || strings.TrimSpace(i.Address) == "" {
		return apperr.InvalidArgument("full name, phone and address are required")
	}
	return nil
}

type Result struct {
	Order  *entity.Order
	Totals pricing.Totals
}

type Service struct {
	orders      OrderAPI
	vouchers    VoucherChecker
	cart        Cart
	shippingFee int64
	logger      zerolog.Logger
	now         func() time.Time
	newKey      func() string
}

type Option func(*Service)

func WithShippingFee(fee int64) Option {
	return func(s *Service) { s.shippingFee = fee }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(orders OrderAPI, vouchers VoucherChecker, cart Cart, opts ...Option) *Service {
	s := &Service{
		orders:      orders,
		vouchers:    vouchers,
		cart:        cart,
		shippingFee: pricing.DefaultShippingFee,
		logger:      zerolog.Nop(),
		now:         time.Now,
		newKey:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview computes the totals of the current cart with an optional voucher
// code. A rejected voucher is reported in Totals.VoucherErr, and so is a
// code given without a signed-in user.
func (s *Service) Preview(ctx context.Context, userID int, voucherCode string) (pricing.Totals, error) {
	c := s.cart.Snapshot()
	var v *entity.Voucher
	if strings.TrimSpace(voucherCode) != "" {
		if userID <= 0 {
			t := pricing.Quote(c.Lines, nil, s.shippingFee, s.now())
			t.VoucherErr = apperr.ErrNotAuthenticated
			return t, nil
		}
		checked, err := s.vouchers.Check(ctx, voucherCode, userID, pricing.Subtotal(c.Lines))
		if err != nil {
			if !errors.Is(err, apperr.ErrVoucherInapplicable) {
				return pricing.Totals{}, err
			}
			t := pricing.Quote(c.Lines, nil, s.shippingFee, s.now())
			t.VoucherErr = err
			return t, nil
		}
		v = checked
	}
	return pricing.Quote(c.Lines, v, s.shippingFee, s.now()), nil
}

// PlaceOrder creates an order from the user's cart. The cart is emptied
// only once the order and all of its lines exist; on any earlier failure the
// cart is left alone and a half-created order is cancelled.
func (s *Service) PlaceOrder(ctx context.Context, userID int, info ShippingInfo, voucherCode string) (*Result, error) {
	if userID <= 0 {
		return nil, apperr.ErrNotAuthenticated
	}
	if err := info.validate(); err != nil {
		return nil, err
	}

	if err := s.cart.Load(ctx, userID); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	c := s.cart.Snapshot()
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	var v *entity.Voucher
	if strings.TrimSpace(voucherCode) != "" {
		checked, err := s.vouchers.Check(ctx, voucherCode, userID, pricing.Subtotal(c.Lines))
		if err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
		v = checked
	}

	totals := pricing.Quote(c.Lines, v, s.shippingFee, s.now())
	if totals.VoucherErr != nil {
		return nil, fmt.Errorf("checkout: %w", totals.VoucherErr)
	}

	req := client.OrderRequest{
		UserID:          userID,
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		ShippingFee:     totals.ShippingFee,
		TotalPrice:      totals.GrandTotal,
		FullName:        strings.TrimSpace(info.FullName),
		Phone:           strings.TrimSpace(info.Phone),
		ShippingAddress: strings.TrimSpace(info.Address),
		PaymentMethod:   info.PaymentMethod,
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = DefaultPaymentMethod
	}
	if v != nil {
		req.VoucherCode = v.Code
	}

	order, err := s.orders.CreateOrder(ctx, req, s.newKey())
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, l := range c.Lines {
		line, err := s.orders.CreateOrderLine(ctx, entity.OrderLine{
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal(),
		})
		if err != nil {
			s.abandon(ctx, order.ID)
			return nil, fmt.Errorf("create order line for product %d: %w", l.ProductID, err)
		}
		order.Lines = append(order.Lines, *line)
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int("order_id", order.ID).Msg("order placed but cart was not cleared")
	}

	s.logger.Info().Int("order_id", order.ID).Int("user_id", userID).Int64("total", totals.GrandTotal).Msg("order placed")
	return &Result{Order: order, Totals: totals}, nil
}

func (s *Service) abandon(ctx context.Context, orderID int) {
	if _, err := s.orders.CancelOrder(context.WithoutCancel(ctx), orderID); err != nil {
		s.logger.Error().Err(err).Int("order_id", orderID).Msg("cancel incomplete order")
	}
}
