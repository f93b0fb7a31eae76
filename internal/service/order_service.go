package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
	"food-order-service/internal/pricing"
	"food-order-service/internal/repository"
)

const (
	idempotencyTTL = 24 * time.Hour

	EventCreated   = "created"
	EventUpdated   = "updated"
	EventCancelled = "cancelled"

	DefaultPaymentMethod = "cod"
)

// MessageWriter is the part of *kafka.Writer the order service uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OrderEvent is the value of every message on the order topic.
type OrderEvent struct {
	Event string        `json:"event"`
	Order *entity.Order `json:"order"`
}

// OrderService is a service that provides order-related operations
type OrderService struct {
	orderRepo   *repository.OrderRepository
	menus       *MenuItemService
	vouchers    *VoucherService
	kafkaWriter MessageWriter
	rdb         *redis.Client
}

// NewOrderService creates a new instance of OrderService. A nil writer
// disables order events; cancellations then give back voucher uses inline.
func NewOrderService(orderRepo *repository.OrderRepository, menus *MenuItemService, vouchers *VoucherService, kafkaWriter MessageWriter, rdb *redis.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		menus:       menus,
		vouchers:    vouchers,
		kafkaWriter: kafkaWriter,
		rdb:         rdb,
	}
}

func validateOrder(order *entity.Order) error {
	order.FullName = strings.TrimSpace(order.FullName)
	order.Phone = strings.TrimSpace(order.Phone)
	order.ShippingAddress = strings.TrimSpace(order.ShippingAddress)
	order.VoucherCode = entity.NormalizeVoucherCode(order.VoucherCode)

	if order.UserID <= 0 {
		return apperr.InvalidArgument("user_id is required")
	}
	if order.FullName == "" || order.Phone == "" || order.ShippingAddress == "" {
		return apperr.InvalidArgument("full_name, phone and shipping_address are required")
	}
	if order.Subtotal < 0 || order.Discount < 0 || order.ShippingFee < 0 || order.TotalPrice < 0 {
		return apperr.InvalidArgument("amounts must not be negative")
	}
	if order.VoucherCode == "" && order.Discount != 0 {
		return apperr.InvalidArgument("a discount needs a voucher_code")
	}
	if order.TotalPrice != pricing.GrandTotal(order.Subtotal, order.Discount, order.ShippingFee) {
		return apperr.InvalidArgument("total_price does not match subtotal, discount and shipping_fee")
	}

	if len(order.Lines) > 0 {
		var sum int64
		for i := range order.Lines {
			l := &order.Lines[i]
			if l.ProductID <= 0 || l.Quantity < 1 || l.UnitPrice < 0 {
				return apperr.InvalidArgument("order lines need a menu item, a quantity of at least 1 and a price")
			}
			l.LineTotal = l.UnitPrice * int64(l.Quantity)
			sum += l.LineTotal
		}
		if sum != order.Subtotal {
			return apperr.InvalidArgument("subtotal does not match the order lines")
		}
	}

	if order.PaymentMethod = strings.TrimSpace(order.PaymentMethod); order.PaymentMethod == "" {
		order.PaymentMethod = DefaultPaymentMethod
	}
	order.Status = entity.OrderPending
	order.PaymentStatus = entity.PaymentUnpaid
	return nil
}

// CreateOrder stores a new pending order, counting the use of its voucher,
// and publishes a created event. A request repeating an idempotency key gets the order the first
// request created.
func (s *OrderService) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	if order.IdempotencyKey != "" {
		fresh, err := s.claimIdempotencyKey(ctx, order.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return s.replay(ctx, order.IdempotencyKey)
		}
	}

	created, err := s.createOrder(ctx, order)
	if err != nil {
		if order.IdempotencyKey != "" {
			s.releaseIdempotencyKey(order.IdempotencyKey)
		}
		return nil, err
	}

	s.publish(ctx, created, EventCreated)
	return created, nil
}

func (s *OrderService) createOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	for i := range order.Lines {
		if err := s.checkLinePrice(ctx, &order.Lines[i]); err != nil {
			return nil, err
		}
	}

	if order.VoucherCode != "" {
		v, discount, err := s.vouchers.Check(ctx, order.VoucherCode, order.UserID, order.Subtotal)
		if err != nil {
			return nil, err
		}
		if discount != order.Discount {
			return nil, apperr.InvalidArgument("discount %d does not match voucher discount %d", order.Discount, discount)
		}
		order.VoucherID = v.ID
	}

	created, err := s.orderRepo.CreateOrder(ctx, order)
	if errors.Is(err, repository.ErrVoucherExhausted) {
		return nil, apperr.ErrUsageLimitReached
	}
	if err != nil {
		if order.IdempotencyKey != "" {
			if existing, lookupErr := s.orderRepo.GetOrderByIdempotencyKey(ctx, order.IdempotencyKey); lookupErr == nil {
				return existing, nil
			}
		}
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}
	return created, nil
}

// checkLinePrice rejects a line whose menu item is gone, unavailable or
// priced differently from the catalog.
func (s *OrderService) checkLinePrice(ctx context.Context, line *entity.OrderLine) error {
	item, err := s.menus.GetMenuItemByID(ctx, line.ProductID)
	if errors.Is(err, ErrNotFound) {
		return apperr.InvalidArgument("menu item %d does not exist", line.ProductID)
	}
	if err != nil {
		return err
	}
	if !item.Available {
		return fmt.Errorf("menu item %d: %w", item.ID, ErrUnavailable)
	}
	if item.Price != line.UnitPrice {
		return apperr.InvalidArgument("price %d of menu item %d does not match the menu price %d", line.UnitPrice, item.ID, item.Price)
	}
	return nil
}

func (s *OrderService) replay(ctx context.Context, key string) (*entity.Order, error) {
	existing, err := s.orderRepo.GetOrderByIdempotencyKey(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("an order with this idempotency key is still being created: %w", ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	logger.Info().Msgf("Replaying order %d for a repeated idempotency key", existing.ID)
	return existing, nil
}

func (s *OrderService) claimIdempotencyKey(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, idempotencyKey(key), "exists", idempotencyTTL).Result()
	if err != nil {
		logger.Error().Err(err).Msg("Error claiming idempotency key")
		return false, err
	}
	return ok, nil
}

func (s *OrderService) releaseIdempotencyKey(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.rdb.Del(ctx, idempotencyKey(key)).Err(); err != nil {
		logger.Error().Err(err).Msg("Error releasing idempotency key")
	}
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency-key:%s", key)
}

// CreateOrderLine appends a line to a pending order.
func (s *OrderService) CreateOrderLine(ctx context.Context, line *entity.OrderLine) (*entity.OrderLine, error) {
	if line.ProductID <= 0 || line.Quantity < 1 || line.UnitPrice < 0 {
		return nil, apperr.InvalidArgument("menu_item_id, a quantity of at least 1 and a non-negative price are required")
	}

	order, err := s.GetOrderByID(ctx, line.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderPending {
		return nil, fmt.Errorf("order %d is %s: %w", order.ID, order.Status, ErrInvalidTransition)
	}
	if err := s.checkLinePrice(ctx, line); err != nil {
		return nil, err
	}

	line.LineTotal = line.UnitPrice * int64(line.Quantity)
	created, err := s.orderRepo.CreateOrderLine(ctx, line)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating line for order %d", line.OrderID)
		return nil, err
	}
	return created, nil
}

func (s *OrderService) GetOrders(ctx context.Context) ([]*entity.Order, error) {
	return s.orderRepo.GetOrders(ctx)
}

func (s *OrderService) GetOrdersByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	return s.orderRepo.GetOrdersByUser(ctx, userID)
}

func (s *OrderService) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return order, nil
}

func (s *OrderService) GetOrderLines(ctx context.Context, orderID int) ([]entity.OrderLine, error) {
	if _, err := s.GetOrderByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.GetOrderLines(ctx, orderID)
}

// UpdateOrder moves an order to a new status and/or payment status. Either
// may be empty to keep the current value. Any accepted spelling of a status
// is stored in its canonical form.
func (s *OrderService) UpdateOrder(ctx context.Context, id int, status, paymentStatus string) (*entity.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := order.Status
	if strings.TrimSpace(status) != "" {
		if next, err = entity.ParseOrderStatus(status); err != nil {
			return nil, apperr.InvalidArgument("%v", err)
		}
	}
	payment := order.PaymentStatus
	if strings.TrimSpace(paymentStatus) != "" {
		if payment, err = entity.ParsePaymentStatus(paymentStatus); err != nil {
			return nil, apperr.InvalidArgument("%v", err)
		}
	}

	if !order.Status.CanTransition(next) {
		return nil, fmt.Errorf("order %d cannot go from %s to %s: %w", id, order.Status, next, ErrInvalidTransition)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, id, next, payment); err != nil {
		logger.Error().Err(err).Msgf("Error updating order %d", id)
		return nil, err
	}

	event := EventUpdated
	if next == entity.OrderCancelled && order.Status != entity.OrderCancelled {
		event = EventCancelled
	}
	order.Status = next
	order.PaymentStatus = payment

	if !s.publish(ctx, order, event) && event == EventCancelled {
		s.releaseVoucherUse(ctx, id)
	}
	return order, nil
}

func (s *OrderService) releaseVoucherUse(ctx context.Context, orderID int) {
	if err := s.vouchers.ReleaseUsage(ctx, orderID); err != nil {
		logger.Error().Err(err).Msgf("Error releasing voucher use of order %d", orderID)
	}
}

// CancelOrder cancels an order that has not shipped yet.
func (s *OrderService) CancelOrder(ctx context.Context, id int) (*entity.Order, error) {
	return s.UpdateOrder(ctx, id, string(entity.OrderCancelled), "")
}

// EventKey is the message key of every event of an order. One key per
// order keeps its events on one partition, in the order they were written.
func EventKey(orderID int) string {
	return fmt.Sprintf("order-%d", orderID)
}

// publish writes an order event and reports whether it reached the topic.
// Failures are logged and never fail the operation that caused them.
func (s *OrderService) publish(ctx context.Context, order *entity.Order, event string) bool {
	if s.kafkaWriter == nil {
		return false
	}

	value, err := json.Marshal(OrderEvent{Event: event, Order: order})
	if err != nil {
		logger.Error().Err(err).Msgf("Error encoding %s event for order %d", event, order.ID)
		return false
	}

	msg := kafka.Message{
		Key:   []byte(EventKey(order.ID)),
		Value: value,
	}
	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %s event for order %d", event, order.ID)
		return false
	}
	return true
}
