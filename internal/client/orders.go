package client

import (
	"context"
	"encoding/json"
	"fmt"

	"food-order-service/internal/entity"
)

// OrderRequest is the header of a new order. Amounts are the totals the
// storefront computed and showed to the customer.
type OrderRequest struct {
	UserID          int    `json:"user_id"`
	Subtotal        int64  `json:"subtotal"`
	Discount        int64  `json:"discount"`
	ShippingFee     int64  `json:"shipping_fee"`
	TotalPrice      int64  `json:"total_price"`
	VoucherCode     string `json:"voucher_code,omitempty"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
}

// OrderUpdate changes the status and/or payment status of an order. Empty
// fields are left as they are.
type OrderUpdate struct {
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

// CreateOrder creates an order header. Retrying with the same idempotency
// key never creates a second order.
func (c *Client) CreateOrder(ctx context.Context, r OrderRequest, idempotencyKey string) (*entity.Order, error) {
	var d orderDTO
	err := c.do(ctx, request{
		method:  "POST",
		path:    "/orders/create",
		body:    r,
		headers: map[string]string{IdempotencyHeader: idempotencyKey},
	}, &d)
	if err != nil {
		return nil, err
	}
	return orderFromDTO(d)
}

func (c *Client) CreateOrderLine(ctx context.Context, line entity.OrderLine) (*entity.OrderLine, error) {
	var d orderLineDTO
	err := c.do(ctx, request{
		method: "POST",
		path:   "/order-detail/create",
		body: map[string]any{
			"order_id":     line.OrderID,
			"menu_item_id": line.ProductID,
			"quantity":     line.Quantity,
			"price":        line.UnitPrice,
		},
	}, &d)
	if err != nil {
		return nil, err
	}
	created := d.toEntity()
	return &created, nil
}

func (c *Client) Orders(ctx context.Context) ([]entity.Order, error) {
	return c.orderList(ctx, "/orders/all")
}

func (c *Client) UserOrders(ctx context.Context, userID int) ([]entity.Order, error) {
	return c.orderList(ctx, fmt.Sprintf("/orders/user/%d", userID))
}

func (c *Client) Order(ctx context.Context, id int) (*entity.Order, error) {
	var d orderDTO
	if err := c.do(ctx, request{method: "GET", path: fmt.Sprintf("/orders/%d", id)}, &d); err != nil {
		return nil, err
	}
	return orderFromDTO(d)
}

func (c *Client) OrderLines(ctx context.Context, orderID int) ([]entity.OrderLine, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: "GET", path: fmt.Sprintf("/order-detail/order/%d", orderID)}, &raw); err != nil {
		return nil, err
	}
	lines, err := decodeList(raw, func(d orderLineDTO) (entity.OrderLine, error) {
		return d.toEntity(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode order lines: %w", err)
	}
	return lines, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id int, u OrderUpdate) (*entity.Order, error) {
	var d orderDTO
	if err := c.do(ctx, request{method: "PUT", path: fmt.Sprintf("/orders/update/%d", id), body: u}, &d); err != nil {
		return nil, err
	}
	return orderFromDTO(d)
}

func (c *Client) CancelOrder(ctx context.Context, id int) (*entity.Order, error) {
	var d orderDTO
	if err := c.do(ctx, request{method: "PUT", path: fmt.Sprintf("/orders/cancel/%d", id)}, &d); err != nil {
		return nil, err
	}
	return orderFromDTO(d)
}

func (c *Client) orderList(ctx context.Context, path string) ([]entity.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: "GET", path: path}, &raw); err != nil {
		return nil, err
	}
	orders, err := decodeList(raw, orderDTO.toEntity)
	if err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func orderFromDTO(d orderDTO) (*entity.Order, error) {
	o, err := d.toEntity()
	if err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &o, nil
}
