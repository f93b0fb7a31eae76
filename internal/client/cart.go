package client

import (
	"context"
	"fmt"

	"food-order-service/internal/entity"
)

func (c *Client) FetchCart(ctx context.Context, userID int) ([]entity.CartLine, error) {
	var d cartDTO
	if err := c.do(ctx, request{method: "GET", path: fmt.Sprintf("/cart/%d", userID)}, &d); err != nil {
		return nil, err
	}
	return d.lines(), nil
}

func (c *Client) CartCount(ctx context.Context, userID int) (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, request{method: "GET", path: fmt.Sprintf("/cart/%d/count", userID)}, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// AddItem adds quantity units of a product; the server merges them into an
// existing line for the same product.
func (c *Client) AddItem(ctx context.Context, userID, productID, quantity int) error {
	return c.do(ctx, request{
		method: "POST",
		path:   fmt.Sprintf("/cart/%d/add", userID),
		body:   map[string]int{"menuItemId": productID, "quantity": quantity},
	}, nil)
}

func (c *Client) UpdateItem(ctx context.Context, userID, productID, quantity int) error {
	return c.do(ctx, request{
		method: "PUT",
		path:   fmt.Sprintf("/cart/%d/items/%d", userID, productID),
		body:   map[string]int{"quantity": quantity},
	}, nil)
}

func (c *Client) RemoveItem(ctx context.Context, userID, productID int) error {
	return c.do(ctx, request{method: "DELETE", path: fmt.Sprintf("/cart/%d/items/%d", userID, productID)}, nil)
}

func (c *Client) ClearCart(ctx context.Context, userID int) error {
	return c.do(ctx, request{method: "DELETE", path: fmt.Sprintf("/cart/%d/clear", userID)}, nil)
}
