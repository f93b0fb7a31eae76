package client

import (
	"context"
	"encoding/json"
	"fmt"

	"food-order-service/internal/entity"
)

func (c *Client) MenuItems(ctx context.Context) ([]entity.MenuItem, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: "GET", path: "/menu-items/all"}, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList(raw, func(d menuItemDTO) (entity.MenuItem, error) {
		return d.toEntity(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode menu items: %w", err)
	}
	return items, nil
}

func (c *Client) MenuItem(ctx context.Context, id int) (*entity.MenuItem, error) {
	var d menuItemDTO
	if err := c.do(ctx, request{method: "GET", path: fmt.Sprintf("/menu-items/%d", id)}, &d); err != nil {
		return nil, err
	}
	item := d.toEntity()
	return &item, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, item entity.MenuItem) (*entity.MenuItem, error) {
	var d menuItemDTO
	if err := c.do(ctx, request{method: "POST", path: "/menu-items/create", body: item}, &d); err != nil {
		return nil, err
	}
	created := d.toEntity()
	return &created, nil
}

func (c *Client) UpdateMenuItem(ctx context.Context, item entity.MenuItem) (*entity.MenuItem, error) {
	var d menuItemDTO
	if err := c.do(ctx, request{method: "PUT", path: fmt.Sprintf("/menu-items/update/%d", item.ID), body: item}, &d); err != nil {
		return nil, err
	}
	updated := d.toEntity()
	return &updated, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, id int) error {
	return c.do(ctx, request{method: "DELETE", path: fmt.Sprintf("/menu-items/delete/%d", id)}, nil)
}
