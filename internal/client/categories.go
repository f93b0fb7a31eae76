package client

import (
	"context"
	"encoding/json"
	"fmt"

	"food-order-service/internal/entity"
)

type categoryDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Img         string `json:"img"`
}

func (d categoryDTO) toEntity() entity.Category {
	return entity.Category{ID: d.ID, Name: d.Name, Description: d.Description, Image: firstNonEmpty(d.Image, d.Img)}
}

func (c *Client) Categories(ctx context.Context) ([]entity.Category, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: "GET", path: "/category/all"}, &raw); err != nil {
		return nil, err
	}
	categories, err := decodeList(raw, func(d categoryDTO) (entity.Category, error) {
		return d.toEntity(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (c *Client) Category(ctx context.Context, id int) (*entity.Category, error) {
	var d categoryDTO
	if err := c.do(ctx, request{method: "GET", path: fmt.Sprintf("/category/get/%d", id)}, &d); err != nil {
		return nil, err
	}
	category := d.toEntity()
	return &category, nil
}

func (c *Client) CreateCategory(ctx context.Context, category entity.Category) (*entity.Category, error) {
	var d categoryDTO
	if err := c.do(ctx, request{method: "POST", path: "/category/create", body: category}, &d); err != nil {
		return nil, err
	}
	created := d.toEntity()
	return &created, nil
}

func (c *Client) UpdateCategory(ctx context.Context, category entity.Category) (*entity.Category, error) {
	var d categoryDTO
	if err := c.do(ctx, request{method: "PUT", path: fmt.Sprintf("/category/update/%d", category.ID), body: category}, &d); err != nil {
		return nil, err
	}
	updated := d.toEntity()
	return &updated, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	return c.do(ctx, request{method: "DELETE", path: fmt.Sprintf("/category/delete/%d", id)}, nil)
}
