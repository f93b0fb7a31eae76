package client

import (
	"context"
	"fmt"

	"food-order-service/internal/entity"
)

// AuthResult is what a successful login returns.
type AuthResult struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

type RegisterRequest struct {
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Password    string `json:"password"`
	RoleName    string `json:"role_name,omitempty"`
}

func (c *Client) Login(ctx context.Context, phoneNumber, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, request{
		method: "POST",
		path:   "/users/login",
		body:   map[string]string{"phone_number": phoneNumber, "password": password},
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) (*entity.User, error) {
	var res struct {
		User entity.User `json:"user"`
	}
	if err := c.do(ctx, request{method: "POST", path: "/users/register", body: r}, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (*entity.User, error) {
	var u entity.User
	if err := c.do(ctx, request{method: "GET", path: fmt.Sprintf("/users/get/%d", id)}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ProfileUpdate is the body of a profile edit. RoleName is honoured for
// admins only.
type ProfileUpdate struct {
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	RoleName    string `json:"role_name,omitempty"`
}

func (c *Client) Users(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := c.do(ctx, request{method: "GET", path: "/users/all"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateProfile(ctx context.Context, id int, p ProfileUpdate) (*entity.User, error) {
	var res struct {
		User entity.User `json:"user"`
	}
	if err := c.do(ctx, request{method: "PUT", path: fmt.Sprintf("/users/update/%d", id), body: p}, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, id int, currentPassword, newPassword string) error {
	return c.do(ctx, request{
		method: "PUT",
		path:   fmt.Sprintf("/users/change-password/%d", id),
		body:   map[string]string{"currentPassword": currentPassword, "newPassword": newPassword},
	}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, request{method: "DELETE", path: fmt.Sprintf("/users/delete/%d", id)}, nil)
}
