package client

import (
	"context"
	"encoding/json"
	"fmt"

	"food-order-service/internal/entity"
	"food-order-service/internal/voucher"
)

func (c *Client) Vouchers(ctx context.Context) ([]entity.Voucher, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: "GET", path: "/voucher/all"}, &raw); err != nil {
		return nil, err
	}
	vs, err := decodeList(raw, voucherDTO.toEntity)
	if err != nil {
		return nil, fmt.Errorf("decode vouchers: %w", err)
	}
	return vs, nil
}

func (c *Client) Voucher(ctx context.Context, id int) (*entity.Voucher, error) {
	var d voucherDTO
	if err := c.do(ctx, request{method: "GET", path: fmt.Sprintf("/voucher/get/%d", id)}, &d); err != nil {
		return nil, err
	}
	return voucherFromDTO(d)
}

func (c *Client) CreateVoucher(ctx context.Context, v entity.Voucher) (*entity.Voucher, error) {
	v.Code = entity.NormalizeVoucherCode(v.Code)
	var d voucherDTO
	if err := c.do(ctx, request{method: "POST", path: "/voucher/create", body: v}, &d); err != nil {
		return nil, err
	}
	return voucherFromDTO(d)
}

func (c *Client) UpdateVoucher(ctx context.Context, v entity.Voucher) (*entity.Voucher, error) {
	v.Code = entity.NormalizeVoucherCode(v.Code)
	var d voucherDTO
	if err := c.do(ctx, request{method: "PUT", path: fmt.Sprintf("/voucher/update/%d", v.ID), body: v}, &d); err != nil {
		return nil, err
	}
	return voucherFromDTO(d)
}

func (c *Client) DeleteVoucher(ctx context.Context, id int) error {
	return c.do(ctx, request{method: "DELETE", path: fmt.Sprintf("/voucher/delete/%d", id)}, nil)
}

// CheckVoucher asks the server whether code applies to subtotal for userID.
// A rejection comes back as an *apperr.VoucherError.
func (c *Client) CheckVoucher(ctx context.Context, code string, userID int, subtotal int64) (*voucher.CheckResult, error) {
	var res struct {
		Voucher  voucherDTO `json:"voucher"`
		Discount amount     `json:"discount"`
	}
	err := c.do(ctx, request{
		method: "POST",
		path:   "/voucher/check",
		body: map[string]any{
			"code":     entity.NormalizeVoucherCode(code),
			"userId":   userID,
			"subtotal": subtotal,
		},
	}, &res)
	if err != nil {
		return nil, err
	}
	v, err := voucherFromDTO(res.Voucher)
	if err != nil {
		return nil, err
	}
	return &voucher.CheckResult{Voucher: *v, Discount: int64(res.Discount)}, nil
}

func voucherFromDTO(d voucherDTO) (*entity.Voucher, error) {
	v, err := d.toEntity()
	if err != nil {
		return nil, fmt.Errorf("decode voucher: %w", err)
	}
	return &v, nil
}
