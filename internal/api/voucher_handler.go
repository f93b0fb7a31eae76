package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"food-order-service/internal/entity"
	"food-order-service/internal/service"
)

type VoucherHandler struct {
	voucherService *service.VoucherService
}

func NewVoucherHandler(voucherService *service.VoucherService) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService}
}

func (h *VoucherHandler) GetVouchers(c echo.Context) error {
	vouchers, err := h.voucherService.GetVouchers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vouchers)
}

func (h *VoucherHandler) GetVoucherByID(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	v, err := h.voucherService.GetVoucherByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VoucherHandler) CreateVoucher(c echo.Context) error {
	v := entity.Voucher{}
	if err := c.Bind(&v); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	v.ID = 0

	created, err := h.voucherService.CreateVoucher(c.Request().Context(), &v)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *VoucherHandler) UpdateVoucher(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	v := entity.Voucher{}
	if err := c.Bind(&v); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	v.ID = id

	updated, err := h.voucherService.UpdateVoucher(c.Request().Context(), &v)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *VoucherHandler) DeleteVoucher(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	if err := h.voucherService.DeleteVoucher(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "voucher deleted"})
}

// CheckVoucher tells whether a code applies to a subtotal --> /voucher/check
func (h *VoucherHandler) CheckVoucher(c echo.Context) error {
	req := struct {
		Code     string `json:"code"`
		UserID   int    `json:"userId"`
		Subtotal int64  `json:"subtotal"`
	}{}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if !canActFor(c, req.UserID) {
		return forbidden(c)
	}

	v, discount, err := h.voucherService.Check(c.Request().Context(), req.Code, req.UserID, req.Subtotal)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"voucher": v, "discount": discount})
}
