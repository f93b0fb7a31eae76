package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"food-order-service/internal/entity"
	"food-order-service/internal/service"
)

const idempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ownedOrder loads :param as an order the caller may see.
func (h *OrderHandler) ownedOrder(c echo.Context, param string) (*entity.Order, error) {
	id, ok := intParam(c, param)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	order, err := h.orderService.GetOrderByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if !canActFor(c, order.UserID) {
		return nil, errForbidden
	}
	return order, nil
}

// CreateOrder --> /orders/create
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	order := entity.Order{}
	if err := c.Bind(&order); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	order.ID = 0
	order.IdempotencyKey = c.Request().Header.Get(idempotencyHeader)

	if !canActFor(c, order.UserID) {
		return forbidden(c)
	}

	created, err := h.orderService.CreateOrder(c.Request().Context(), &order)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// CreateOrderLine --> /order-detail/create
func (h *OrderHandler) CreateOrderLine(c echo.Context) error {
	line := entity.OrderLine{}
	if err := c.Bind(&line); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	line.ID = 0

	order, err := h.orderService.GetOrderByID(c.Request().Context(), line.OrderID)
	if err != nil {
		return respondError(c, err)
	}
	if !canActFor(c, order.UserID) {
		return forbidden(c)
	}

	created, err := h.orderService.CreateOrderLine(c.Request().Context(), &line)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// GetOrders --> /orders/all
func (h *OrderHandler) GetOrders(c echo.Context) error {
	orders, err := h.orderService.GetOrders(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrdersByUser --> /orders/user/:userId
func (h *OrderHandler) GetOrdersByUser(c echo.Context) error {
	userID, ok := intParam(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	if !canActFor(c, userID) {
		return forbidden(c)
	}

	orders, err := h.orderService.GetOrdersByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrderByID --> /orders/:id
func (h *OrderHandler) GetOrderByID(c echo.Context) error {
	order, err := h.ownedOrder(c, "id")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// GetOrderLines --> /order-detail/order/:orderId
func (h *OrderHandler) GetOrderLines(c echo.Context) error {
	order, err := h.ownedOrder(c, "orderId")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order.Lines)
}

// UpdateOrder --> /orders/update/:id
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	req := struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}{}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	order, err := h.orderService.UpdateOrder(c.Request().Context(), id, req.Status, req.PaymentStatus)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder --> /orders/cancel/:id
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	order, err := h.ownedOrder(c, "id")
	if err != nil {
		return err
	}

	cancelled, err := h.orderService.CancelOrder(c.Request().Context(), order.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cancelled)
}
