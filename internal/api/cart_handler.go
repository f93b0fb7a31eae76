package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"food-order-service/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

type cartItemResponse struct {
	MenuItemID int              `json:"menu_item_id"`
	Quantity   int              `json:"quantity"`
	Price      int64            `json:"price"`
	MenuItem   cartMenuItemInfo `json:"MenuItem"`
}

type cartMenuItemInfo struct {
	Name string `json:"name"`
	Img  string `json:"img"`
}

// cartOwner reads :userId and checks the caller may act for that user.
func cartOwner(c echo.Context) (int, error) {
	userID, ok := intParam(c, "userId")
	if !ok {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if !canActFor(c, userID) {
		return 0, errForbidden
	}
	return userID, nil
}

// GetCart --> /cart/:userId
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := cartOwner(c)
	if err != nil {
		return err
	}

	rows, err := h.cartService.GetCart(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]cartItemResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, cartItemResponse{
			MenuItemID: r.MenuItemID,
			Quantity:   r.Quantity,
			Price:      r.Price,
			MenuItem:   cartMenuItemInfo{Name: r.Name, Img: r.Image},
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Count --> /cart/:userId/count
func (h *CartHandler) Count(c echo.Context) error {
	userID, err := cartOwner(c)
	if err != nil {
		return err
	}
	n, err := h.cartService.Count(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}

// AddItem --> /cart/:userId/add
func (h *CartHandler) AddItem(c echo.Context) error {
	userID, err := cartOwner(c)
	if err != nil {
		return err
	}
	req := struct {
		MenuItemID int `json:"menuItemId"`
		Quantity   int `json:"quantity"`
	}{}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	if err := h.cartService.AddItem(c.Request().Context(), userID, req.MenuItemID, req.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "item added"})
}

// UpdateItem --> /cart/:userId/items/:itemId
func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, err := cartOwner(c)
	if err != nil {
		return err
	}
	itemID, ok := intParam(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}
	req := struct {
		Quantity int `json:"quantity"`
	}{}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	if err := h.cartService.UpdateItem(c.Request().Context(), userID, itemID, req.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "item updated"})
}

// RemoveItem --> /cart/:userId/items/:itemId
func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, err := cartOwner(c)
	if err != nil {
		return err
	}
	itemID, ok := intParam(c, "itemId")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}

	if err := h.cartService.RemoveItem(c.Request().Context(), userID, itemID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "item removed"})
}

// Clear --> /cart/:userId/clear
func (h *CartHandler) Clear(c echo.Context) error {
	userID, err := cartOwner(c)
	if err != nil {
		return err
	}
	if err := h.cartService.Clear(c.Request().Context(), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "cart cleared"})
}
