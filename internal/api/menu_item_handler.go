package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"food-order-service/internal/entity"
	"food-order-service/internal/service"
)

type MenuItemHandler struct {
	menuService *service.MenuItemService
}

func NewMenuItemHandler(menuService *service.MenuItemService) *MenuItemHandler {
	return &MenuItemHandler{menuService: menuService}
}

func (h *MenuItemHandler) GetMenuItems(c echo.Context) error {
	items, err := h.menuService.GetMenuItems(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []*entity.MenuItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuItemHandler) GetMenuItemByID(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	item, err := h.menuService.GetMenuItemByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuItemHandler) CreateMenuItem(c echo.Context) error {
	item := entity.MenuItem{Available: true}
	if err := c.Bind(&item); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	item.ID = 0

	created, err := h.menuService.CreateMenuItem(c.Request().Context(), &item)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *MenuItemHandler) UpdateMenuItem(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	item := entity.MenuItem{}
	if err := c.Bind(&item); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	item.ID = id

	updated, err := h.menuService.UpdateMenuItem(c.Request().Context(), &item)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *MenuItemHandler) DeleteMenuItem(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	if err := h.menuService.DeleteMenuItem(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "menu item deleted"})
}
