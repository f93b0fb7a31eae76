package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"food-order-service/internal/entity"
	"food-order-service/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.GetCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategoryByID(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	category, err := h.categoryService.GetCategoryByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	category := entity.Category{}
	if err := c.Bind(&category); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	created, err := h.categoryService.CreateCategory(c.Request().Context(), &category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	category := entity.Category{}
	if err := c.Bind(&category); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	category.ID = id

	updated, err := h.categoryService.UpdateCategory(c.Request().Context(), &category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	if err := h.categoryService.DeleteCategory(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "category deleted"})
}
