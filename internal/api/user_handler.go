package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"food-order-service/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates a customer account --> /users/register
func (h *UserHandler) Register(c echo.Context) error {
	in := service.RegisterInput{}
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	user, err := h.userService.Register(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"user": user})
}

// Login logs in a user --> /users/login
func (h *UserHandler) Login(c echo.Context) error {
	login := struct {
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
	}{}
	if err := c.Bind(&login); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	token, user, err := h.userService.Login(c.Request().Context(), login.PhoneNumber, login.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"token": token, "user": user})
}

// GetUserByID retrieves a user by ID --> /users/get/:id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	if !canActFor(c, id) {
		return forbidden(c)
	}

	user, err := h.userService.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetUsers lists every account --> /users/all
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userService.GetUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateProfile edits an account --> /users/update/:id
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	if !canActFor(c, id) {
		return forbidden(c)
	}

	in := service.ProfileInput{}
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), id, in, claimsFrom(c).IsAdmin())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

// ChangePassword sets a new password --> /users/change-password/:id
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	if !canActFor(c, id) {
		return forbidden(c)
	}

	body := struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}{}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	verifyCurrent := claimsFrom(c).UserID == id
	if err := h.userService.ChangePassword(c.Request().Context(), id, body.CurrentPassword, body.NewPassword, verifyCurrent); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password changed"})
}

// DeleteUser removes an account --> /users/delete/:id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}
	if !canActFor(c, id) {
		return forbidden(c)
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted"})
}
