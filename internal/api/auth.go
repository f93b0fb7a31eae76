package api

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"food-order-service/internal/service"
)

const claimsKey = "user"

// JWT verifies the bearer token and stores its claims on the context.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ContextKey: claimsKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		},
	})
}

func claimsFrom(c echo.Context) *service.JwtCustomClaims {
	token, ok := c.Get(claimsKey).(*jwt.Token)
	if !ok {
		return nil
	}
	claims, _ := token.Claims.(*service.JwtCustomClaims)
	return claims
}

// AdminOnly rejects callers whose token does not carry the admin role.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !claimsFrom(c).IsAdmin() {
			return forbidden(c)
		}
		return next(c)
	}
}

// canActFor reports whether the caller may touch data owned by userID.
func canActFor(c echo.Context, userID int) bool {
	claims := claimsFrom(c)
	if claims == nil {
		return false
	}
	return claims.IsAdmin() || claims.UserID == userID
}
