package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"food-order-service/internal/apperr"
	"food-order-service/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// respondError writes err as {"error": ...}. Voucher rejections add the
// machine-readable "reason".
func respondError(c echo.Context, err error) error {
	var ve *apperr.VoucherError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Error(), "reason": string(ve.Reason)})
	}

	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrUnavailable):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

var errForbidden = echo.NewHTTPError(http.StatusForbidden, "forbidden")

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
}

// httpErrorHandler renders errors returned by handlers and middleware in the
// same {"error": ...} shape the handlers use.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		err = c.JSON(he.Code, map[string]string{"error": msg})
	} else {
		err = respondError(c, err)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error writing error response")
	}
}

// intParam reads a positive integer path parameter.
func intParam(c echo.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
