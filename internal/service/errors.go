package service

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnavailable        = errors.New("menu item is not available")
)

// notFound maps sql.ErrNoRows onto ErrNotFound and leaves other errors as
// they are.
func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return err
}
