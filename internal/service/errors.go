package service

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/httperr"
)

var (
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrTokenReused marks a refresh with a token that was already rotated.
	ErrTokenReused = fmt.Errorf("%w: refresh token reused", ErrUnauthorized)
)

var statusOf = map[error]int{
	ErrValidation:   http.StatusBadRequest,
	ErrUnauthorized: http.StatusUnauthorized,
	ErrForbidden:    http.StatusForbidden,
	ErrNotFound:     http.StatusNotFound,
	ErrConflict:     http.StatusConflict,
	ErrTokenReused:  http.StatusUnauthorized,
}

// fail builds a service error whose message is shown to the client.
func fail(sentinel error, format string, args ...any) error {
	return httperr.Newf(statusOf[sentinel], httperr.KindService, sentinel, format, args...)
}

// dbErr maps repository failures: missing rows become 404 with notFoundMsg,
// unique violations 409, anything else a database 500.
func dbErr(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fail(ErrNotFound, "%s", notFoundMsg)
	case db.IsUniqueViolation(err):
		return fail(ErrConflict, "resource already exists")
	}
	var he *httperr.Error
	if errors.As(err, &he) {
		return he
	}
	return httperr.Wrap(fmt.Errorf("repo: %w", err), httperr.KindDatabase)
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func isConflict(err error) bool { return errors.Is(err, ErrConflict) }
