package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/httperr"
)

func paramID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, httperr.Newf(http.StatusBadRequest, httperr.KindController, err, "Invalid %s", name)
	}
	return uint(v), nil
}

func queryUint(c echo.Context, name string) (uint, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, httperr.Newf(http.StatusBadRequest, httperr.KindController, err, "Invalid %s", name)
	}
	return uint(v), nil
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return httperr.Newf(http.StatusBadRequest, httperr.KindController, err, "Invalid request body")
	}
	return c.Validate(dst)
}

// failed logs err (warn for client errors, error otherwise) and returns it
// in a form the global error handler renders with the right status.
func failed(l *slog.Logger, event string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation failed", "error", err)
		return err
	}
	he := httperr.Wrap(err, httperr.KindController)
	if he.Status >= http.StatusInternalServerError {
		l.Error(event, "status", he.Status, "kind", he.Kind, "error", err)
	} else {
		l.Warn(event, "status", he.Status, "reason", he.Message)
	}
	return he
}
