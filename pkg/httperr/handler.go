package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type response struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Handler renders every error returned by a handler or middleware as
// {"message": ...}. 5xx responses never leak the underlying message.
func Handler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		l := logging.FromContext(c.Request().Context())

		status, body, kind := render(err)
		if status >= http.StatusInternalServerError {
			l.Error("unhandled_error", "status", status, "kind", kind, "error", err)
			body = response{Message: internalMessage}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			l.Error("error_response_failed", "error", werr)
		}
	}
}

func render(err error) (int, response, Kind) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, response{
			Message: "Validation failed",
			Errors:  FieldErrors(verrs),
		}, KindController
	}

	var he *Error
	if errors.As(err, &he) {
		status := he.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, response{Message: he.Message}, he.Kind
	}

	var ee *echo.HTTPError
	if errors.As(err, &ee) {
		msg := http.StatusText(ee.Code)
		if s, ok := ee.Message.(string); ok && s != "" {
			msg = s
		}
		return ee.Code, response{Message: msg}, KindMiddleware
	}

	return http.StatusInternalServerError, response{Message: internalMessage}, KindServer
}

func FieldErrors(verrs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if isString(fe) {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString(fe) {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "phone":
		return field + " must be a valid phone number"
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}

func isString(fe validator.FieldError) bool {
	return fe.Kind().String() == "string"
}
