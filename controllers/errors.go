package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edupay/tuitionhub/lib/responses"
	"github.com/edupay/tuitionhub/lib/service"
	"github.com/labstack/echo/v4"
)

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Validation messages pass through so the caller sees which constraint
// failed.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, responses.ValidationError(constraintMessage(err)))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, responses.NotFoundError)
	case errors.Is(err, service.ErrConcurrencyConflict):
		return c.JSON(http.StatusConflict, responses.ConcurrencyConflictError)
	default:
		return err
	}
}

func constraintMessage(err error) string {
	msg := err.Error()
	if _, constraint, found := strings.Cut(msg, ": "); found {
		return constraint
	}
	return msg
}
