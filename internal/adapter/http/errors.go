package http

import (
	"errors"
	"log"
	"net/http"

	"rentflow/internal/domain/errs"

	"github.com/labstack/echo/v4"
)

var kindStatus = map[errs.Kind]int{
	errs.KindConflict:          http.StatusConflict,
	errs.KindInvalidState:      http.StatusConflict,
	errs.KindNotFound:          http.StatusNotFound,
	errs.KindForbidden:         http.StatusForbidden,
	errs.KindInsufficientFunds: http.StatusPaymentRequired,
	errs.KindValidation:        http.StatusUnprocessableEntity,
}

// Map domain errors → HTTP codes. Anything untyped is a 500 and is logged.
func respondError(c echo.Context, err error) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	code, ok := kindStatus[e.Kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	return c.JSON(code, ErrorResponse{
		Error:         e.Msg,
		CurrentStatus: e.CurrentStatus,
		TotalDue:      e.TotalDue,
	})
}

// bindAndValidate writes the 400/422 response itself and reports whether the
// handler may continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
