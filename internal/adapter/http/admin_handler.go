package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rentflow/internal/infrastructure/cache"
	"rentflow/internal/usecase/accrual"
	"rentflow/pkg/datex"

	"github.com/labstack/echo/v4"
)

type AccrualRunner interface {
	RunDailyAccrual(ctx context.Context, asOf time.Time) (accrual.Report, error)
}

type AdminHandler struct {
	engine AccrualRunner
	now    func() time.Time
}

func NewAdminHandler(engine AccrualRunner) *AdminHandler {
	return &AdminHandler{engine: engine, now: time.Now}
}

// RunAccrual runs the daily late-fee pass on demand, for today unless as_of
// names another day.
func (h *AdminHandler) RunAccrual(c echo.Context) error {
	if !actorFrom(c).IsAdmin() {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin only"})
	}
	asOf, ok := queryDate(c, "as_of", datex.Day(h.now()))
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "as_of must be YYYY-MM-DD"})
	}
	rep, err := h.engine.RunDailyAccrual(c.Request().Context(), asOf)
	if errors.Is(err, cache.ErrLeaseHeld) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "accrual for " + datex.Format(asOf) + " is already running"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}
