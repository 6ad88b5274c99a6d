package http

import (
	"net/http"
	"time"

	ucPayment "rentflow/internal/usecase/payment"
	"rentflow/pkg/datex"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	uc  *ucPayment.Usecase
	now func() time.Time
}

func NewPaymentHandler(uc *ucPayment.Usecase) *PaymentHandler {
	return &PaymentHandler{uc: uc, now: time.Now}
}

type settleReq struct {
	Amount decimal.Decimal `json:"amount" validate:"dpos,dec2"`
}

func (h *PaymentHandler) Get(c echo.Context) error {
	paymentID, ok := pathID(c, "payment_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payment_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), actorFrom(c), paymentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PaymentHandler) Settle(c echo.Context) error {
	paymentID, ok := pathID(c, "payment_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payment_id path param"})
	}
	var req settleReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Settle(c.Request().Context(), actorFrom(c), paymentID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PaymentHandler) Outstanding(c echo.Context) error {
	dto, err := h.uc.Outstanding(c.Request().Context(), actorFrom(c), c.Param("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PaymentHandler) Overdue(c echo.Context) error {
	list, err := h.uc.Overdue(c.Request().Context(), actorFrom(c), c.Param("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// OwnerSummary defaults to the current month so far.
func (h *PaymentHandler) OwnerSummary(c echo.Context) error {
	today := datex.Day(h.now())
	from, ok := queryDate(c, "from", datex.FirstOfMonth(today))
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from must be YYYY-MM-DD"})
	}
	to, ok := queryDate(c, "to", today)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "to must be YYYY-MM-DD"})
	}
	dto, err := h.uc.OwnerSummary(c.Request().Context(), actorFrom(c), c.Param("user_id"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
