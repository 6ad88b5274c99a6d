package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"rentflow/internal/domain/actor"
	ucWallet "rentflow/internal/usecase/wallet"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const maxHistoryLimit = 200

type WalletHandler struct{ uc *ucWallet.Usecase }

func NewWalletHandler(uc *ucWallet.Usecase) *WalletHandler { return &WalletHandler{uc: uc} }

type moveReq struct {
	Amount      decimal.Decimal `json:"amount"       validate:"dpos,dec2"`
	Description string          `json:"description"  validate:"max=255"`
	ReferenceID string          `json:"reference_id" validate:"max=64"`
}

func (h *WalletHandler) Balance(c echo.Context) error {
	dto, err := h.uc.Balance(c.Request().Context(), actorFrom(c), c.Param("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WalletHandler) Transactions(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and " + strconv.Itoa(maxHistoryLimit)})
		}
		limit = n
	}
	list, err := h.uc.Transactions(c.Request().Context(), actorFrom(c), c.Param("user_id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

type moveFn func(ctx context.Context, by actor.Actor, in ucWallet.MoveInput) (*ucWallet.TransactionDTO, error)

func (h *WalletHandler) Credit(c echo.Context) error { return h.move(c, h.uc.Credit) }

func (h *WalletHandler) Debit(c echo.Context) error { return h.move(c, h.uc.Debit) }

func (h *WalletHandler) move(c echo.Context, fn moveFn) error {
	var req moveReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := ucWallet.MoveInput{
		UserID:      c.Param("user_id"),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	}
	if ref := strings.TrimSpace(req.ReferenceID); ref != "" {
		in.ReferenceID = &ref
	}
	dto, err := fn(c.Request().Context(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
