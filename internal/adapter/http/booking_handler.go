package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/asset"
	"rentflow/internal/domain/booking"
	ucBooking "rentflow/internal/usecase/booking"
	"rentflow/pkg/datex"
	"rentflow/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type BookingHandler struct{ uc *ucBooking.Usecase }

func NewBookingHandler(uc *ucBooking.Usecase) *BookingHandler { return &BookingHandler{uc: uc} }

type createBookingReq struct {
	AssetKind          string           `json:"asset_kind"            validate:"required,oneof=PROPERTY PG_BED"`
	AssetID            uint64           `json:"asset_id"              validate:"required"`
	StartDate          string           `json:"start_date"            validate:"required,datetime=2006-01-02"`
	EndDate            string           `json:"end_date"              validate:"omitempty,datetime=2006-01-02"`
	MonthlyRent        decimal.Decimal  `json:"monthly_rent"          validate:"dpos,dec2"`
	SecurityDeposit    *decimal.Decimal `json:"security_deposit"      validate:"omitempty,dnonneg,dec2"`
	LateFeeRatePercent *decimal.Decimal `json:"late_fee_rate_percent" validate:"omitempty,dnonneg,dec2"`
	GracePeriodDays    *int             `json:"grace_period_days"     validate:"omitempty,gte=0,lte=31"`
	AutoRenewal        bool             `json:"auto_renewal"`
}

type approveBookingReq struct {
	FinalRent    *decimal.Decimal `json:"final_rent"    validate:"omitempty,dpos,dec2"`
	FinalDeposit *decimal.Decimal `json:"final_deposit" validate:"omitempty,dnonneg,dec2"`
}

type reasonReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	// Format already checked by the validator.
	start, _ := datex.Parse(req.StartDate)
	in := ucBooking.CreateInput{
		AssetKind:          asset.Kind(req.AssetKind),
		AssetID:            req.AssetID,
		StartDate:          start,
		MonthlyRent:        req.MonthlyRent,
		SecurityDeposit:    req.SecurityDeposit,
		LateFeeRatePercent: req.LateFeeRatePercent,
		GracePeriodDays:    req.GracePeriodDays,
		AutoRenewal:        req.AutoRenewal,
	}
	if req.EndDate != "" {
		end, _ := datex.Parse(req.EndDate)
		in.EndDate = &end
	}
	dto, err := h.uc.Create(c.Request().Context(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *BookingHandler) Get(c echo.Context) error {
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid booking_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), actorFrom(c), bookingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BookingHandler) Approve(c echo.Context) error {
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid booking_id path param"})
	}
	var req approveBookingReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Approve(c.Request().Context(), actorFrom(c), bookingID, ucBooking.ApproveInput{
		FinalRent:    req.FinalRent,
		FinalDeposit: req.FinalDeposit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BookingHandler) Reject(c echo.Context) error {
	return h.withReason(c, h.uc.Reject)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.withReason(c, h.uc.Cancel)
}

func (h *BookingHandler) Complete(c echo.Context) error {
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid booking_id path param"})
	}
	dto, err := h.uc.Complete(c.Request().Context(), actorFrom(c), bookingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type reasonFn func(ctx context.Context, by actor.Actor, bookingID, reason string) (*ucBooking.BookingDTO, error)

func (h *BookingHandler) withReason(c echo.Context, fn reasonFn) error {
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid booking_id path param"})
	}
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := fn(c.Request().Context(), actorFrom(c), bookingID, strings.TrimSpace(req.Reason))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BookingHandler) ListForTenant(c echo.Context) error {
	list, err := h.uc.ListForTenant(c.Request().Context(), actorFrom(c), c.Param("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) ListForOwner(c echo.Context) error {
	var statuses []booking.Status
	if raw := c.QueryParam("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := booking.Status(strings.ToUpper(strings.TrimSpace(s)))
			if !knownStatus(st) {
				return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown status " + s})
			}
			statuses = append(statuses, st)
		}
	}
	list, err := h.uc.ListForOwner(c.Request().Context(), actorFrom(c), c.Param("user_id"), statuses...)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) ListPendingForOwner(c echo.Context) error {
	list, err := h.uc.ListPendingForOwner(c.Request().Context(), actorFrom(c), c.Param("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func knownStatus(s booking.Status) bool {
	switch s {
	case booking.StatusPendingApproval, booking.StatusActive, booking.StatusRejected,
		booking.StatusCancelled, booking.StatusTerminated, booking.StatusCompleted:
		return true
	}
	return false
}

// pathID reads a 32-hex id path param, normalizing case and whitespace.
func pathID(c echo.Context, name string) (string, bool) {
	v := id.Normalize(c.Param(name))
	return v, id.Valid(v)
}

// queryDate parses an optional YYYY-MM-DD query param, falling back to def.
func queryDate(c echo.Context, name string, def time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, true
	}
	t, err := datex.Parse(raw)
	return t, err == nil
}
