package booking

import (
	"time"

	"rentflow/internal/domain/asset"
	domain "rentflow/internal/domain/booking"
	paymentuc "rentflow/internal/usecase/payment"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
)

type CreateInput struct {
	AssetKind          asset.Kind
	AssetID            uint64
	StartDate          time.Time
	EndDate            *time.Time
	MonthlyRent        decimal.Decimal
	SecurityDeposit    *decimal.Decimal
	LateFeeRatePercent *decimal.Decimal
	GracePeriodDays    *int
	AutoRenewal        bool
}

type ApproveInput struct {
	FinalRent    *decimal.Decimal
	FinalDeposit *decimal.Decimal
}

type BookingDTO struct {
	BookingID          string                 `json:"booking_id"`
	Kind               string                 `json:"kind"`
	TenantID           string                 `json:"tenant_id"`
	OwnerID            string                 `json:"owner_id"`
	AssetKind          string                 `json:"asset_kind"`
	AssetID            uint64                 `json:"asset_id"`
	AssetTitle         string                 `json:"asset_title"`
	StartDate          string                 `json:"start_date"`
	EndDate            string                 `json:"end_date,omitempty"`
	MonthlyRent        decimal.Decimal        `json:"monthly_rent"`
	SecurityDeposit    *decimal.Decimal       `json:"security_deposit,omitempty"`
	LateFeeRatePercent decimal.Decimal        `json:"late_fee_rate_percent"`
	GracePeriodDays    int                    `json:"grace_period_days"`
	AutoRenewal        bool                   `json:"auto_renewal"`
	Status             string                 `json:"status"`
	Reason             string                 `json:"reason,omitempty"`
	ApprovalDate       *time.Time             `json:"approval_date,omitempty"`
	TerminationDate    string                 `json:"termination_date,omitempty"`
	CompletedDate      string                 `json:"completed_date,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	Payments           []paymentuc.PaymentDTO `json:"payments,omitempty"`
}

func toDTO(b *domain.Booking) BookingDTO {
	policy, _ := b.Policy()
	dto := BookingDTO{
		BookingID:          b.BookingID,
		Kind:               string(b.Kind()),
		TenantID:           b.TenantID,
		OwnerID:            b.OwnerID,
		AssetKind:          string(b.AssetKind),
		AssetID:            b.AssetID,
		AssetTitle:         b.AssetTitle,
		StartDate:          datex.Format(b.StartDate),
		MonthlyRent:        b.MonthlyRent,
		LateFeeRatePercent: policy.RatePercent,
		GracePeriodDays:    policy.GraceDays,
		AutoRenewal:        b.AutoRenewal,
		Status:             string(b.Status),
		ApprovalDate:       b.ApprovalDate,
		CreatedAt:          b.CreatedAt,
	}
	if b.EndDate != nil {
		dto.EndDate = datex.Format(*b.EndDate)
	}
	if b.SecurityDeposit.Valid {
		d := b.SecurityDeposit.Decimal
		dto.SecurityDeposit = &d
	}
	if b.TerminationDate != nil {
		dto.TerminationDate = datex.Format(*b.TerminationDate)
	}
	if b.CompletedDate != nil {
		dto.CompletedDate = datex.Format(*b.CompletedDate)
	}
	switch b.Status {
	case domain.StatusRejected:
		dto.Reason = b.RejectionReason
	case domain.StatusCancelled:
		dto.Reason = b.CancellationReason
	case domain.StatusTerminated:
		dto.Reason = b.TerminationReason
	}
	return dto
}

func toDTOs(bs []domain.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(bs))
	for i := range bs {
		out = append(out, toDTO(&bs[i]))
	}
	return out
}
