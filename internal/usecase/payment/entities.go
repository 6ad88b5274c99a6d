package payment

import (
	"time"

	domain "rentflow/internal/domain/payment"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
)

type PaymentDTO struct {
	PaymentID        string          `json:"payment_id"`
	BookingKind      string          `json:"booking_kind"`
	DueDate          string          `json:"due_date"`
	Amount           decimal.Decimal `json:"amount"`
	LateFee          decimal.Decimal `json:"late_fee"`
	TotalDue         decimal.Decimal `json:"total_due"`
	Status           string          `json:"status"`
	PaidDate         string          `json:"paid_date,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func ToDTO(p *domain.MonthlyPayment) PaymentDTO {
	dto := PaymentDTO{
		PaymentID:        p.PaymentID,
		BookingKind:      string(p.Ref.Kind),
		DueDate:          datex.Format(p.DueDate),
		Amount:           p.Amount,
		LateFee:          p.Fee(),
		TotalDue:         p.TotalDue(),
		Status:           string(p.Status),
		PaymentReference: p.PaymentReference,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.PaidDate != nil {
		dto.PaidDate = datex.Format(*p.PaidDate)
	}
	return dto
}

func ToDTOs(ps []domain.MonthlyPayment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(ps))
	for i := range ps {
		out = append(out, ToDTO(&ps[i]))
	}
	return out
}

type OutstandingDTO struct {
	TenantID string          `json:"tenant_id"`
	Total    decimal.Decimal `json:"total"`
	Payments []PaymentDTO    `json:"payments"`
}

type OwnerSummaryDTO struct {
	OwnerID       string          `json:"owner_id"`
	PendingCount  int             `json:"pending_count"`
	OverdueCount  int             `json:"overdue_count"`
	PaidCount     int             `json:"paid_count"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	Revenue       decimal.Decimal `json:"revenue"`
	From          string          `json:"from"`
	To            string          `json:"to"`
}
