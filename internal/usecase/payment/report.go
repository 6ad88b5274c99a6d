package payment

import (
	"context"
	"time"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/errs"
	domain "rentflow/internal/domain/payment"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
)

func self(by actor.Actor, userID string) error {
	if by.IsAdmin() || by.Is(userID) {
		return nil
	}
	return errs.Forbidden("not allowed to read payments of %s", userID)
}

// Outstanding sums principal and late fee over every open payment of tenantID.
func (u *Usecase) Outstanding(ctx context.Context, by actor.Actor, tenantID string) (*OutstandingDTO, error) {
	if err := self(by, tenantID); err != nil {
		return nil, err
	}
	ps, err := u.payments.ListByTenant(ctx, tenantID, domain.StatusPending, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for i := range ps {
		total = total.Add(ps[i].TotalDue())
	}
	return &OutstandingDTO{TenantID: tenantID, Total: total, Payments: ToDTOs(ps)}, nil
}

// Overdue lists open payments of tenantID whose due date has passed.
func (u *Usecase) Overdue(ctx context.Context, by actor.Actor, tenantID string) ([]PaymentDTO, error) {
	if err := self(by, tenantID); err != nil {
		return nil, err
	}
	ps, err := u.payments.ListByTenant(ctx, tenantID, domain.StatusPending, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}
	today := datex.Day(u.now())
	late := ps[:0]
	for _, p := range ps {
		if p.DueDate.Before(today) {
			late = append(late, p)
		}
	}
	return ToDTOs(late), nil
}

// OwnerSummary counts ownerID's payments by status and totals revenue
// collected between from and to inclusive.
func (u *Usecase) OwnerSummary(ctx context.Context, by actor.Actor, ownerID string, from, to time.Time) (*OwnerSummaryDTO, error) {
	if err := self(by, ownerID); err != nil {
		return nil, err
	}
	from, to = datex.Day(from), datex.Day(to)
	if to.Before(from) {
		return nil, errs.Validation("to must not be before from")
	}
	ps, err := u.payments.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := &OwnerSummaryDTO{
		OwnerID:       ownerID,
		PendingAmount: decimal.Zero,
		OverdueAmount: decimal.Zero,
		Revenue:       decimal.Zero,
		From:          datex.Format(from),
		To:            datex.Format(to),
	}
	for i := range ps {
		p := &ps[i]
		switch p.Status {
		case domain.StatusPending:
			out.PendingCount++
			out.PendingAmount = out.PendingAmount.Add(p.Amount)
		case domain.StatusOverdue:
			out.OverdueCount++
			out.OverdueAmount = out.OverdueAmount.Add(p.TotalDue())
		case domain.StatusPaid:
			out.PaidCount++
			if p.PaidDate != nil && !p.PaidDate.Before(from) && !p.PaidDate.After(to) {
				out.Revenue = out.Revenue.Add(p.TotalDue())
			}
		}
	}
	return out, nil
}
