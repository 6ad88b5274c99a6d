package booking

import (
	"time"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/errs"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusTerminated, StatusCompleted:
		return true
	}
	return false
}

func (b *Booking) IsTerminal() bool { return b.Status.IsTerminal() }

// CanManage: owner of the booking or an administrator.
func (b *Booking) CanManage(a actor.Actor) bool { return a.IsAdmin() || a.Is(b.OwnerID) }

// CanCancel: tenant, owner or administrator.
func (b *Booking) CanCancel(a actor.Actor) bool { return b.CanManage(a) || a.Is(b.TenantID) }

// CanPay: tenant or administrator.
func (b *Booking) CanPay(a actor.Actor) bool { return a.IsAdmin() || a.Is(b.TenantID) }

// Approve moves PENDING_APPROVAL -> ACTIVE, optionally overriding the agreed
// rent and deposit.
func (b *Booking) Approve(now time.Time, finalRent, finalDeposit *decimal.Decimal) error {
	if b.Status != StatusPendingApproval {
		return errs.InvalidState(string(b.Status), "booking %s is not pending approval", b.BookingID)
	}
	if finalRent != nil {
		if !finalRent.IsPositive() {
			return errs.Validation("final monthly rent must be positive")
		}
		b.MonthlyRent = *finalRent
	}
	if finalDeposit != nil {
		if finalDeposit.IsNegative() {
			return errs.Validation("final security deposit must not be negative")
		}
		b.SecurityDeposit = decimal.NewNullDecimal(*finalDeposit)
	}
	at := now.UTC()
	b.Status = StatusActive
	b.ApprovalDate = &at
	return nil
}

func (b *Booking) Reject(reason string) error {
	if b.Status != StatusPendingApproval {
		return errs.InvalidState(string(b.Status), "booking %s is not pending approval", b.BookingID)
	}
	b.Status = StatusRejected
	b.RejectionReason = reason
	return nil
}

// Cancel is allowed from any non-terminal state.
func (b *Booking) Cancel(reason string) error {
	if b.IsTerminal() {
		return errs.InvalidState(string(b.Status), "booking %s is already closed", b.BookingID)
	}
	b.Status = StatusCancelled
	b.CancellationReason = reason
	return nil
}

func (b *Booking) Terminate(reason string, today time.Time) error {
	if b.Status != StatusActive {
		return errs.InvalidState(string(b.Status), "only active bookings can be terminated")
	}
	d := datex.Day(today)
	b.Status = StatusTerminated
	b.TerminationReason = reason
	b.TerminationDate = &d
	return nil
}

func (b *Booking) Complete(today time.Time) error {
	if b.Status != StatusActive {
		return errs.InvalidState(string(b.Status), "only active bookings can be completed")
	}
	d := datex.Day(today)
	b.Status = StatusCompleted
	b.CompletedDate = &d
	return nil
}
