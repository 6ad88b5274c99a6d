package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/errs"
	"rentflow/internal/domain/event"
	domain "rentflow/internal/domain/payment"
	"rentflow/internal/domain/uow"
	walletDomain "rentflow/internal/domain/wallet"
	"rentflow/internal/usecase/wallet"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
)

type Usecase struct {
	payments   domain.Repository
	bookings   booking.Repository
	uow        uow.UnitOfWork
	dispatcher event.Dispatcher
	now        func() time.Time
}

func NewUsecase(payments domain.Repository, bookings booking.Repository, tx uow.UnitOfWork, d event.Dispatcher) *Usecase {
	return &Usecase{payments: payments, bookings: bookings, uow: tx, dispatcher: d, now: time.Now}
}

// WithClock replaces the wall clock; tests pin "today" with it.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Settle applies paid from the tenant's wallet to a PENDING or OVERDUE
// payment. Paying the full total closes the payment and schedules the next
// one; anything less pays principal first, then the late fee.
func (u *Usecase) Settle(ctx context.Context, payer actor.Actor, paymentID string, paid decimal.Decimal) (*PaymentDTO, error) {
	if !paid.IsPositive() {
		return nil, errs.Validation("paid amount must be positive")
	}
	if !paid.Equal(paid.Round(2)) {
		return nil, errs.Validation("paid amount must have at most 2 decimal places")
	}
	today := datex.Day(u.now())

	var (
		dto    PaymentDTO
		events []event.Event
	)
	err := u.uow.WithinPaymentTx(ctx, paymentID, func(r uow.Repos, b *booking.Booking, p *domain.MonthlyPayment) error {
		events = events[:0]
		if !b.CanPay(payer) {
			return errs.Forbidden("only the tenant can pay booking %s", b.BookingID)
		}
		if !p.IsOpen() {
			return errs.InvalidState(string(p.Status), "payment %s is not payable", p.PaymentID)
		}

		total := p.TotalDue()
		debit := decimal.Min(paid, total)
		txn, err := wallet.ApplyInTx(ctx, r.Wallets, walletDomain.TxnDebit, wallet.MoveInput{
			UserID:      b.TenantID,
			Amount:      debit,
			Description: fmt.Sprintf("Rent for %s due %s", b.AssetTitle, datex.Format(p.DueDate)),
			ReferenceID: &p.PaymentID,
		})
		if errors.Is(err, errs.ErrInsufficientFunds) {
			return errs.InsufficientFunds(total, "wallet balance is insufficient for payment %s", p.PaymentID)
		}
		if err != nil {
			return err
		}

		if paid.GreaterThanOrEqual(total) {
			p.Status = domain.StatusPaid
			p.PaidDate = &today
			p.PaymentReference = txn.TxnID
		} else if paid.GreaterThanOrEqual(p.Amount) {
			p.LateFee = decimal.NewNullDecimal(p.Fee().Sub(paid.Sub(p.Amount)))
			p.Amount = decimal.Zero
		} else {
			p.Amount = p.Amount.Sub(paid)
		}
		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}

		if p.Status == domain.StatusPaid && b.Status == booking.StatusActive {
			if _, err := GenerateNextPayment(ctx, r.Payments, b, today); err != nil {
				return err
			}
		}

		events = append(events, event.Event{
			Type:       event.PaymentReceived,
			OccurredAt: u.now().UTC(),
			BookingID:  b.BookingID,
			PaymentID:  p.PaymentID,
			TenantID:   b.TenantID,
			OwnerID:    b.OwnerID,
			AssetTitle: b.AssetTitle,
			ActorID:    payer.UserID,
			Amount:     debit,
			DueDate:    p.DueDate,
		})
		dto = ToDTO(p)
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	event.Publish(ctx, u.dispatcher, events)
	return &dto, nil
}

// Get returns one payment to its tenant, its owner or an administrator.
func (u *Usecase) Get(ctx context.Context, by actor.Actor, paymentID string) (*PaymentDTO, error) {
	p, err := u.payments.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, notFound(err)
	}
	b, err := u.bookings.GetByID(ctx, p.Ref.ID)
	if err != nil {
		return nil, notFound(err)
	}
	if !b.CanCancel(by) {
		return nil, errs.Forbidden("not a party to booking %s", b.BookingID)
	}
	dto := ToDTO(p)
	return &dto, nil
}

func notFound(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errs.NotFound("payment not found")
	case errors.Is(err, booking.ErrNotFound):
		return errs.NotFound("booking not found")
	}
	return err
}
