package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentflow/internal/domain/booking"
	domain "rentflow/internal/domain/payment"
	"rentflow/pkg/datex"
	"rentflow/pkg/id"
)

// NextDueDate is the first of today's month for a booking without payments,
// otherwise one calendar month after its latest due date.
func NextDueDate(ctx context.Context, payments domain.Repository, ref domain.BookingRef, today time.Time) (time.Time, error) {
	latest, err := payments.LatestByBooking(ctx, ref)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return datex.FirstOfMonth(today), nil
	case err != nil:
		return time.Time{}, err
	}
	return datex.AddMonths(latest.DueDate, 1), nil
}

// GenerateNextPayment appends the next PENDING payment to b's schedule.
// It must run inside the transaction that changed b.
func GenerateNextPayment(ctx context.Context, payments domain.Repository, b *booking.Booking, today time.Time) (*domain.MonthlyPayment, error) {
	ref, err := domain.RefOf(b)
	if err != nil {
		return nil, err
	}
	due, err := NextDueDate(ctx, payments, ref, today)
	if err != nil {
		return nil, fmt.Errorf("next due date: %w", err)
	}
	p := &domain.MonthlyPayment{
		PaymentID: id.NewID32(),
		Ref:       ref,
		DueDate:   due,
		Amount:    b.MonthlyRent,
		Status:    domain.StatusPending,
	}
	if err := payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
