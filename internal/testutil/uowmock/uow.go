package uowmock

import (
	"context"
	"errors"

	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn        func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinBookingTxFn func(ctx context.Context, bookingID string, fn func(r uow.Repos, b *booking.Booking) error) error
	WithinPaymentTxFn func(ctx context.Context, paymentID string, fn func(r uow.Repos, b *booking.Booking, p *payment.MonthlyPayment) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinBookingTx(fn func(context.Context, string, func(uow.Repos, *booking.Booking) error) error) *UoW {
	m.WithinBookingTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs every closure directly against r, resolving locked rows
// through r the same way the gorm implementation does. There is no rollback.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(r)
		},
		WithinBookingTxFn: func(ctx context.Context, bookingID string, fn func(uow.Repos, *booking.Booking) error) error {
			b, err := r.Bookings.GetByBookingIDForUpdate(ctx, bookingID)
			if err != nil {
				return err
			}
			return fn(r, b)
		},
		WithinPaymentTxFn: func(ctx context.Context, paymentID string, fn func(uow.Repos, *booking.Booking, *payment.MonthlyPayment) error) error {
			peek, err := r.Payments.GetByPaymentID(ctx, paymentID)
			if err != nil {
				return err
			}
			b, err := r.Bookings.GetByIDForUpdate(ctx, peek.Ref.ID)
			if err != nil {
				return err
			}
			p, err := r.Payments.GetByPaymentIDForUpdate(ctx, paymentID)
			if err != nil {
				return err
			}
			return fn(r, b, p)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinBookingTx(ctx context.Context, bookingID string, fn func(r uow.Repos, b *booking.Booking) error) error {
	if m.WithinBookingTxFn != nil {
		return m.WithinBookingTxFn(ctx, bookingID, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinPaymentTx(ctx context.Context, paymentID string, fn func(r uow.Repos, b *booking.Booking, p *payment.MonthlyPayment) error) error {
	if m.WithinPaymentTxFn != nil {
		return m.WithinPaymentTxFn(ctx, paymentID, fn)
	}
	return errUnimplemented
}
