package uow

import (
	"context"

	"rentflow/internal/domain/asset"
	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/wallet"
)

// Repos are bound to the transaction of the enclosing UnitOfWork call.
type Repos struct {
	Bookings booking.Repository
	Payments payment.Repository
	Wallets  wallet.Repository
	Assets   asset.Repository
}

// UnitOfWork runs fn inside one transaction. Locks are always taken in the
// order booking, asset, payment, wallet.
type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the booking first, then pass it in
	WithinBookingTx(ctx context.Context, bookingID string, fn func(r Repos, b *booking.Booking) error) error
	// resolve the payment's booking, lock booking then payment, pass both in
	WithinPaymentTx(ctx context.Context, paymentID string, fn func(r Repos, b *booking.Booking, p *payment.MonthlyPayment) error) error
}
