package gormstore

import (
	"context"
	"fmt"

	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Bookings: &BookingRepository{db: tx},
		Payments: &PaymentRepository{db: tx},
		Wallets:  &WalletRepository{db: tx},
		Assets:   &AssetRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinBookingTx(ctx context.Context, bookingID string, fn func(r uow.Repos, b *booking.Booking) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the booking row up-front to prevent races
		b, err := r.Bookings.GetByBookingIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		return fn(r, b)
	})
}

// WithinPaymentTx keeps the booking -> payment lock order: the payment is
// read once without a lock only to learn its booking.
func (u *GormUoW) WithinPaymentTx(ctx context.Context, paymentID string, fn func(r uow.Repos, b *booking.Booking, p *payment.MonthlyPayment) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		peek, err := r.Payments.GetByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		b, err := r.Bookings.GetByIDForUpdate(ctx, peek.Ref.ID)
		if err != nil {
			return fmt.Errorf("booking of payment %s: %w", paymentID, err)
		}
		p, err := r.Payments.GetByPaymentIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		return fn(r, b, p)
	})
}
