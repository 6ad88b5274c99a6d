package payment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *MonthlyPayment) error
	Save(ctx context.Context, p *MonthlyPayment) error

	GetByPaymentID(ctx context.Context, paymentID string) (*MonthlyPayment, error)
	GetByPaymentIDForUpdate(ctx context.Context, paymentID string) (*MonthlyPayment, error)

	// LatestByBooking returns the payment with the greatest due date, or
	// ErrNotFound when the booking has none yet.
	LatestByBooking(ctx context.Context, ref BookingRef) (*MonthlyPayment, error)
	ListByBooking(ctx context.Context, ref BookingRef) ([]MonthlyPayment, error)
	// Locks every PENDING/OVERDUE payment of the booking.
	ListOpenByBookingForUpdate(ctx context.Context, ref BookingRef) ([]MonthlyPayment, error)

	// PENDING or OVERDUE payments with due_date < asOf, oldest first.
	ListAccrualCandidates(ctx context.Context, asOf time.Time) ([]MonthlyPayment, error)
	// Payments in status with from <= due_date <= to.
	ListDueBetween(ctx context.Context, status Status, from, to time.Time) ([]MonthlyPayment, error)

	// Payments of every booking held by tenantID / owned by ownerID.
	// No statuses means all of them.
	ListByTenant(ctx context.Context, tenantID string, statuses ...Status) ([]MonthlyPayment, error)
	ListByOwner(ctx context.Context, ownerID string, statuses ...Status) ([]MonthlyPayment, error)
}
