package paymentmock

import (
	"context"
	"time"

	domain "rentflow/internal/domain/payment"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return context.Canceled, unset lists return nothing and
// unset writers succeed.
type Repo struct {
	CreateFn                     func(ctx context.Context, p *domain.MonthlyPayment) error
	SaveFn                       func(ctx context.Context, p *domain.MonthlyPayment) error
	GetByPaymentIDFn             func(ctx context.Context, paymentID string) (*domain.MonthlyPayment, error)
	GetByPaymentIDForUpdateFn    func(ctx context.Context, paymentID string) (*domain.MonthlyPayment, error)
	LatestByBookingFn            func(ctx context.Context, ref domain.BookingRef) (*domain.MonthlyPayment, error)
	ListByBookingFn              func(ctx context.Context, ref domain.BookingRef) ([]domain.MonthlyPayment, error)
	ListOpenByBookingForUpdateFn func(ctx context.Context, ref domain.BookingRef) ([]domain.MonthlyPayment, error)
	ListAccrualCandidatesFn      func(ctx context.Context, asOf time.Time) ([]domain.MonthlyPayment, error)
	ListDueBetweenFn             func(ctx context.Context, status domain.Status, from, to time.Time) ([]domain.MonthlyPayment, error)
	ListByTenantFn               func(ctx context.Context, tenantID string, statuses ...domain.Status) ([]domain.MonthlyPayment, error)
	ListByOwnerFn                func(ctx context.Context, ownerID string, statuses ...domain.Status) ([]domain.MonthlyPayment, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.MonthlyPayment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.MonthlyPayment) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.MonthlyPayment, error) {
	if m.GetByPaymentIDFn != nil {
		return m.GetByPaymentIDFn(ctx, paymentID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByPaymentIDForUpdate(ctx context.Context, paymentID string) (*domain.MonthlyPayment, error) {
	if m.GetByPaymentIDForUpdateFn != nil {
		return m.GetByPaymentIDForUpdateFn(ctx, paymentID)
	}
	return nil, context.Canceled
}

func (m *Repo) LatestByBooking(ctx context.Context, ref domain.BookingRef) (*domain.MonthlyPayment, error) {
	if m.LatestByBookingFn != nil {
		return m.LatestByBookingFn(ctx, ref)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByBooking(ctx context.Context, ref domain.BookingRef) ([]domain.MonthlyPayment, error) {
	if m.ListByBookingFn != nil {
		return m.ListByBookingFn(ctx, ref)
	}
	return nil, nil
}

func (m *Repo) ListOpenByBookingForUpdate(ctx context.Context, ref domain.BookingRef) ([]domain.MonthlyPayment, error) {
	if m.ListOpenByBookingForUpdateFn != nil {
		return m.ListOpenByBookingForUpdateFn(ctx, ref)
	}
	return nil, nil
}

func (m *Repo) ListAccrualCandidates(ctx context.Context, asOf time.Time) ([]domain.MonthlyPayment, error) {
	if m.ListAccrualCandidatesFn != nil {
		return m.ListAccrualCandidatesFn(ctx, asOf)
	}
	return nil, nil
}

func (m *Repo) ListDueBetween(ctx context.Context, status domain.Status, from, to time.Time) ([]domain.MonthlyPayment, error) {
	if m.ListDueBetweenFn != nil {
		return m.ListDueBetweenFn(ctx, status, from, to)
	}
	return nil, nil
}

func (m *Repo) ListByTenant(ctx context.Context, tenantID string, statuses ...domain.Status) ([]domain.MonthlyPayment, error) {
	if m.ListByTenantFn != nil {
		return m.ListByTenantFn(ctx, tenantID, statuses...)
	}
	return nil, nil
}

func (m *Repo) ListByOwner(ctx context.Context, ownerID string, statuses ...domain.Status) ([]domain.MonthlyPayment, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID, statuses...)
	}
	return nil, nil
}
