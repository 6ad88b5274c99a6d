package bookingmock

import (
	"context"
	"time"

	"rentflow/internal/domain/asset"
	domain "rentflow/internal/domain/booking"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return context.Canceled; unset writers succeed.
type Repo struct {
	CreateFn                  func(ctx context.Context, b *domain.Booking) error
	SaveFn                    func(ctx context.Context, b *domain.Booking) error
	GetByBookingIDFn          func(ctx context.Context, bookingID string) (*domain.Booking, error)
	GetByIDFn                 func(ctx context.Context, id uint64) (*domain.Booking, error)
	GetByBookingIDForUpdateFn func(ctx context.Context, bookingID string) (*domain.Booking, error)
	GetByIDForUpdateFn        func(ctx context.Context, id uint64) (*domain.Booking, error)
	FindActiveOverlappingFn   func(ctx context.Context, ref asset.Ref, from, to time.Time) ([]domain.Booking, error)
	ListByTenantFn            func(ctx context.Context, tenantID string) ([]domain.Booking, error)
	ListByOwnerFn             func(ctx context.Context, ownerID string, statuses ...domain.Status) ([]domain.Booking, error)
}

func (m *Repo) Create(ctx context.Context, b *domain.Booking) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, b *domain.Booking) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if m.GetByBookingIDFn != nil {
		return m.GetByBookingIDFn(ctx, bookingID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Booking, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByBookingIDForUpdate(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if m.GetByBookingIDForUpdateFn != nil {
		return m.GetByBookingIDForUpdateFn(ctx, bookingID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Booking, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) FindActiveOverlapping(ctx context.Context, ref asset.Ref, from, to time.Time) ([]domain.Booking, error) {
	if m.FindActiveOverlappingFn != nil {
		return m.FindActiveOverlappingFn(ctx, ref, from, to)
	}
	return nil, nil
}

func (m *Repo) ListByTenant(ctx context.Context, tenantID string) ([]domain.Booking, error) {
	if m.ListByTenantFn != nil {
		return m.ListByTenantFn(ctx, tenantID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByOwner(ctx context.Context, ownerID string, statuses ...domain.Status) ([]domain.Booking, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID, statuses...)
	}
	return nil, context.Canceled
}
