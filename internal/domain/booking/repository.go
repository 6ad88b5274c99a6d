package booking

import (
	"context"
	"time"

	"rentflow/internal/domain/asset"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Save(ctx context.Context, b *Booking) error

	GetByBookingID(ctx context.Context, bookingID string) (*Booking, error)
	GetByID(ctx context.Context, id uint64) (*Booking, error)

	// Row-locking variants; only meaningful inside a transaction.
	GetByBookingIDForUpdate(ctx context.Context, bookingID string) (*Booking, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Booking, error)

	// ACTIVE bookings on ref whose [start, end] intersects [from, to].
	// A NULL end date is open-ended.
	FindActiveOverlapping(ctx context.Context, ref asset.Ref, from, to time.Time) ([]Booking, error)

	ListByTenant(ctx context.Context, tenantID string) ([]Booking, error)
	// No statuses means all of them.
	ListByOwner(ctx context.Context, ownerID string, statuses ...Status) ([]Booking, error)
}
