package gormstore

import (
	"context"
	"time"

	"rentflow/internal/domain/asset"
	bookingDomain "rentflow/internal/domain/booking"

	"gorm.io/gorm"
)

type BookingRepository struct{ db *gorm.DB }

func NewBookingRepository(db *gorm.DB) *BookingRepository { return &BookingRepository{db: db} }

func (r *BookingRepository) Create(ctx context.Context, b *bookingDomain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*bookingDomain.Booking, error) {
	return r.first(r.db.WithContext(ctx).Where("booking_id = ?", bookingID))
}

func (r *BookingRepository) GetByID(ctx context.Context, id uint64) (*bookingDomain.Booking, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *BookingRepository) GetByBookingIDForUpdate(ctx context.Context, bookingID string) (*bookingDomain.Booking, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Where("booking_id = ?", bookingID))
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*bookingDomain.Booking, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

func (r *BookingRepository) first(q *gorm.DB) (*bookingDomain.Booking, error) {
	var out bookingDomain.Booking
	if err := q.First(&out).Error; err != nil {
		return nil, notFound(err, bookingDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *BookingRepository) FindActiveOverlapping(ctx context.Context, ref asset.Ref, from, to time.Time) ([]bookingDomain.Booking, error) {
	var out []bookingDomain.Booking
	err := r.db.WithContext(ctx).
		Where("asset_kind = ? AND asset_id = ? AND status = ?", ref.Kind, ref.ID, bookingDomain.StatusActive).
		Where("start_date <= ?", to).
		Where("(end_date IS NULL OR end_date >= ?)", from).
		Order("start_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListByTenant(ctx context.Context, tenantID string) ([]bookingDomain.Booking, error) {
	var out []bookingDomain.Booking
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string, statuses ...bookingDomain.Status) ([]bookingDomain.Booking, error) {
	var out []bookingDomain.Booking
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}
