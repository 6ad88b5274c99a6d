package gormstore

import (
	"context"
	"time"

	paymentDomain "rentflow/internal/domain/payment"

	"gorm.io/gorm"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

var openStatuses = []paymentDomain.Status{paymentDomain.StatusPending, paymentDomain.StatusOverdue}

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.MonthlyPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) Save(ctx context.Context, p *paymentDomain.MonthlyPayment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*paymentDomain.MonthlyPayment, error) {
	return r.first(r.db.WithContext(ctx).Where("payment_id = ?", paymentID))
}

func (r *PaymentRepository) GetByPaymentIDForUpdate(ctx context.Context, paymentID string) (*paymentDomain.MonthlyPayment, error) {
	return r.first(r.db.WithContext(ctx).Clauses(forUpdate).Where("payment_id = ?", paymentID))
}

// LatestByBooking orders instead of using MAX(due_date): SQLite returns
// aggregates as text and loses the DATE column type.
func (r *PaymentRepository) LatestByBooking(ctx context.Context, ref paymentDomain.BookingRef) (*paymentDomain.MonthlyPayment, error) {
	return r.first(r.db.WithContext(ctx).
		Where("booking_kind = ? AND booking_id = ?", ref.Kind, ref.ID).
		Order("due_date DESC, id DESC"))
}

func (r *PaymentRepository) first(q *gorm.DB) (*paymentDomain.MonthlyPayment, error) {
	var out paymentDomain.MonthlyPayment
	if err := q.First(&out).Error; err != nil {
		return nil, notFound(err, paymentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, ref paymentDomain.BookingRef) ([]paymentDomain.MonthlyPayment, error) {
	var out []paymentDomain.MonthlyPayment
	err := r.db.WithContext(ctx).
		Where("booking_kind = ? AND booking_id = ?", ref.Kind, ref.ID).
		Order("due_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *PaymentRepository) ListOpenByBookingForUpdate(ctx context.Context, ref paymentDomain.BookingRef) ([]paymentDomain.MonthlyPayment, error) {
	var out []paymentDomain.MonthlyPayment
	err := r.db.WithContext(ctx).Clauses(forUpdate).
		Where("booking_kind = ? AND booking_id = ?", ref.Kind, ref.ID).
		Where("status IN ?", openStatuses).
		Order("due_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *PaymentRepository) ListAccrualCandidates(ctx context.Context, asOf time.Time) ([]paymentDomain.MonthlyPayment, error) {
	var out []paymentDomain.MonthlyPayment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?", openStatuses, asOf).
		Order("due_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *PaymentRepository) ListDueBetween(ctx context.Context, status paymentDomain.Status, from, to time.Time) ([]paymentDomain.MonthlyPayment, error) {
	var out []paymentDomain.MonthlyPayment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date >= ? AND due_date <= ?", status, from, to).
		Order("due_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *PaymentRepository) ListByTenant(ctx context.Context, tenantID string, statuses ...paymentDomain.Status) ([]paymentDomain.MonthlyPayment, error) {
	return r.listJoined(ctx, "bookings.tenant_id = ?", tenantID, statuses)
}

func (r *PaymentRepository) ListByOwner(ctx context.Context, ownerID string, statuses ...paymentDomain.Status) ([]paymentDomain.MonthlyPayment, error) {
	return r.listJoined(ctx, "bookings.owner_id = ?", ownerID, statuses)
}

func (r *PaymentRepository) listJoined(ctx context.Context, cond, userID string, statuses []paymentDomain.Status) ([]paymentDomain.MonthlyPayment, error) {
	var out []paymentDomain.MonthlyPayment
	q := r.db.WithContext(ctx).
		Select("monthly_payments.*").
		Joins("JOIN bookings ON bookings.id = monthly_payments.booking_id AND bookings.deleted_at IS NULL").
		Where(cond, userID)
	if len(statuses) > 0 {
		q = q.Where("monthly_payments.status IN ?", statuses)
	}
	err := q.Order("monthly_payments.due_date ASC, monthly_payments.id ASC").Find(&out).Error
	return out, err
}
