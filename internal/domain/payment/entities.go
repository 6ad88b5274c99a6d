package payment

import (
	"errors"
	"fmt"
	"time"

	"rentflow/internal/domain/booking"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("payment not found")

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusOverdue   Status = "OVERDUE"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// BookingRef points a payment at the booking it belongs to. The kind is kept
// next to the id so reports can split rent and PG income without a join.
type BookingRef struct {
	Kind booking.Kind `gorm:"size:8;not null" json:"kind"`
	ID   uint64       `gorm:"not null;index:idx_payments_booking" json:"id"`
}

func NewBookingRef(kind booking.Kind, id uint64) (BookingRef, error) {
	switch kind {
	case booking.KindRent, booking.KindPG:
	default:
		return BookingRef{}, fmt.Errorf("unknown booking kind %q", kind)
	}
	if id == 0 {
		return BookingRef{}, errors.New("booking id is required")
	}
	return BookingRef{Kind: kind, ID: id}, nil
}

// RefOf builds the reference for a persisted booking.
func RefOf(b *booking.Booking) (BookingRef, error) { return NewBookingRef(b.Kind(), b.ID) }

// Table: monthly_payments
type MonthlyPayment struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	PaymentID string `gorm:"size:32;not null;uniqueIndex:ux_payments_payment_id" json:"payment_id"`

	Ref BookingRef `gorm:"embedded;embeddedPrefix:booking_" json:"booking_ref"`

	DueDate time.Time `gorm:"type:date;not null;index:idx_payments_status_due,priority:2" json:"due_date"`
	// Amount is the principal still owed; LateFee the fee still owed.
	Amount  decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"amount"`
	LateFee decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"late_fee"`
	Status  Status              `gorm:"size:16;not null;index:idx_payments_status_due,priority:1" json:"status"`

	PaidDate         *time.Time `gorm:"type:date" json:"paid_date,omitempty"`
	PaymentReference string     `gorm:"size:64" json:"payment_reference,omitempty"`

	// EscalatedAt is set once the owner has been told about this payment.
	EscalatedAt *time.Time `json:"escalated_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MonthlyPayment) TableName() string { return "monthly_payments" }

// Fee returns the stored late fee, zero when none was ever applied.
func (p *MonthlyPayment) Fee() decimal.Decimal {
	if p.LateFee.Valid {
		return p.LateFee.Decimal
	}
	return decimal.Zero
}

func (p *MonthlyPayment) TotalDue() decimal.Decimal { return p.Amount.Add(p.Fee()) }

// IsOpen: still collectable.
func (p *MonthlyPayment) IsOpen() bool {
	return p.Status == StatusPending || p.Status == StatusOverdue
}
