package booking

import (
	"errors"
	"time"

	"rentflow/internal/domain/asset"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("booking not found")

type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusActive          Status = "ACTIVE"
	StatusRejected        Status = "REJECTED"
	StatusCancelled       Status = "CANCELLED"
	StatusTerminated      Status = "TERMINATED"
	StatusCompleted       Status = "COMPLETED"
)

// Kind is derived from the asset: a whole property is a RENT booking, a bed
// is a PG booking.
type Kind string

const (
	KindRent Kind = "RENT"
	KindPG   Kind = "PG"
)

// Defaults applied when a booking carries no late-fee policy of its own.
var (
	DefaultLateFeeRatePercent = decimal.NewFromInt(5)
	DefaultGracePeriodDays    = 3
)

// Table: bookings
type Booking struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	BookingID string `gorm:"size:32;not null;uniqueIndex:ux_bookings_booking_id" json:"booking_id"`

	TenantID string `gorm:"size:32;not null;index:idx_bookings_tenant" json:"tenant_id"`

	// OwnerID is copied from the asset at creation and never re-derived.
	OwnerID    string     `gorm:"size:32;not null;index:idx_bookings_owner" json:"owner_id"`
	AssetKind  asset.Kind `gorm:"size:16;not null;index:idx_bookings_asset,priority:1" json:"asset_kind"`
	AssetID    uint64     `gorm:"not null;index:idx_bookings_asset,priority:2" json:"asset_id"`
	AssetTitle string     `gorm:"size:255" json:"asset_title"`

	StartDate       time.Time           `gorm:"type:date;not null" json:"start_date"`
	EndDate         *time.Time          `gorm:"type:date" json:"end_date,omitempty"`
	MonthlyRent     decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"monthly_rent"`
	SecurityDeposit decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"security_deposit"`

	LateFeeRatePercent decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"late_fee_rate_percent"`
	GracePeriodDays    *int                `json:"grace_period_days,omitempty"`
	AutoRenewal        bool                `gorm:"not null;default:false" json:"auto_renewal"`

	Status             Status     `gorm:"size:20;not null;index:idx_bookings_status" json:"status"`
	ApprovalDate       *time.Time `json:"approval_date,omitempty"`
	RejectionReason    string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason,omitempty"`
	TerminationReason  string     `gorm:"type:text" json:"termination_reason,omitempty"`
	TerminationDate    *time.Time `gorm:"type:date" json:"termination_date,omitempty"`
	CompletedDate      *time.Time `gorm:"type:date" json:"completed_date,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) Asset() asset.Ref { return asset.Ref{Kind: b.AssetKind, ID: b.AssetID} }

func (b *Booking) Kind() Kind {
	if b.AssetKind == asset.KindPgBed {
		return KindPG
	}
	return KindRent
}

// Policy is the effective late-fee policy of a booking.
type Policy struct {
	RatePercent decimal.Decimal
	GraceDays   int
}

// Policy resolves the booking's late-fee settings, falling back to defaults.
// Negative stored values are rejected so a corrupt row can't produce credits.
func (b *Booking) Policy() (Policy, error) {
	p := Policy{RatePercent: DefaultLateFeeRatePercent, GraceDays: DefaultGracePeriodDays}
	if b.LateFeeRatePercent.Valid {
		p.RatePercent = b.LateFeeRatePercent.Decimal
	}
	if b.GracePeriodDays != nil {
		p.GraceDays = *b.GracePeriodDays
	}
	if p.RatePercent.IsNegative() {
		return p, errors.New("late fee rate must not be negative")
	}
	if p.GraceDays < 0 {
		return p, errors.New("grace period must not be negative")
	}
	return p, nil
}
