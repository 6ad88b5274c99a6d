package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("notification not found")

type Category string

const (
	BookingCreated    Category = "BOOKING_CREATED"
	BookingApproved   Category = "BOOKING_APPROVED"
	BookingRejected   Category = "BOOKING_REJECTED"
	BookingCancelled  Category = "BOOKING_CANCELLED"
	BookingTerminated Category = "BOOKING_TERMINATED"
	BookingCompleted  Category = "BOOKING_COMPLETED"
	PaymentDue        Category = "PAYMENT_DUE"
	PaymentOverdue    Category = "PAYMENT_OVERDUE"
	PaymentReceived   Category = "PAYMENT_RECEIVED"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// TTL is how long a notification stays visible.
const TTL = 30 * 24 * time.Hour

// Retention is how long read notifications are kept before cleanup.
const Retention = 90 * 24 * time.Hour

func PriorityFor(c Category) Priority {
	switch c {
	case BookingRejected, PaymentOverdue, BookingTerminated:
		return PriorityHigh
	case BookingApproved, PaymentDue, BookingCancelled:
		return PriorityMedium
	}
	return PriorityLow
}

// Table: booking_notifications
type Notification struct {
	ID             uint64         `gorm:"primaryKey;column:id" json:"-"`
	NotificationID string         `gorm:"size:36;not null;uniqueIndex:ux_notifications_nid" json:"notification_id"`
	UserID         string         `gorm:"size:32;not null;index:idx_notifications_user,priority:1" json:"user_id"`
	Category       Category       `gorm:"size:32;not null" json:"category"`
	Priority       Priority       `gorm:"size:8;not null" json:"priority"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Body           string         `gorm:"type:text" json:"body"`
	Link           string         `gorm:"size:255" json:"link,omitempty"`
	BookingID      string         `gorm:"size:32" json:"booking_id,omitempty"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	IsRead         bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time      `gorm:"index:idx_notifications_user,priority:2" json:"created_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
}

func (Notification) TableName() string { return "booking_notifications" }

// New fills identity, priority and expiry.
func New(userID string, c Category, title, body string, now time.Time) Notification {
	now = now.UTC()
	return Notification{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		Category:       c,
		Priority:       PriorityFor(c),
		Title:          title,
		Body:           body,
		CreatedAt:      now,
		ExpiresAt:      now.Add(TTL),
	}
}

func (n *Notification) Expired(now time.Time) bool { return !now.Before(n.ExpiresAt) }
