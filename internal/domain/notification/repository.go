package notification

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// Unexpired notifications of userID, newest first.
	ListByUser(ctx context.Context, userID string, unreadOnly bool, now time.Time) ([]Notification, error)
	CountUnread(ctx context.Context, userID string, now time.Time) (int64, error)
	// MarkRead returns ErrNotFound when the notification is not userID's.
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// DeleteReadBefore removes read notifications created before cutoff.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
