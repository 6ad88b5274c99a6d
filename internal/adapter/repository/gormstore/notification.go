package gormstore

import (
	"context"
	"time"

	notificationDomain "rentflow/internal/domain/notification"

	"gorm.io/gorm"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notificationDomain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) visible(ctx context.Context, userID string, now time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&notificationDomain.Notification{}).
		Where("user_id = ? AND expires_at > ?", userID, now)
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, now time.Time) ([]notificationDomain.Notification, error) {
	var out []notificationDomain.Notification
	q := r.visible(ctx, userID, now)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string, now time.Time) (int64, error) {
	var n int64
	err := r.visible(ctx, userID, now).Where("is_read = ?", false).Count(&n).Error
	return n, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	var n notificationDomain.Notification
	err := r.db.WithContext(ctx).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		First(&n).Error
	if err != nil {
		return notFound(err, notificationDomain.ErrNotFound)
	}
	if n.IsRead {
		return nil
	}
	return r.db.WithContext(ctx).Model(&n).Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notificationDomain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&notificationDomain.Notification{})
	return res.RowsAffected, res.Error
}
