package notification

import (
	"context"
	"errors"
	"time"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/errs"
	domain "rentflow/internal/domain/notification"
)

type ListDTO struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

type Usecase struct {
	repo domain.Repository
	now  func() time.Time
}

func NewUsecase(repo domain.Repository) *Usecase {
	return &Usecase{repo: repo, now: time.Now}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// List returns the caller's unexpired notifications, newest first.
func (u *Usecase) List(ctx context.Context, by actor.Actor, unreadOnly bool) (*ListDTO, error) {
	if by.UserID == "" {
		return nil, errs.Forbidden("user identity required")
	}
	now := u.now()
	ns, err := u.repo.ListByUser(ctx, by.UserID, unreadOnly, now)
	if err != nil {
		return nil, err
	}
	unread, err := u.repo.CountUnread(ctx, by.UserID, now)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return &ListDTO{Notifications: ns, UnreadCount: unread}, nil
}

func (u *Usecase) UnreadCount(ctx context.Context, by actor.Actor) (int64, error) {
	if by.UserID == "" {
		return 0, errs.Forbidden("user identity required")
	}
	return u.repo.CountUnread(ctx, by.UserID, u.now())
}

// MarkRead only touches the caller's own notifications; anyone else's id
// reads as not found.
func (u *Usecase) MarkRead(ctx context.Context, by actor.Actor, notificationID string) error {
	if by.UserID == "" {
		return errs.Forbidden("user identity required")
	}
	err := u.repo.MarkRead(ctx, notificationID, by.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return errs.NotFound("notification %s not found", notificationID)
	}
	return err
}

func (u *Usecase) MarkAllRead(ctx context.Context, by actor.Actor) (int64, error) {
	if by.UserID == "" {
		return 0, errs.Forbidden("user identity required")
	}
	return u.repo.MarkAllRead(ctx, by.UserID)
}

// Cleanup drops read notifications older than domain.Retention.
func (u *Usecase) Cleanup(ctx context.Context) (int64, error) {
	return u.repo.DeleteReadBefore(ctx, u.now().Add(-domain.Retention))
}
