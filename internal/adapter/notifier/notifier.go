// Package notifier delivers domain events as in-app notifications: each one
// is stored for the inbox and pushed to the recipient's live channel.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"rentflow/internal/domain/event"
	"rentflow/internal/domain/notification"
)

// ChannelPrefix + user id is the pub/sub channel a client subscribes to.
const ChannelPrefix = "notifications:"

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

var _ event.Dispatcher = (*Notifier)(nil)

type Notifier struct {
	repo notification.Repository
	pub  Publisher
	now  func() time.Time
}

// New returns a Notifier. pub may be nil, in which case notifications are
// only stored.
func New(repo notification.Repository, pub Publisher) *Notifier {
	return &Notifier{repo: repo, pub: pub, now: time.Now}
}

func (n *Notifier) WithClock(now func() time.Time) *Notifier {
	n.now = now
	return n
}

// Dispatch stores every notification the events produce. A failed push is
// only logged since the stored copy is still in the inbox.
func (n *Notifier) Dispatch(ctx context.Context, events ...event.Event) error {
	var errs []error
	now := n.now()
	for _, e := range events {
		for _, msg := range notification.FromEvent(e, now) {
			if err := n.repo.Create(ctx, &msg); err != nil {
				errs = append(errs, fmt.Errorf("store %s for %s: %w", msg.Category, msg.UserID, err))
				continue
			}
			n.push(ctx, &msg)
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) push(ctx context.Context, msg *notification.Notification) {
	if n.pub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("notifier: encode %s: %v", msg.NotificationID, err)
		return
	}
	if err := n.pub.Publish(ctx, ChannelPrefix+msg.UserID, payload); err != nil {
		log.Printf("notifier: publish %s to %s: %v", msg.NotificationID, msg.UserID, err)
	}
}
