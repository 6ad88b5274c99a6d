// Package event carries facts produced by committed state changes. Usecases
// collect events while a transaction runs and hand them to a Dispatcher only
// after it commits, so a rolled-back change never notifies anyone.
package event

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	BookingCreated         Type = "BookingCreated"
	BookingApproved        Type = "BookingApproved"
	BookingRejected        Type = "BookingRejected"
	BookingCancelled       Type = "BookingCancelled"
	BookingTerminated      Type = "BookingTerminated"
	BookingCompleted       Type = "BookingCompleted"
	PaymentDueReminder     Type = "PaymentDueReminder"
	PaymentOverdue         Type = "PaymentOverdue"
	PaymentSeverelyOverdue Type = "PaymentSeverelyOverdue"
	PaymentReceived        Type = "PaymentReceived"
)

type Event struct {
	Type       Type
	OccurredAt time.Time

	BookingID  string
	PaymentID  string
	TenantID   string
	OwnerID    string
	AssetTitle string

	// ActorID is who caused the change; used to pick the counterparty on
	// cancellation.
	ActorID string

	// Amount is the rent, fee or paid amount depending on Type.
	Amount      decimal.Decimal
	LateFee     decimal.Decimal
	DueDate     time.Time
	DaysOverdue int
	Reason      string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, events ...Event) error
}

// Publish hands events to d once their transaction has committed. Delivery
// failures are logged only: the state change already happened.
func Publish(ctx context.Context, d Dispatcher, events []Event) {
	if d == nil || len(events) == 0 {
		return
	}
	if err := d.Dispatch(ctx, events...); err != nil {
		log.Printf("event: dispatch %d event(s) failed: %v", len(events), err)
	}
}
