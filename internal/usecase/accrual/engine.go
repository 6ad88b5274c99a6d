// Package accrual runs the daily late-fee pass and the due-date reminders.
package accrual

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/event"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/uow"
	bookinguc "rentflow/internal/usecase/booking"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
)

// ReminderWindowDays is how far ahead of the due date tenants are reminded.
const ReminderWindowDays = 3

type Report struct {
	AsOf       string `json:"as_of"`
	Scanned    int    `json:"scanned"`
	Skipped    int    `json:"skipped"`
	Applied    int    `json:"applied"`
	Escalated  int    `json:"escalated"`
	Terminated int    `json:"terminated"`
	Failed     int    `json:"failed"`
}

// Locker keeps two processes from running the same batch at once.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), err error)
}

type Engine struct {
	payments   payment.Repository
	bookings   booking.Repository
	uow        uow.UnitOfWork
	dispatcher event.Dispatcher

	lease    Locker
	leaseTTL time.Duration
}

func NewEngine(payments payment.Repository, bookings booking.Repository, tx uow.UnitOfWork, d event.Dispatcher) *Engine {
	return &Engine{payments: payments, bookings: bookings, uow: tx, dispatcher: d}
}

// WithLease makes every batch hold a lease named after the batch and day.
func (e *Engine) WithLease(l Locker, ttl time.Duration) *Engine {
	e.lease, e.leaseTTL = l, ttl
	return e
}

func (e *Engine) acquire(ctx context.Context, name string) (func(), error) {
	if e.lease == nil {
		return func() {}, nil
	}
	release, err := e.lease.Acquire(ctx, name, e.leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("lease %s: %w", name, err)
	}
	return release, nil
}

type outcome struct {
	skipped    bool
	applied    bool
	escalated  bool
	terminated bool
}

// RunDailyAccrual assesses every open payment due before asOf. Each payment
// is handled in its own transaction so one failure does not hold back the
// rest. Running it twice for the same day changes nothing the second time.
func (e *Engine) RunDailyAccrual(ctx context.Context, asOf time.Time) (Report, error) {
	asOf = datex.Day(asOf)
	rep := Report{AsOf: datex.Format(asOf)}
	release, err := e.acquire(ctx, "accrual:"+rep.AsOf)
	if err != nil {
		return rep, err
	}
	defer release()

	candidates, err := e.payments.ListAccrualCandidates(ctx, asOf)
	if err != nil {
		return rep, err
	}
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Scanned++
		out, err := e.accrue(ctx, candidates[i].PaymentID, asOf)
		if err != nil {
			rep.Failed++
			log.Printf("accrual: payment %s: %v", candidates[i].PaymentID, err)
			continue
		}
		if out.skipped {
			rep.Skipped++
		}
		if out.applied {
			rep.Applied++
		}
		if out.escalated {
			rep.Escalated++
		}
		if out.terminated {
			rep.Terminated++
		}
	}
	log.Printf("accrual %s: scanned=%d applied=%d escalated=%d terminated=%d skipped=%d failed=%d",
		rep.AsOf, rep.Scanned, rep.Applied, rep.Escalated, rep.Terminated, rep.Skipped, rep.Failed)
	return rep, nil
}

func (e *Engine) accrue(ctx context.Context, paymentID string, asOf time.Time) (outcome, error) {
	var (
		out    outcome
		events []event.Event
	)
	err := e.uow.WithinPaymentTx(ctx, paymentID, func(r uow.Repos, b *booking.Booking, p *payment.MonthlyPayment) error {
		out, events = outcome{}, events[:0]
		// Settled or cancelled since the scan.
		if !p.IsOpen() {
			return nil
		}
		policy, err := b.Policy()
		if err != nil {
			return err
		}
		a := payment.Assess(p, policy, asOf)
		if a.InGrace {
			return nil
		}

		// A payment only turns OVERDUE together with a fee it is charged.
		dirty := false
		if a.Raises(p) {
			p.Status = payment.StatusOverdue
			p.LateFee = decimal.NewNullDecimal(a.Fee)
			dirty = true
			out.applied = true
			events = append(events, paymentEvent(event.PaymentOverdue, b, p, a, asOf))
		}
		if a.Escalates() && p.EscalatedAt == nil {
			at := asOf
			p.EscalatedAt = &at
			dirty = true
			out.escalated = true
			events = append(events, paymentEvent(event.PaymentSeverelyOverdue, b, p, a, asOf))
		}
		if dirty {
			if err := r.Payments.Save(ctx, p); err != nil {
				return err
			}
		}
		if a.Terminates() {
			ev, err := bookinguc.TerminateInTx(ctx, r, b, payment.TerminationReason, asOf)
			if err != nil {
				return err
			}
			if ev != nil {
				out.terminated = true
				events = append(events, *ev)
			}
		}
		return nil
	})
	if errors.Is(err, payment.ErrNotFound) || errors.Is(err, booking.ErrNotFound) {
		return outcome{skipped: true}, nil
	}
	if err != nil {
		return outcome{}, err
	}
	event.Publish(ctx, e.dispatcher, events)
	out.skipped = !out.applied && !out.escalated && !out.terminated
	return out, nil
}

func paymentEvent(t event.Type, b *booking.Booking, p *payment.MonthlyPayment, a payment.Assessment, asOf time.Time) event.Event {
	return event.Event{
		Type:        t,
		OccurredAt:  asOf,
		BookingID:   b.BookingID,
		PaymentID:   p.PaymentID,
		TenantID:    b.TenantID,
		OwnerID:     b.OwnerID,
		AssetTitle:  b.AssetTitle,
		ActorID:     actor.System().UserID,
		Amount:      p.Amount,
		LateFee:     p.Fee(),
		DueDate:     p.DueDate,
		DaysOverdue: a.DaysOverdue,
	}
}

// SendReminders notifies tenants of PENDING payments due within
// ReminderWindowDays of asOf. It returns how many reminders went out.
func (e *Engine) SendReminders(ctx context.Context, asOf time.Time) (int, error) {
	asOf = datex.Day(asOf)
	release, err := e.acquire(ctx, "reminders:"+datex.Format(asOf))
	if err != nil {
		return 0, err
	}
	defer release()

	due, err := e.payments.ListDueBetween(ctx, payment.StatusPending, asOf, asOf.AddDate(0, 0, ReminderWindowDays))
	if err != nil {
		return 0, err
	}
	bookings := make(map[uint64]*booking.Booking)
	var events []event.Event
	for i := range due {
		p := &due[i]
		b, ok := bookings[p.Ref.ID]
		if !ok {
			b, err = e.bookings.GetByID(ctx, p.Ref.ID)
			if err != nil {
				log.Printf("reminders: booking of payment %s: %v", p.PaymentID, err)
				continue
			}
			bookings[p.Ref.ID] = b
		}
		if b.Status != booking.StatusActive {
			continue
		}
		events = append(events, event.Event{
			Type:       event.PaymentDueReminder,
			OccurredAt: asOf,
			BookingID:  b.BookingID,
			PaymentID:  p.PaymentID,
			TenantID:   b.TenantID,
			OwnerID:    b.OwnerID,
			AssetTitle: b.AssetTitle,
			ActorID:    actor.System().UserID,
			Amount:     p.TotalDue(),
			DueDate:    p.DueDate,
		})
	}
	event.Publish(ctx, e.dispatcher, events)
	log.Printf("reminders %s: sent=%d", datex.Format(asOf), len(events))
	return len(events), nil
}
