package accrual

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/event"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/uow"
	"rentflow/internal/testutil/eventmock"
	"rentflow/internal/testutil/paymentmock"
	"rentflow/internal/testutil/testenv"
	"rentflow/internal/testutil/uowmock"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEngine(env *testenv.Env) *Engine {
	return NewEngine(env.Repos.Payments, env.Repos.Bookings, env.UoW, env.Events)
}

func reload(t *testing.T, env *testenv.Env, p *payment.MonthlyPayment) *payment.MonthlyPayment {
	t.Helper()
	got, err := env.Repos.Payments.GetByPaymentID(context.Background(), p.PaymentID)
	require.NoError(t, err)
	return got
}

func TestRunDailyAccrual_AppliesFeeOnce(t *testing.T) {
	env := testenv.New(t)
	eng := newEngine(env)
	ctx := context.Background()
	b := env.ActiveBooking(t, "tenant-1", "owner-1", dec("10000"), datex.Date(2023, 12, 1))
	p := env.Payment(t, b, datex.Date(2024, 1, 1), dec("10000"), payment.StatusPending)

	// 17 days late, 3 of them grace.
	rep, err := eng.RunDailyAccrual(ctx, datex.Date(2024, 1, 18))
	require.NoError(t, err)
	assert.Equal(t, Report{AsOf: "2024-01-18", Scanned: 1, Applied: 1}, rep)

	got := reload(t, env, p)
	assert.Equal(t, payment.StatusOverdue, got.Status)
	assert.True(t, got.Fee().Equal(dec("233.33")), "fee = %s", got.Fee())
	assert.True(t, got.TotalDue().Equal(dec("10233.33")))

	evs := env.Events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, event.PaymentOverdue, evs[0].Type)
	assert.Equal(t, 17, evs[0].DaysOverdue)
	assert.True(t, evs[0].LateFee.Equal(dec("233.33")))

	// Same day again: nothing moves.
	env.Events.Reset()
	rep, err = eng.RunDailyAccrual(ctx, datex.Date(2024, 1, 18))
	require.NoError(t, err)
	assert.Equal(t, Report{AsOf: "2024-01-18", Scanned: 1, Skipped: 1}, rep)
	assert.True(t, reload(t, env, p).Fee().Equal(dec("233.33")))
	assert.Empty(t, env.Events.Events())
}

func TestRunDailyAccrual_NeverLowersFee(t *testing.T) {
	env := testenv.New(t)
	eng := newEngine(env)
	ctx := context.Background()
	b := env.ActiveBooking(t, "tenant-1", "owner-1", dec("10000"), datex.Date(2023, 12, 1))
	p := env.Payment(t, b, datex.Date(2024, 1, 1), dec("10000"), payment.StatusPending)

	_, err := eng.RunDailyAccrual(ctx, datex.Date(2024, 1, 18))
	require.NoError(t, err)
	_, err = eng.RunDailyAccrual(ctx, datex.Date(2024, 1, 10))
	require.NoError(t, err)
	assert.True(t, reload(t, env, p).Fee().Equal(dec("233.33")))
}

func TestRunDailyAccrual_GracePeriod(t *testing.T) {
	env := testenv.New(t)
	eng := newEngine(env)
	b := env.ActiveBooking(t, "tenant-1", "owner-1", dec("10000"), datex.Date(2023, 12, 1))
	p := env.Payment(t, b, datex.Date(2024, 1, 1), dec("10000"), payment.StatusPending)

	rep, err := eng.RunDailyAccrual(context.Background(), datex.Date(2024, 1, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Skipped)

	got := reload(t, env, p)
	assert.Equal(t, payment.StatusPending, got.Status)
	assert.True(t, got.Fee().IsZero())
}

func TestRunDailyAccrual_ZeroFeeLeavesPaymentPending(t *testing.T) {
	env := testenv.New(t)
	eng := newEngine(env)
	b := env.ActiveBooking(t, "tenant-1", "owner-1", dec("0.50"), datex.Date(2023, 12, 1))
	p := env.Payment(t, b, datex.Date(2024, 1, 1), dec("0.50"), payment.StatusPending)

	// One chargeable day on 0.50 rounds to a zero fee.
	rep, err := eng.RunDailyAccrual(context.Background(), datex.Date(2024, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, Report{AsOf: "2024-01-05", Scanned: 1, Skipped: 1}, rep)

	got := reload(t, env, p)
	assert.Equal(t, payment.StatusPending, got.Status)
	assert.False(t, got.LateFee.Valid)
	assert.Empty(t, env.Events.Events())
}

func TestRunDailyAccrual_EscalatesOnce(t *testing.T) {
	env := testenv.New(t)
	eng := newEngine(env)
	ctx := context.Background()
	b := env.ActiveBooking(t, "tenant-1", "owner-1", dec("10000"), datex.Date(2023, 12, 1))
	p := env.Payment(t, b, datex.Date(2024, 1, 1), dec("10000"), payment.StatusPending)

	// 33 days late: 30 chargeable.
	rep, err := eng.RunDailyAccrual(ctx, datex.Date(2024, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Applied)
	assert.Equal(t, 1, rep.Escalated)
	assert.Equal(t, []event.Type{event.PaymentOverdue, event.PaymentSeverelyOverdue}, env.Events.Types())
	got := reload(t, env, p)
	assert.True(t, got.Fee().Equal(dec("500")))
	require.NotNil(t, got.EscalatedAt)

	env.Events.Reset()
	rep, err = eng.RunDailyAccrual(ctx, datex.Date(2024, 2, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Applied)
	assert.Zero(t, rep.Escalated)
	assert.Equal(t, []event.Type{event.PaymentOverdue}, env.Events.Types())
	assert.True(t, reload(t, env, p).Fee().Equal(dec("516.67")))
}

func TestRunDailyAccrual_TerminatesAfterSixtyDays(t *testing.T) {
	env := testenv.New(t)
	eng := newEngine(env)
	ctx := context.Background()
	b := env.ActiveBooking(t, "tenant-1", "owner-1", dec("10000"), datex.Date(2023, 12, 1))
	late := env.Payment(t, b, datex.Date(2024, 1, 1), dec("10000"), payment.StatusPending)
	future := env.Payment(t, b, datex.Date(2024, 4, 1), dec("10000"), payment.StatusPending)

	// 2024-01-01 + 63 days, 60 of them chargeable.
	rep, err := eng.RunDailyAccrual(ctx, datex.Date(2024, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, Report{AsOf: "2024-03-04", Scanned: 1, Applied: 1, Escalated: 1, Terminated: 1}, rep)

	got, err := env.Repos.Bookings.GetByBookingID(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusTerminated, got.Status)
	assert.Equal(t, payment.TerminationReason, got.TerminationReason)

	info, err := env.Repos.Assets.Get(ctx, b.Asset())
	require.NoError(t, err)
	assert.True(t, info.Available)

	assert.True(t, reload(t, env, late).Fee().Equal(dec("1000")))
	assert.Equal(t, payment.StatusOverdue, reload(t, env, late).Status)
	assert.Equal(t, payment.StatusCancelled, reload(t, env, future).Status)
	assert.Equal(t, []event.Type{
		event.PaymentOverdue, event.PaymentSeverelyOverdue, event.BookingTerminated,
	}, env.Events.Types())

	// The debt keeps accruing after termination; the booking is left alone.
	env.Events.Reset()
	rep, err = eng.RunDailyAccrual(ctx, datex.Date(2024, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Applied)
	assert.Zero(t, rep.Terminated)
	assert.Equal(t, []event.Type{event.PaymentOverdue}, env.Events.Types())
}

func TestRunDailyAccrual_FailureIsIsolated(t *testing.T) {
	boom := errors.New("boom")
	payments := &paymentmock.Repo{
		ListAccrualCandidatesFn: func(context.Context, time.Time) ([]payment.MonthlyPayment, error) {
			return []payment.MonthlyPayment{{PaymentID: "bad"}, {PaymentID: "gone"}, {PaymentID: "ok"}}, nil
		},
	}
	var seen []string
	tx := &uowmock.UoW{
		WithinPaymentTxFn: func(_ context.Context, id string, fn func(uow.Repos, *booking.Booking, *payment.MonthlyPayment) error) error {
			seen = append(seen, id)
			switch id {
			case "bad":
				return boom
			case "gone":
				return payment.ErrNotFound
			}
			b := &booking.Booking{Status: booking.StatusActive}
			p := &payment.MonthlyPayment{PaymentID: id, Status: payment.StatusPaid}
			return fn(uow.Repos{Payments: payments}, b, p)
		},
	}
	eng := NewEngine(payments, nil, tx, &eventmock.Dispatcher{})

	rep, err := eng.RunDailyAccrual(context.Background(), datex.Date(2024, 1, 18))
	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "gone", "ok"}, seen)
	assert.Equal(t, Report{AsOf: "2024-01-18", Scanned: 3, Skipped: 2, Failed: 1}, rep)
}

func TestRunDailyAccrual_ListError(t *testing.T) {
	boom := errors.New("boom")
	payments := &paymentmock.Repo{
		ListAccrualCandidatesFn: func(context.Context, time.Time) ([]payment.MonthlyPayment, error) { return nil, boom },
	}
	_, err := NewEngine(payments, nil, uowmock.New(), nil).RunDailyAccrual(context.Background(), time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestSendReminders(t *testing.T) {
	env := testenv.New(t)
	eng := newEngine(env)
	ctx := context.Background()
	b := env.ActiveBooking(t, "tenant-1", "owner-1", dec("10000"), datex.Date(2023, 12, 1))
	env.Payment(t, b, datex.Date(2024, 2, 1), dec("10000"), payment.StatusPending)
	env.Payment(t, b, datex.Date(2024, 1, 1), dec("10000"), payment.StatusPaid)

	n, err := eng.SendReminders(ctx, datex.Date(2024, 1, 25))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = eng.SendReminders(ctx, datex.Date(2024, 1, 29))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	evs := env.Events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, event.PaymentDueReminder, evs[0].Type)
	assert.Equal(t, "tenant-1", evs[0].TenantID)
	assert.Equal(t, "2024-02-01", datex.Format(evs[0].DueDate))
}

type fakeLocker struct {
	held     map[string]bool
	released []string
}

func (f *fakeLocker) Acquire(_ context.Context, name string, _ time.Duration) (func(), error) {
	if f.held[name] {
		return nil, errHeld
	}
	return func() { f.released = append(f.released, name) }, nil
}

var errHeld = errors.New("held")

func TestRunDailyAccrual_Lease(t *testing.T) {
	env := testenv.New(t)
	l := &fakeLocker{held: map[string]bool{"accrual:2024-01-19": true}}
	eng := newEngine(env).WithLease(l, time.Minute)
	ctx := context.Background()

	_, err := eng.RunDailyAccrual(ctx, datex.Date(2024, 1, 18))
	require.NoError(t, err)
	assert.Equal(t, []string{"accrual:2024-01-18"}, l.released)

	_, err = eng.RunDailyAccrual(ctx, datex.Date(2024, 1, 19))
	assert.ErrorIs(t, err, errHeld)

	_, err = eng.SendReminders(ctx, datex.Date(2024, 1, 19))
	require.NoError(t, err)
	assert.Contains(t, l.released, "reminders:2024-01-19")
}
