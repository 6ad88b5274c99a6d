package payment

import (
	"context"
	"testing"
	"time"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/errs"
	"rentflow/internal/domain/event"
	domain "rentflow/internal/domain/payment"
	"rentflow/internal/testutil/testenv"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tenant = actor.Actor{UserID: "tenant-1", Role: actor.RoleUser}
	owner  = actor.Actor{UserID: "owner-1", Role: actor.RoleUser}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	env *testenv.Env
	uc  *Usecase
	b   *booking.Booking
	p   *domain.MonthlyPayment
}

// newFixture seeds the overdue January payment with 233.33 of late fee.
func newFixture(t *testing.T, balance string) *fixture {
	t.Helper()
	env := testenv.New(t)
	b := env.ActiveBooking(t, tenant.UserID, owner.UserID, dec("10000"), datex.Date(2023, 12, 1))
	p := env.Payment(t, b, datex.Date(2024, 1, 1), dec("10000"), domain.StatusOverdue)
	p.LateFee = decimal.NewNullDecimal(dec("233.33"))
	require.NoError(t, env.Repos.Payments.Save(context.Background(), p))
	if balance != "" {
		env.Fund(t, tenant.UserID, dec(balance))
	}
	uc := NewUsecase(env.Repos.Payments, env.Repos.Bookings, env.UoW, env.Events).
		WithClock(testenv.Clock(2024, time.January, 18))
	return &fixture{env: env, uc: uc, b: b, p: p}
}

func (f *fixture) reload(t *testing.T) *domain.MonthlyPayment {
	t.Helper()
	got, err := f.env.Repos.Payments.GetByPaymentID(context.Background(), f.p.PaymentID)
	require.NoError(t, err)
	return got
}

func TestSettle_FullPaymentSchedulesNext(t *testing.T) {
	f := newFixture(t, "20000")
	ctx := context.Background()

	dto, err := f.uc.Settle(ctx, tenant, f.p.PaymentID, dec("10233.33"))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPaid), dto.Status)
	assert.Equal(t, "2024-01-18", dto.PaidDate)
	assert.NotEmpty(t, dto.PaymentReference)

	assert.True(t, f.env.Balance(t, tenant.UserID).Equal(dec("9766.67")))

	ref, err := domain.RefOf(f.b)
	require.NoError(t, err)
	next, err := f.env.Repos.Payments.LatestByBooking(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", datex.Format(next.DueDate))
	assert.Equal(t, domain.StatusPending, next.Status)
	assert.True(t, next.Amount.Equal(dec("10000")))

	evs := f.env.Events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, event.PaymentReceived, evs[0].Type)
	assert.True(t, evs[0].Amount.Equal(dec("10233.33")))
}

func TestSettle_TrailingZerosAreCents(t *testing.T) {
	f := newFixture(t, "20000")

	dto, err := f.uc.Settle(context.Background(), tenant, f.p.PaymentID, dec("10233.330"))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPaid), dto.Status)
	assert.True(t, f.env.Balance(t, tenant.UserID).Equal(dec("9766.67")))
}

func TestSettle_OverpaymentDebitsOnlyTotal(t *testing.T) {
	f := newFixture(t, "20000")

	_, err := f.uc.Settle(context.Background(), tenant, f.p.PaymentID, dec("12000"))
	require.NoError(t, err)
	assert.True(t, f.env.Balance(t, tenant.UserID).Equal(dec("9766.67")))
}

func TestSettle_PartialPaysPrincipalFirst(t *testing.T) {
	cases := []struct {
		name        string
		paid        string
		wantAmount  string
		wantLateFee string
	}{
		{"principal only", "5000", "5000", "233.33"},
		{"principal exactly", "10000", "0", "233.33"},
		{"into the fee", "10100", "0", "133.33"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "20000")

			dto, err := f.uc.Settle(context.Background(), tenant, f.p.PaymentID, dec(tc.paid))
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusOverdue), dto.Status)

			got := f.reload(t)
			assert.True(t, got.Amount.Equal(dec(tc.wantAmount)), "amount = %s", got.Amount)
			assert.True(t, got.Fee().Equal(dec(tc.wantLateFee)), "fee = %s", got.Fee())
			assert.True(t, f.env.Balance(t, tenant.UserID).Equal(dec("20000").Sub(dec(tc.paid))))

			ps, err := f.env.Repos.Payments.ListByBooking(context.Background(), got.Ref)
			require.NoError(t, err)
			assert.Len(t, ps, 1, "no next payment until this one is closed")
		})
	}
}

func TestSettle_InsufficientFundsChangesNothing(t *testing.T) {
	f := newFixture(t, "100")

	_, err := f.uc.Settle(context.Background(), tenant, f.p.PaymentID, dec("10233.33"))
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.NotNil(t, e.TotalDue)
	assert.True(t, e.TotalDue.Equal(dec("10233.33")))

	got := f.reload(t)
	assert.Equal(t, domain.StatusOverdue, got.Status)
	assert.True(t, got.TotalDue().Equal(dec("10233.33")))
	assert.True(t, f.env.Balance(t, tenant.UserID).Equal(dec("100")))
	assert.Empty(t, f.env.Events.Events())
}

func TestSettle_Rejections(t *testing.T) {
	f := newFixture(t, "50000")
	ctx := context.Background()

	_, err := f.uc.Settle(ctx, owner, f.p.PaymentID, dec("100"))
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.uc.Settle(ctx, tenant, f.p.PaymentID, decimal.Zero)
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.uc.Settle(ctx, tenant, f.p.PaymentID, dec("1.234"))
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.uc.Settle(ctx, tenant, "missing", dec("100"))
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.uc.Settle(ctx, tenant, f.p.PaymentID, dec("10233.33"))
	require.NoError(t, err)
	_, err = f.uc.Settle(ctx, tenant, f.p.PaymentID, dec("1"))
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindInvalidState, e.Kind)
	assert.Equal(t, string(domain.StatusPaid), e.CurrentStatus)
}

func TestSettle_ClosedBookingGetsNoNextPayment(t *testing.T) {
	f := newFixture(t, "20000")
	ctx := context.Background()
	f.b.Status = booking.StatusTerminated
	require.NoError(t, f.env.Repos.Bookings.Save(ctx, f.b))

	_, err := f.uc.Settle(ctx, tenant, f.p.PaymentID, dec("10233.33"))
	require.NoError(t, err)
	ps, err := f.env.Repos.Payments.ListByBooking(ctx, f.reload(t).Ref)
	require.NoError(t, err)
	assert.Len(t, ps, 1)
}

// The ledger always explains the balance.
func TestSettle_WalletLedgerBalances(t *testing.T) {
	f := newFixture(t, "11000")
	ctx := context.Background()
	w, err := f.env.Repos.Wallets.GetByUserID(ctx, tenant.UserID)
	require.NoError(t, err)

	for _, paid := range []string{"3000", "7000", "100", "133.33"} {
		_, err := f.uc.Settle(ctx, tenant, f.p.PaymentID, dec(paid))
		require.NoError(t, err)
	}
	assert.Equal(t, domain.StatusPaid, f.reload(t).Status)

	txns, err := f.env.Repos.Wallets.ListTransactions(ctx, w.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 4)
	spent := decimal.Zero
	for _, tx := range txns {
		spent = spent.Add(tx.Amount)
	}
	assert.True(t, spent.Equal(dec("10233.33")))
	assert.True(t, f.env.Balance(t, tenant.UserID).Equal(dec("11000").Sub(spent)))
	assert.True(t, txns[0].BalanceAfter.Equal(f.env.Balance(t, tenant.UserID)))
}

func TestGet(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	dto, err := f.uc.Get(ctx, owner, f.p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, f.p.PaymentID, dto.PaymentID)

	_, err = f.uc.Get(ctx, actor.Actor{UserID: "x"}, f.p.PaymentID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
}
