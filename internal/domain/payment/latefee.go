package payment

import (
	"time"

	"rentflow/internal/domain/booking"
	"rentflow/pkg/datex"

	"github.com/shopspring/decimal"
)

const (
	// EscalationDays of chargeable lateness trigger a notice to the owner.
	EscalationDays = 30
	// TerminationDays of chargeable lateness end the booking.
	TerminationDays = 60

	TerminationReason = "Non-payment of rent for 60+ days"
)

var (
	// MaxLateFeeRatio caps the fee at a quarter of the principal.
	MaxLateFeeRatio = decimal.RequireFromString("0.25")

	hundred   = decimal.NewFromInt(100)
	monthDays = decimal.NewFromInt(30)
)

// CalculateLateFee returns round(amount * rate/100/30 * days, 2) capped at
// MaxLateFeeRatio of amount. The division happens last so no precision is
// lost before rounding.
func CalculateLateFee(amount, ratePercent decimal.Decimal, chargeableDays int) decimal.Decimal {
	if chargeableDays <= 0 || !amount.IsPositive() || !ratePercent.IsPositive() {
		return decimal.Zero
	}
	fee := amount.Mul(ratePercent).
		Mul(decimal.NewFromInt(int64(chargeableDays))).
		Div(hundred.Mul(monthDays)).
		Round(2)
	limit := amount.Mul(MaxLateFeeRatio).Truncate(2)
	return decimal.Min(fee, limit)
}

type Assessment struct {
	DaysOverdue    int
	ChargeableDays int
	Fee            decimal.Decimal
	InGrace        bool
}

// Assess evaluates p against policy on asOf. It is pure: the same inputs
// always give the same fee, which is what makes re-running a day harmless.
func Assess(p *MonthlyPayment, policy booking.Policy, asOf time.Time) Assessment {
	a := Assessment{DaysOverdue: datex.DaysBetween(p.DueDate, asOf), Fee: decimal.Zero}
	if a.DaysOverdue <= policy.GraceDays {
		a.InGrace = true
		return a
	}
	a.ChargeableDays = a.DaysOverdue - policy.GraceDays
	a.Fee = CalculateLateFee(p.Amount, policy.RatePercent, a.ChargeableDays)
	return a
}

// Raises reports whether applying a would increase the stored fee.
func (a Assessment) Raises(p *MonthlyPayment) bool {
	return !a.InGrace && a.Fee.GreaterThan(p.Fee())
}

func (a Assessment) Escalates() bool { return a.ChargeableDays >= EscalationDays }
func (a Assessment) Terminates() bool { return a.ChargeableDays >= TerminationDays }
