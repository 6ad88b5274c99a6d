package uowmock

import (
	"context"
	"errors"
	"testing"

	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/uow"
	"rentflow/internal/testutil/bookingmock"
	"rentflow/internal/testutil/paymentmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	bookings := &bookingmock.Repo{}
	payments := &paymentmock.Repo{}
	repos := uow.Repos{Bookings: bookings, Payments: payments}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Bookings != bookings || r.Payments != payments {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{} // no funcs set
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinBookingTx(ctx, "B", func(uow.Repos, *booking.Booking) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinBookingTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinPaymentTx(ctx, "P", func(uow.Repos, *booking.Booking, *payment.MonthlyPayment) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinPaymentTx default: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_LocksBookingThenPayment(t *testing.T) {
	ctx := context.Background()
	var order []string

	b := &booking.Booking{ID: 7, BookingID: "B7"}
	p := &payment.MonthlyPayment{PaymentID: "P1", Ref: payment.BookingRef{Kind: booking.KindRent, ID: 7}}
	repos := uow.Repos{
		Bookings: &bookingmock.Repo{
			GetByIDForUpdateFn: func(_ context.Context, id uint64) (*booking.Booking, error) {
				order = append(order, "booking")
				if id != 7 {
					t.Fatalf("locked booking %d", id)
				}
				return b, nil
			},
		},
		Payments: &paymentmock.Repo{
			GetByPaymentIDFn: func(context.Context, string) (*payment.MonthlyPayment, error) {
				order = append(order, "peek")
				return p, nil
			},
			GetByPaymentIDForUpdateFn: func(context.Context, string) (*payment.MonthlyPayment, error) {
				order = append(order, "payment")
				return p, nil
			},
		},
	}

	err := Passthrough(repos).WithinPaymentTx(ctx, "P1", func(_ uow.Repos, gotB *booking.Booking, gotP *payment.MonthlyPayment) error {
		if gotB != b || gotP != p {
			t.Fatalf("rows not forwarded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinPaymentTx: %v", err)
	}
	want := []string{"peek", "booking", "payment"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("lock order = %v, want %v", order, want)
		}
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinBookingTx(func(context.Context, string, func(uow.Repos, *booking.Booking) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinBookingTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}
	m.Reset()
	if m.WithinTxFn != nil || m.WithinBookingTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
