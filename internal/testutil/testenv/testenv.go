// Package testenv wires the gorm repositories over a private sqlite database
// so usecases can be exercised end to end.
package testenv

import (
	"context"
	"testing"
	"time"

	"rentflow/internal/adapter/repository/gormstore"
	"rentflow/internal/domain/asset"
	"rentflow/internal/domain/booking"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/uow"
	"rentflow/internal/domain/wallet"
	"rentflow/internal/testutil/eventmock"
	"rentflow/internal/testutil/sqlitedb"
	"rentflow/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Env struct {
	DB            *gorm.DB
	Repos         uow.Repos
	UoW           *gormstore.GormUoW
	Notifications *gormstore.NotificationRepository
	Events        *eventmock.Dispatcher
}

func New(t testing.TB) *Env {
	t.Helper()
	db := sqlitedb.Open(t)
	return &Env{
		DB: db,
		Repos: uow.Repos{
			Bookings: gormstore.NewBookingRepository(db),
			Payments: gormstore.NewPaymentRepository(db),
			Wallets:  gormstore.NewWalletRepository(db),
			Assets:   gormstore.NewAssetRepository(db),
		},
		UoW:           gormstore.NewGormUoW(db),
		Notifications: gormstore.NewNotificationRepository(db),
		Events:        &eventmock.Dispatcher{},
	}
}

// Clock returns a fixed wall clock at noon UTC of the given day.
func Clock(y int, m time.Month, d int) func() time.Time {
	at := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// ActiveBooking seeds a property and an ACTIVE booking of it.
func (e *Env) ActiveBooking(t testing.TB, tenantID, ownerID string, rent decimal.Decimal, start time.Time) *booking.Booking {
	t.Helper()
	p := sqlitedb.SeedProperty(t, e.DB, ownerID, "Sunny Flat")
	p.Status = asset.PropertyRented
	if err := e.DB.Save(p).Error; err != nil {
		t.Fatalf("rent property: %v", err)
	}
	approved := start
	b := &booking.Booking{
		BookingID:    id.NewID32(),
		TenantID:     tenantID,
		OwnerID:      ownerID,
		AssetKind:    asset.KindProperty,
		AssetID:      p.ID,
		AssetTitle:   p.Title,
		StartDate:    start,
		MonthlyRent:  rent,
		Status:       booking.StatusActive,
		ApprovalDate: &approved,
	}
	if err := e.Repos.Bookings.Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

// Payment seeds a payment of b in the given state.
func (e *Env) Payment(t testing.TB, b *booking.Booking, due time.Time, amount decimal.Decimal, status payment.Status) *payment.MonthlyPayment {
	t.Helper()
	ref, err := payment.RefOf(b)
	if err != nil {
		t.Fatalf("ref: %v", err)
	}
	p := &payment.MonthlyPayment{
		PaymentID: id.NewID32(),
		Ref:       ref,
		DueDate:   due,
		Amount:    amount,
		Status:    status,
	}
	if err := e.Repos.Payments.Create(context.Background(), p); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return p
}

// Fund credits userID's wallet, creating it when missing.
func (e *Env) Fund(t testing.TB, userID string, amount decimal.Decimal) *wallet.Wallet {
	t.Helper()
	ctx := context.Background()
	w, err := e.Repos.Wallets.GetByUserID(ctx, userID)
	if err != nil {
		w = &wallet.Wallet{UserID: userID, Balance: decimal.Zero}
		if err := e.Repos.Wallets.Create(ctx, w); err != nil {
			t.Fatalf("create wallet: %v", err)
		}
	}
	w.Balance = w.Balance.Add(amount)
	if err := e.Repos.Wallets.Save(ctx, w); err != nil {
		t.Fatalf("fund wallet: %v", err)
	}
	return w
}

// Balance reads userID's wallet balance, zero when there is no wallet.
func (e *Env) Balance(t testing.TB, userID string) decimal.Decimal {
	t.Helper()
	w, err := e.Repos.Wallets.GetByUserID(context.Background(), userID)
	if err != nil {
		return decimal.Zero
	}
	return w.Balance
}
