// Package app builds the object graph shared by the API server and the
// worker from one Config.
package app

import (
	"context"
	"errors"
	"log"
	"time"

	httpadp "rentflow/internal/adapter/http"
	"rentflow/internal/adapter/middleware"
	"rentflow/internal/adapter/notifier"
	"rentflow/internal/adapter/repository/gormstore"
	"rentflow/internal/config"
	"rentflow/internal/infrastructure/cache"
	"rentflow/internal/infrastructure/db"
	"rentflow/internal/scheduler"
	"rentflow/internal/usecase/accrual"
	ucBooking "rentflow/internal/usecase/booking"
	ucNotification "rentflow/internal/usecase/notification"
	ucPayment "rentflow/internal/usecase/payment"
	ucWallet "rentflow/internal/usecase/wallet"
	"rentflow/pkg/datex"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const leasePrefix = "rentflow:lease:"

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  redis.UniversalClient

	Bookings      *ucBooking.Usecase
	Payments      *ucPayment.Usecase
	Wallets       *ucWallet.Usecase
	Notifications *ucNotification.Usecase
	Accrual       *accrual.Engine
}

// New connects to the database and Redis and wires every usecase.
func New(cfg *config.Config) (*App, error) {
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.GormLogLevel())
	if err != nil {
		return nil, err
	}
	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	if err != nil {
		closeDB(gdb)
		return nil, err
	}
	return Wire(cfg, gdb, rdb), nil
}

// Wire builds the usecases over already open connections.
func Wire(cfg *config.Config, gdb *gorm.DB, rdb redis.UniversalClient) *App {
	bookings := gormstore.NewBookingRepository(gdb)
	payments := gormstore.NewPaymentRepository(gdb)
	wallets := gormstore.NewWalletRepository(gdb)
	notifications := gormstore.NewNotificationRepository(gdb)
	tx := gormstore.NewGormUoW(gdb)

	n := notifier.New(notifications, cache.NewPublisher(rdb))

	return &App{
		Config:        cfg,
		DB:            gdb,
		Redis:         rdb,
		Bookings:      ucBooking.NewUsecase(bookings, payments, tx, n),
		Payments:      ucPayment.NewUsecase(payments, bookings, tx, n),
		Wallets:       ucWallet.NewUsecase(wallets, tx),
		Notifications: ucNotification.NewUsecase(notifications),
		Accrual: accrual.NewEngine(payments, bookings, tx, n).
			WithLease(cache.NewLease(rdb, leasePrefix), cfg.LeaseTTL()),
	}
}

func (a *App) Migrate() error { return db.Migrate(a.DB) }

// Server returns the echo instance with every route mounted.
func (a *App) Server() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	httpadp.Register(e, httpadp.Handlers{
		Health:        httpadp.NewHealthHandler(a.healthChecks()),
		Bookings:      httpadp.NewBookingHandler(a.Bookings),
		Payments:      httpadp.NewPaymentHandler(a.Payments),
		Wallets:       httpadp.NewWalletHandler(a.Wallets),
		Notifications: httpadp.NewNotificationHandler(a.Notifications),
		Admin:         httpadp.NewAdminHandler(a.Accrual),
	}, middleware.Idempotency(a.Redis, a.Config.IdempotencyTTL()))
	return e
}

func (a *App) healthChecks() map[string]httpadp.Pinger {
	return map[string]httpadp.Pinger{
		"database": httpadp.PingFunc(func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": httpadp.PingFunc(func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}),
	}
}

// Jobs is the recurring work of the worker, counted from now.
func (a *App) Jobs(now time.Time) ([]scheduler.Job, error) {
	loc := a.Config.Location()
	defs := []struct {
		name string
		rule string
		run  scheduler.Func
	}{
		{"accrual", a.Config.AccrualRule, a.RunAccrual},
		{"reminders", a.Config.ReminderRule, a.RunReminders},
		{"cleanup", a.Config.CleanupRule, a.RunCleanup},
	}
	jobs := make([]scheduler.Job, 0, len(defs))
	for _, s := range defs {
		j, err := scheduler.NewJob(s.name, s.rule, loc, now, s.run)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// businessDay is the calendar date of at in the scheduler zone.
func businessDay(at time.Time) time.Time {
	return datex.Date(at.Year(), at.Month(), at.Day())
}

// RunAccrual runs the late-fee pass for at's day. A lease held by another
// worker is not an error.
func (a *App) RunAccrual(ctx context.Context, at time.Time) error {
	rep, err := a.Accrual.RunDailyAccrual(ctx, businessDay(at))
	if errors.Is(err, cache.ErrLeaseHeld) {
		log.Printf("accrual %s: %v", datex.Format(businessDay(at)), err)
		return nil
	}
	if err != nil {
		return err
	}
	if rep.Failed > 0 {
		log.Printf("accrual %s: %d payments failed, they are retried on the next run", rep.AsOf, rep.Failed)
	}
	return nil
}

func (a *App) RunReminders(ctx context.Context, at time.Time) error {
	_, err := a.Accrual.SendReminders(ctx, businessDay(at))
	if errors.Is(err, cache.ErrLeaseHeld) {
		log.Printf("reminders %s: %v", datex.Format(businessDay(at)), err)
		return nil
	}
	return err
}

func (a *App) RunCleanup(ctx context.Context, _ time.Time) error {
	n, err := a.Notifications.Cleanup(ctx)
	if err != nil {
		return err
	}
	log.Printf("cleanup: removed %d read notifications", n)
	return nil
}

func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		log.Printf("redis close: %v", err)
	}
	closeDB(a.DB)
}

func closeDB(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("db close: %v", err)
	}
}
