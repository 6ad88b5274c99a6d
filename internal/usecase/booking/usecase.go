package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"rentflow/internal/domain/actor"
	"rentflow/internal/domain/asset"
	domain "rentflow/internal/domain/booking"
	"rentflow/internal/domain/errs"
	"rentflow/internal/domain/event"
	"rentflow/internal/domain/payment"
	"rentflow/internal/domain/uow"
	paymentuc "rentflow/internal/usecase/payment"
	"rentflow/pkg/datex"
	"rentflow/pkg/id"

	"github.com/shopspring/decimal"
)

// OpenEndedHorizon stands in for a missing end date in overlap checks.
const OpenEndedHorizon = 10 // years

type Usecase struct {
	bookings   domain.Repository
	payments   payment.Repository
	uow        uow.UnitOfWork
	dispatcher event.Dispatcher
	now        func() time.Time
}

func NewUsecase(bookings domain.Repository, payments payment.Repository, tx uow.UnitOfWork, d event.Dispatcher) *Usecase {
	return &Usecase{bookings: bookings, payments: payments, uow: tx, dispatcher: d, now: time.Now}
}

// WithClock replaces the wall clock; tests pin "today" with it.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (u *Usecase) today() time.Time { return datex.Day(u.now()) }

func (u *Usecase) Create(ctx context.Context, tenant actor.Actor, in CreateInput) (*BookingDTO, error) {
	if tenant.UserID == "" {
		return nil, errs.Forbidden("tenant identity required")
	}
	ref, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	start := datex.Day(in.StartDate)
	var end *time.Time
	if in.EndDate != nil {
		e := datex.Day(*in.EndDate)
		end = &e
	}

	var (
		dto    BookingDTO
		events []event.Event
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		events = events[:0]
		info, err := r.Assets.Get(ctx, ref)
		if errors.Is(err, asset.ErrNotFound) {
			return errs.NotFound("asset %s not found", ref)
		}
		if err != nil {
			return err
		}
		if info.OwnerID == tenant.UserID {
			return errs.Validation("cannot book your own listing")
		}
		if !info.Available {
			return errs.Conflict("asset %s is not available for rent", ref)
		}
		if err := u.checkOverlap(ctx, r, ref, start, end); err != nil {
			return err
		}

		b := &domain.Booking{
			BookingID:   id.NewID32(),
			TenantID:    tenant.UserID,
			OwnerID:     info.OwnerID,
			AssetKind:   ref.Kind,
			AssetID:     ref.ID,
			AssetTitle:  info.Title,
			StartDate:   start,
			EndDate:     end,
			MonthlyRent: in.MonthlyRent,
			AutoRenewal: in.AutoRenewal,
			Status:      domain.StatusPendingApproval,
		}
		if in.SecurityDeposit != nil {
			b.SecurityDeposit = decimal.NewNullDecimal(*in.SecurityDeposit)
		}
		if in.LateFeeRatePercent != nil {
			b.LateFeeRatePercent = decimal.NewNullDecimal(*in.LateFeeRatePercent)
		}
		b.GracePeriodDays = in.GracePeriodDays
		if err := r.Bookings.Create(ctx, b); err != nil {
			return err
		}
		events = append(events, u.event(event.BookingCreated, b, tenant, b.MonthlyRent, ""))
		dto = toDTO(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.Publish(ctx, u.dispatcher, events)
	return &dto, nil
}

func validateCreate(in CreateInput) (asset.Ref, error) {
	ref, err := asset.NewRef(in.AssetKind, in.AssetID)
	if err != nil {
		return ref, errs.Validation("%v", err)
	}
	if in.StartDate.IsZero() {
		return ref, errs.Validation("start date is required")
	}
	if !in.MonthlyRent.IsPositive() {
		return ref, errs.Validation("monthly rent must be positive")
	}
	if in.SecurityDeposit != nil && in.SecurityDeposit.IsNegative() {
		return ref, errs.Validation("security deposit must not be negative")
	}
	if in.EndDate != nil && datex.Day(*in.EndDate).Before(datex.Day(in.StartDate)) {
		return ref, errs.Validation("end date must not be before start date")
	}
	if in.LateFeeRatePercent != nil && in.LateFeeRatePercent.IsNegative() {
		return ref, errs.Validation("late fee rate must not be negative")
	}
	if in.GracePeriodDays != nil && *in.GracePeriodDays < 0 {
		return ref, errs.Validation("grace period must not be negative")
	}
	return ref, nil
}

// checkOverlap rejects a range that intersects an ACTIVE booking of the same
// asset. A missing end date counts as OpenEndedHorizon years from today.
func (u *Usecase) checkOverlap(ctx context.Context, r uow.Repos, ref asset.Ref, start time.Time, end *time.Time) error {
	to := u.today().AddDate(OpenEndedHorizon, 0, 0)
	if end != nil {
		to = *end
	}
	clash, err := r.Bookings.FindActiveOverlapping(ctx, ref, start, to)
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return errs.Conflict("asset %s already has an active booking for these dates", ref)
	}
	return nil
}

func (u *Usecase) Approve(ctx context.Context, approver actor.Actor, bookingID string, in ApproveInput) (*BookingDTO, error) {
	var (
		dto    BookingDTO
		events []event.Event
	)
	err := u.uow.WithinBookingTx(ctx, bookingID, func(r uow.Repos, b *domain.Booking) error {
		events = events[:0]
		if !b.CanManage(approver) {
			return errs.Forbidden("only the owner can approve booking %s", b.BookingID)
		}
		if b.Status != domain.StatusPendingApproval {
			return errs.InvalidState(string(b.Status), "booking %s is not pending approval", b.BookingID)
		}
		// Re-check under the asset lock: another booking of the same asset
		// may have been approved since this one was created.
		if _, err := r.Assets.GetForUpdate(ctx, b.Asset()); err != nil {
			return assetErr(err, b.Asset())
		}
		if err := u.checkOverlap(ctx, r, b.Asset(), b.StartDate, b.EndDate); err != nil {
			return err
		}
		if err := b.Approve(u.now(), in.FinalRent, in.FinalDeposit); err != nil {
			return err
		}
		if err := r.Bookings.Save(ctx, b); err != nil {
			return err
		}
		if err := r.Assets.MarkOccupied(ctx, b.Asset()); err != nil {
			return assetErr(err, b.Asset())
		}
		first, err := paymentuc.GenerateNextPayment(ctx, r.Payments, b, u.today())
		if err != nil {
			return err
		}
		events = append(events, u.event(event.BookingApproved, b, approver, b.MonthlyRent, ""))
		dto = toDTO(b)
		dto.Payments = []paymentuc.PaymentDTO{paymentuc.ToDTO(first)}
		return nil
	})
	return u.finish(ctx, &dto, events, err)
}

func (u *Usecase) Reject(ctx context.Context, approver actor.Actor, bookingID, reason string) (*BookingDTO, error) {
	var (
		dto    BookingDTO
		events []event.Event
	)
	err := u.uow.WithinBookingTx(ctx, bookingID, func(r uow.Repos, b *domain.Booking) error {
		events = events[:0]
		if !b.CanManage(approver) {
			return errs.Forbidden("only the owner can reject booking %s", b.BookingID)
		}
		if err := b.Reject(reason); err != nil {
			return err
		}
		if err := r.Bookings.Save(ctx, b); err != nil {
			return err
		}
		events = append(events, u.event(event.BookingRejected, b, approver, decimal.Zero, reason))
		dto = toDTO(b)
		return nil
	})
	return u.finish(ctx, &dto, events, err)
}

// Cancel ends a booking at the request of either party. The asset is only
// released if the booking had occupied it.
func (u *Usecase) Cancel(ctx context.Context, by actor.Actor, bookingID, reason string) (*BookingDTO, error) {
	var (
		dto    BookingDTO
		events []event.Event
	)
	err := u.uow.WithinBookingTx(ctx, bookingID, func(r uow.Repos, b *domain.Booking) error {
		events = events[:0]
		if !b.CanCancel(by) {
			return errs.Forbidden("not a party to booking %s", b.BookingID)
		}
		wasActive := b.Status == domain.StatusActive
		if err := b.Cancel(reason); err != nil {
			return err
		}
		if err := r.Bookings.Save(ctx, b); err != nil {
			return err
		}
		if wasActive {
			if err := release(ctx, r, b, u.today()); err != nil {
				return err
			}
		}
		events = append(events, u.event(event.BookingCancelled, b, by, decimal.Zero, reason))
		dto = toDTO(b)
		return nil
	})
	return u.finish(ctx, &dto, events, err)
}

// TerminateForNonPayment is the system's exit for a defaulted booking.
// Calling it on a booking that is already closed changes nothing.
func (u *Usecase) TerminateForNonPayment(ctx context.Context, bookingID, reason string, today time.Time) (*BookingDTO, error) {
	var (
		dto    BookingDTO
		events []event.Event
	)
	err := u.uow.WithinBookingTx(ctx, bookingID, func(r uow.Repos, b *domain.Booking) error {
		events = events[:0]
		e, err := TerminateInTx(ctx, r, b, reason, today)
		if err != nil {
			return err
		}
		if e != nil {
			events = append(events, *e)
		}
		dto = toDTO(b)
		return nil
	})
	return u.finish(ctx, &dto, events, err)
}

// TerminateInTx terminates b inside the caller's transaction, which must
// already hold b's row lock. It returns a nil event for closed bookings.
func TerminateInTx(ctx context.Context, r uow.Repos, b *domain.Booking, reason string, today time.Time) (*event.Event, error) {
	if b.IsTerminal() {
		return nil, nil
	}
	if err := b.Terminate(reason, today); err != nil {
		return nil, err
	}
	if err := r.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	if err := release(ctx, r, b, today); err != nil {
		return nil, err
	}
	log.Printf("booking %s terminated: %s", b.BookingID, reason)
	e := newEvent(event.BookingTerminated, b, actor.System(), decimal.Zero, reason, today)
	return &e, nil
}

// Complete closes an ACTIVE booking whose term is over.
func (u *Usecase) Complete(ctx context.Context, by actor.Actor, bookingID string) (*BookingDTO, error) {
	var (
		dto    BookingDTO
		events []event.Event
	)
	err := u.uow.WithinBookingTx(ctx, bookingID, func(r uow.Repos, b *domain.Booking) error {
		events = events[:0]
		if by.Role != actor.RoleSystem && !b.CanManage(by) {
			return errs.Forbidden("only the owner can complete booking %s", b.BookingID)
		}
		today := u.today()
		if err := b.Complete(today); err != nil {
			return err
		}
		if err := r.Bookings.Save(ctx, b); err != nil {
			return err
		}
		if err := release(ctx, r, b, today); err != nil {
			return err
		}
		events = append(events, u.event(event.BookingCompleted, b, by, decimal.Zero, ""))
		dto = toDTO(b)
		return nil
	})
	return u.finish(ctx, &dto, events, err)
}

// release frees the asset and cancels PENDING payments that are not due yet.
// Payments already due stay collectable.
func release(ctx context.Context, r uow.Repos, b *domain.Booking, today time.Time) error {
	if err := r.Assets.MarkAvailable(ctx, b.Asset()); err != nil {
		return assetErr(err, b.Asset())
	}
	ref, err := payment.RefOf(b)
	if err != nil {
		return err
	}
	open, err := r.Payments.ListOpenByBookingForUpdate(ctx, ref)
	if err != nil {
		return err
	}
	for i := range open {
		p := &open[i]
		if p.Status != payment.StatusPending || !p.DueDate.After(today) {
			continue
		}
		p.Status = payment.StatusCancelled
		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, by actor.Actor, bookingID string) (*BookingDTO, error) {
	b, err := u.bookings.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, bookingErr(err)
	}
	if !b.CanCancel(by) {
		return nil, errs.Forbidden("not a party to booking %s", b.BookingID)
	}
	ref, err := payment.RefOf(b)
	if err != nil {
		return nil, err
	}
	ps, err := u.payments.ListByBooking(ctx, ref)
	if err != nil {
		return nil, err
	}
	dto := toDTO(b)
	dto.Payments = paymentuc.ToDTOs(ps)
	return &dto, nil
}

func (u *Usecase) ListForTenant(ctx context.Context, by actor.Actor, tenantID string) ([]BookingDTO, error) {
	if !by.IsAdmin() && !by.Is(tenantID) {
		return nil, errs.Forbidden("not allowed to list bookings of %s", tenantID)
	}
	bs, err := u.bookings.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toDTOs(bs), nil
}

func (u *Usecase) ListForOwner(ctx context.Context, by actor.Actor, ownerID string, statuses ...domain.Status) ([]BookingDTO, error) {
	if !by.IsAdmin() && !by.Is(ownerID) {
		return nil, errs.Forbidden("not allowed to list bookings of %s", ownerID)
	}
	bs, err := u.bookings.ListByOwner(ctx, ownerID, statuses...)
	if err != nil {
		return nil, err
	}
	return toDTOs(bs), nil
}

func (u *Usecase) ListPendingForOwner(ctx context.Context, by actor.Actor, ownerID string) ([]BookingDTO, error) {
	return u.ListForOwner(ctx, by, ownerID, domain.StatusPendingApproval)
}

func (u *Usecase) finish(ctx context.Context, dto *BookingDTO, events []event.Event, err error) (*BookingDTO, error) {
	if err != nil {
		return nil, bookingErr(err)
	}
	event.Publish(ctx, u.dispatcher, events)
	return dto, nil
}

func (u *Usecase) event(t event.Type, b *domain.Booking, by actor.Actor, amount decimal.Decimal, reason string) event.Event {
	return newEvent(t, b, by, amount, reason, u.now())
}

func newEvent(t event.Type, b *domain.Booking, by actor.Actor, amount decimal.Decimal, reason string, at time.Time) event.Event {
	return event.Event{
		Type:       t,
		OccurredAt: at.UTC(),
		BookingID:  b.BookingID,
		TenantID:   b.TenantID,
		OwnerID:    b.OwnerID,
		AssetTitle: b.AssetTitle,
		ActorID:    by.UserID,
		Amount:     amount,
		Reason:     reason,
	}
}

func bookingErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return errs.NotFound("booking not found")
	}
	return err
}

func assetErr(err error, ref asset.Ref) error {
	if errors.Is(err, asset.ErrNotFound) {
		return errs.NotFound("asset %s not found", ref)
	}
	return err
}
