package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"rentflow/internal/domain/event"
	"rentflow/pkg/datex"

	"gorm.io/datatypes"
)

const (
	tenantLink = "/bookings"
	ownerLink  = "/bookings/owner"
)

// FromEvent turns a domain event into the notices it produces. Events of an
// unknown type produce none.
func FromEvent(e event.Event, now time.Time) []Notification {
	var out []Notification
	add := func(userID string, c Category, link, title, body string) {
		if userID == "" {
			return
		}
		n := New(userID, c, title, body, now)
		n.Link = link
		n.BookingID = e.BookingID
		n.Metadata = metadata(e)
		out = append(out, n)
	}

	title := e.AssetTitle
	switch e.Type {
	case event.BookingCreated:
		add(e.OwnerID, BookingCreated, ownerLink, "New Booking Request",
			fmt.Sprintf("You have a new booking request for '%s' at %s per month", title, e.Amount.StringFixed(2)))
	case event.BookingApproved:
		add(e.TenantID, BookingApproved, tenantLink, "Booking Approved!",
			fmt.Sprintf("Your booking for '%s' has been approved", title))
	case event.BookingRejected:
		body := fmt.Sprintf("Your booking request for '%s' was rejected", title)
		if e.Reason != "" {
			body += ". Reason: " + e.Reason
		}
		add(e.TenantID, BookingRejected, tenantLink, "Booking Request Rejected", body)
	case event.BookingCancelled:
		body := fmt.Sprintf("The booking for '%s' has been cancelled", title)
		if e.Reason != "" {
			body += ". Reason: " + e.Reason
		}
		// Whoever cancelled already knows; tell the other side. An admin
		// cancellation tells both.
		if e.ActorID != e.TenantID {
			add(e.TenantID, BookingCancelled, tenantLink, "Booking Cancelled", body)
		}
		if e.ActorID != e.OwnerID {
			add(e.OwnerID, BookingCancelled, ownerLink, "Booking Cancelled", body)
		}
	case event.BookingTerminated:
		body := fmt.Sprintf("The booking for '%s' has been terminated. Reason: %s", title, e.Reason)
		add(e.TenantID, BookingTerminated, tenantLink, "Booking Terminated", body)
		add(e.OwnerID, BookingTerminated, ownerLink, "Booking Terminated", body)
	case event.BookingCompleted:
		body := fmt.Sprintf("The booking for '%s' has been completed", title)
		add(e.TenantID, BookingCompleted, tenantLink, "Booking Completed", body)
		add(e.OwnerID, BookingCompleted, ownerLink, "Booking Completed", body)
	case event.PaymentDueReminder:
		add(e.TenantID, PaymentDue, tenantLink, "Rent Payment Reminder",
			fmt.Sprintf("Your rent payment of %s for '%s' is due on %s",
				e.Amount.StringFixed(2), title, datex.Format(e.DueDate)))
	case event.PaymentOverdue:
		add(e.TenantID, PaymentOverdue, tenantLink, "Payment Overdue - Late Fee Applied",
			fmt.Sprintf("Your rent payment for '%s' is %d days overdue. A late fee of %s has been applied",
				title, e.DaysOverdue, e.LateFee.StringFixed(2)))
	case event.PaymentSeverelyOverdue:
		add(e.OwnerID, PaymentOverdue, ownerLink, "Tenant Payment Severely Overdue",
			fmt.Sprintf("Rent for '%s' is %d days overdue (late fee %s). Consider taking action",
				title, e.DaysOverdue, e.LateFee.StringFixed(2)))
	case event.PaymentReceived:
		add(e.OwnerID, PaymentReceived, ownerLink, "Payment Received",
			fmt.Sprintf("Rent payment of %s received for '%s'", e.Amount.StringFixed(2), title))
	}
	return out
}

func metadata(e event.Event) datatypes.JSON {
	m := map[string]any{"event": e.Type}
	if e.PaymentID != "" {
		m["payment_id"] = e.PaymentID
	}
	if !e.DueDate.IsZero() {
		m["due_date"] = datex.Format(e.DueDate)
	}
	if e.DaysOverdue > 0 {
		m["days_overdue"] = e.DaysOverdue
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
