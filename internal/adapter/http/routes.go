package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health        *HealthHandler
	Bookings      *BookingHandler
	Payments      *PaymentHandler
	Wallets       *WalletHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
}

// Register mounts every route on e. Money-moving routes go through
// idempotent when it is set.
func Register(e *echo.Echo, h Handlers, idempotent echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	money := []echo.MiddlewareFunc{}
	if idempotent != nil {
		money = append(money, idempotent)
	}

	g := e.Group("", ActorMiddleware())

	g.POST("/bookings", h.Bookings.Create)
	g.GET("/bookings/:booking_id", h.Bookings.Get)
	g.POST("/bookings/:booking_id/approve", h.Bookings.Approve)
	g.POST("/bookings/:booking_id/reject", h.Bookings.Reject)
	g.POST("/bookings/:booking_id/cancel", h.Bookings.Cancel)
	g.POST("/bookings/:booking_id/complete", h.Bookings.Complete)
	g.GET("/tenants/:user_id/bookings", h.Bookings.ListForTenant)
	g.GET("/owners/:user_id/bookings", h.Bookings.ListForOwner)
	g.GET("/owners/:user_id/bookings/pending", h.Bookings.ListPendingForOwner)

	g.GET("/payments/:payment_id", h.Payments.Get)
	g.POST("/payments/:payment_id/settle", h.Payments.Settle, money...)
	g.GET("/tenants/:user_id/outstanding", h.Payments.Outstanding)
	g.GET("/tenants/:user_id/overdue", h.Payments.Overdue)
	g.GET("/owners/:user_id/payment-summary", h.Payments.OwnerSummary)

	g.GET("/wallets/:user_id", h.Wallets.Balance)
	g.GET("/wallets/:user_id/transactions", h.Wallets.Transactions)
	g.POST("/wallets/:user_id/credit", h.Wallets.Credit, money...)
	g.POST("/wallets/:user_id/debit", h.Wallets.Debit, money...)

	g.GET("/notifications", h.Notifications.List)
	g.GET("/notifications/unread-count", h.Notifications.UnreadCount)
	g.POST("/notifications/read-all", h.Notifications.MarkAllRead)
	g.POST("/notifications/:notification_id/read", h.Notifications.MarkRead)

	g.POST("/admin/accrual", h.Admin.RunAccrual)
}
