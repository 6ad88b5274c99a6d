package http

import (
	"net/http"
	"strconv"

	ucNotification "rentflow/internal/usecase/notification"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct{ uc *ucNotification.Usecase }

func NewNotificationHandler(uc *ucNotification.Usecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func (h *NotificationHandler) List(c echo.Context) error {
	unread, _ := strconv.ParseBool(c.QueryParam("unread"))
	dto, err := h.uc.List(c.Request().Context(), actorFrom(c), unread)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	n, err := h.uc.UnreadCount(c.Request().Context(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": n})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	nid, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification_id path param"})
	}
	if err := h.uc.MarkRead(c.Request().Context(), actorFrom(c), nid.String()); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	n, err := h.uc.MarkAllRead(c.Request().Context(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": n})
}
