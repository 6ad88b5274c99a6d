package http

import (
	"net/http"
	"strings"

	"rentflow/internal/domain/actor"

	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"

	actorKey = "actor"
)

// ActorMiddleware resolves the caller from identity headers set by the
// gateway in front of this service. SYSTEM is reserved for the worker.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + HeaderUserID})
			}
			if len(userID) > 32 {
				return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + HeaderUserID})
			}
			role := actor.Role(strings.ToUpper(strings.TrimSpace(c.Request().Header.Get(HeaderUserRole))))
			switch role {
			case "":
				role = actor.RoleUser
			case actor.RoleUser, actor.RoleAgent, actor.RoleAdmin:
			default:
				return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + HeaderUserRole})
			}
			c.Set(actorKey, actor.Actor{UserID: userID, Role: role})
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) actor.Actor {
	a, _ := c.Get(actorKey).(actor.Actor)
	return a
}
