package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/api/metrics"
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

const identityKey = "identity"

type guardResponse struct {
	Error    string         `json:"error"`
	Decision ports.Decision `json:"decision"`
}

// Guard enforces role-based access for API routes. Anonymous callers get a
// 401 and callers with the wrong role (or, when enforced, an incomplete
// profile) get a 403; both carry the redirect the client should follow.
// Must run after Device.
func Guard(identity ports.IdentityService, guard ports.RouteGuard, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	roles := append([]domain.Role(nil), allowedRoles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := identity.Current(c.Request().Context(), DeviceID(c))
			if err != nil {
				return err
			}

			decision := guard.Decide(ports.GuardInput{
				User:         id.User(),
				AllowedRoles: roles,
				Path:         c.Request().URL.RequestURI(),
			})
			metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Action)).Inc()

			switch decision.Action {
			case ports.GuardAllow:
				c.Set(identityKey, id)
				return next(c)
			case ports.GuardRedirectLogin:
				return c.JSON(http.StatusUnauthorized, guardResponse{Error: "authentication required", Decision: decision})
			default:
				return c.JSON(http.StatusForbidden, guardResponse{Error: "forbidden", Decision: decision})
			}
		}
	}
}

// IdentityFrom returns the identity a Guard admitted.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}
