package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/api/metrics"
	"github.com/afripulse/storefront-session/internal/api/middleware"
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// RouteHandler answers whether the device may render a storefront screen.
type RouteHandler struct {
	identity ports.IdentityService
	guard    ports.RouteGuard
}

func NewRouteHandler(identity ports.IdentityService, guard ports.RouteGuard) *RouteHandler {
	return &RouteHandler{identity: identity, guard: guard}
}

// Decide handles GET /v1/route.
//
// @Summary      Decide access to a storefront route
// @Description  Public paths are always allowed. Protected paths yield a redirect to the login page, the user's dashboard or the settings page.
// @Tags         route
// @Produce      json
// @Param        path  query     string  true  "Requested location, optionally with a query string"
// @Success      200   {object}  ports.Decision
// @Failure      400   {object}  errorResponse
// @Router       /v1/route [get]
func (h *RouteHandler) Decide(c echo.Context) error {
	path := c.QueryParam("path")
	if !strings.HasPrefix(path, "/") {
		return echo.NewHTTPError(http.StatusBadRequest, "path must be absolute")
	}

	roles, protected := domain.ProtectedRoles(routePath(path))
	if !protected {
		decision := ports.Decision{Action: ports.GuardAllow}
		metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Action)).Inc()
		return c.JSON(http.StatusOK, decision)
	}

	id, err := h.identity.Current(c.Request().Context(), middleware.DeviceID(c))
	if err != nil {
		return err
	}

	decision := h.guard.Decide(ports.GuardInput{
		User:         id.User(),
		AllowedRoles: roles,
		Path:         path,
	})
	metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Action)).Inc()

	return c.JSON(http.StatusOK, decision)
}

func routePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}
