package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/api/middleware"
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// currentSession returns the caller's session, or nil when anonymous. A
// Guard upstream has already resolved it; otherwise it is hydrated here.
func currentSession(c echo.Context, identity ports.IdentityService) (*domain.Session, error) {
	if id, ok := middleware.IdentityFrom(c); ok {
		return id.Session, nil
	}
	id, err := identity.Current(c.Request().Context(), middleware.DeviceID(c))
	if err != nil {
		return nil, err
	}
	if !id.Authenticated() {
		return nil, nil
	}
	return id.Session, nil
}
