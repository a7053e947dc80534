package service

import (
	"slices"
	"strings"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// Guard is the per-route authorization decision. It is pure: the same input
// always yields the same decision.
type Guard struct {
	// enforceCompleteness gates routes on profile completeness. Completeness
	// is otherwise enforced once, at login.
	enforceCompleteness bool
}

// NewGuard returns a Guard. Completeness gating is off unless requested.
func NewGuard(enforceCompleteness bool) *Guard {
	return &Guard{enforceCompleteness: enforceCompleteness}
}

var _ ports.RouteGuard = (*Guard)(nil)

// Decide evaluates one protected-route render.
func (g *Guard) Decide(in ports.GuardInput) ports.Decision {
	if in.Loading {
		return ports.Decision{Action: ports.GuardPending}
	}

	if in.User == nil {
		return ports.Decision{
			Action:   ports.GuardRedirectLogin,
			Location: domain.NamespaceRole(pathOnly(in.Path)).LoginPath(),
			From:     in.Path,
		}
	}

	if !slices.Contains(in.AllowedRoles, in.User.Role) {
		return ports.Decision{
			Action:   ports.GuardRedirectDash,
			Location: in.User.Role.DashboardPath(),
		}
	}

	if g.enforceCompleteness && !domain.IsProfileComplete(in.User) {
		settings := in.User.Role.SettingsPath()
		if pathOnly(in.Path) != settings {
			return ports.Decision{Action: ports.GuardRedirectSettings, Location: settings}
		}
	}

	return ports.Decision{Action: ports.GuardAllow}
}

func pathOnly(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}
