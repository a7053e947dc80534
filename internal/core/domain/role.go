package domain

import "strings"

// Role is the closed set of account roles known to the storefront.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleSeller
	RoleAffiliate
	RoleCustomer
	RoleGuest
)

var roleNames = map[Role]string{
	RoleAdmin:     "admin",
	RoleSeller:    "seller",
	RoleAffiliate: "affiliate",
	RoleCustomer:  "customer",
	RoleGuest:     "guest",
}

// ParseRole maps a wire value to a Role. Unrecognised values yield RoleUnknown.
func ParseRole(s string) Role {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == s {
			return r
		}
	}
	return RoleUnknown
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the role as its wire name. RoleUnknown encodes as "".
func (r Role) MarshalText() ([]byte, error) {
	if r == RoleUnknown {
		return []byte{}, nil
	}
	return []byte(r.String()), nil
}

// UnmarshalText never fails: unknown names decode to RoleUnknown so that
// downstream checks fail closed instead of rejecting the whole payload.
func (r *Role) UnmarshalText(b []byte) error {
	*r = ParseRole(string(b))
	return nil
}

// roleRoutes is the single lookup table for per-role navigation targets.
// Adding a role is an edit to this table only.
type roleRoutes struct {
	login     string
	dashboard string
	landing   string // post-login target for a complete profile
	settings  string
}

var routesByRole = map[Role]roleRoutes{
	RoleAdmin: {
		login:     "/admin/login",
		dashboard: "/admin/dashboard",
		landing:   "/admin/dashboard",
		settings:  "/admin/settings",
	},
	RoleSeller: {
		login:     "/seller/login",
		dashboard: "/seller/dashboard",
		landing:   "/seller/dashboard",
		settings:  "/seller/settings",
	},
	RoleAffiliate: {
		login:     "/affiliate/login",
		dashboard: "/affiliate/dashboard",
		landing:   "/affiliate/dashboard",
		settings:  "/affiliate/settings",
	},
	RoleCustomer: {
		login:     "/seller/login",
		dashboard: "/customer/dashboard",
		landing:   "/",
		settings:  "/settings",
	},
}

// DefaultLoginRole is used whenever no role can be inferred.
const DefaultLoginRole = RoleSeller

func (r Role) routes() roleRoutes {
	if rr, ok := routesByRole[r]; ok {
		return rr
	}
	return roleRoutes{
		login:     routesByRole[DefaultLoginRole].login,
		dashboard: "/",
		landing:   "/",
		settings:  "/settings",
	}
}

// LoginPath is the login screen for the role (seller login when unknown).
func (r Role) LoginPath() string { return r.routes().login }

// DashboardPath is where a signed-in user lands when denied a route.
func (r Role) DashboardPath() string { return r.routes().dashboard }

// LandingPath is the post-login target for a user whose profile is complete.
func (r Role) LandingPath() string { return r.routes().landing }

// SettingsPath is the screen an incomplete profile is routed to.
func (r Role) SettingsPath() string { return r.routes().settings }

// namespaces maps URL prefixes to the role whose login page guards them.
var namespaces = []struct {
	prefix string
	role   Role
}{
	{"/seller", RoleSeller},
	{"/affiliate", RoleAffiliate},
	{"/admin", RoleAdmin},
}

// NamespaceRole infers the role namespace of a path. Matching is segment
// aware: "/seller" and "/seller/x" match, "/sellers" does not.
func NamespaceRole(path string) Role {
	for _, ns := range namespaces {
		if hasSegmentPrefix(path, ns.prefix) {
			return ns.role
		}
	}
	return DefaultLoginRole
}

func hasSegmentPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
