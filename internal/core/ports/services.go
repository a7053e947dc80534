package ports

import (
	"context"

	"github.com/afripulse/storefront-session/internal/core/domain"
)

// IdentityService establishes who is behind a device.
type IdentityService interface {
	// Hydrate reads the credential cache only; it never calls the backend.
	Hydrate(ctx context.Context, device string) (domain.Identity, error)
	// Resolve re-validates the cached identity against the backend.
	Resolve(ctx context.Context, device string) (domain.Identity, error)
	// Current hydrates, resolving only when a token has no cached user.
	Current(ctx context.Context, device string) (domain.Identity, error)
}

// LoginOutcome is what a successful login hands back to the caller.
type LoginOutcome struct {
	User            *domain.User
	Redirect        string
	ProfileComplete bool
}

// LogoutOutcome says where a signed-out device goes next.
type LogoutOutcome struct {
	Redirect string
	// Role is the role that was signed in, RoleUnknown for an anonymous device.
	Role domain.Role
}

// SessionService orchestrates login, logout, signup and profile updates.
type SessionService interface {
	Login(ctx context.Context, device, email, password string) (*LoginOutcome, error)
	// Logout always succeeds.
	Logout(ctx context.Context, device string) LogoutOutcome
	Signup(ctx context.Context, device string, in SignupInput) (bool, error)
	UpdateProfile(ctx context.Context, device string, in ProfileUpdate) (*domain.User, error)
}

// CartService owns the cart state of every device. The session argument is
// the caller's current identity; nil means anonymous.
type CartService interface {
	Sync(ctx context.Context, device string, session *domain.Session) (domain.CartState, error)
	AddItem(ctx context.Context, device string, session *domain.Session, item domain.CartItem) (domain.CartState, error)
	UpdateQuantity(ctx context.Context, device string, session *domain.Session, productID string, quantity int) (domain.CartState, error)
	RemoveItem(ctx context.Context, device string, session *domain.Session, productID string) (domain.CartState, error)
	Clear(ctx context.Context, device string, session *domain.Session) (domain.CartState, error)
}

// SessionExpirer ends a session after the backend rejected its token.
type SessionExpirer interface {
	// Expire is a no-op when the device no longer holds token.
	Expire(ctx context.Context, device, token string) error
}

// AffiliateService records affiliate link visits for later attribution.
type AffiliateService interface {
	Track(ctx context.Context, device string, session *domain.Session, code string) (string, error)
}

// GuardAction is the outcome of a route-guard evaluation.
type GuardAction string

const (
	GuardPending          GuardAction = "pending"
	GuardAllow            GuardAction = "allow"
	GuardRedirectLogin    GuardAction = "redirect_login"
	GuardRedirectDash     GuardAction = "redirect_dashboard"
	GuardRedirectSettings GuardAction = "redirect_settings"
)

// GuardInput is everything the route guard looks at.
type GuardInput struct {
	User         *domain.User
	Loading      bool
	AllowedRoles []domain.Role
	// Path is the requested location, optionally with its query string.
	Path string
}

// Decision tells the caller whether to render or where to go instead.
type Decision struct {
	Action   GuardAction `json:"action"`
	Location string      `json:"location,omitempty"`
	// From preserves the requested location for post-login return.
	From string `json:"from,omitempty"`
}

// RouteGuard decides per-route access.
type RouteGuard interface {
	Decide(in GuardInput) Decision
}
