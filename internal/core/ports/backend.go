package ports

import (
	"context"

	"github.com/afripulse/storefront-session/internal/core/domain"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// SignupInput carries the registration form.
type SignupInput struct {
	Email    string
	Password string
	Role     domain.Role
	Name     string
}

// ProfileUpdate carries the editable parts of a user. Nil sub-profiles are
// left unchanged by the backend.
type ProfileUpdate struct {
	Profile          *domain.Profile
	SellerProfile    *domain.SellerProfile
	AffiliateProfile *domain.AffiliateProfile
}

// AuthBackend is the storefront REST surface for identity.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Signup(ctx context.Context, in SignupInput) error
	// CurrentUser returns (nil, nil) when the backend answers without a user.
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, token string, in ProfileUpdate) (*domain.User, error)
}

// NewCartLine is a line the authenticated cart should gain.
type NewCartLine struct {
	ProductID   string
	Quantity    int
	AffiliateID string
}

// CartBackend mutates and reads the authenticated, server-side cart.
type CartBackend interface {
	FetchCart(ctx context.Context, token string) ([]domain.CartItem, error)
	AddItem(ctx context.Context, token string, line NewCartLine) error
	UpdateItem(ctx context.Context, token, lineID string, quantity int) error
	RemoveItem(ctx context.Context, token, productID string) error
	ClearCart(ctx context.Context, token string) error
}

// AffiliateBackend records affiliate link clicks.
type AffiliateBackend interface {
	// TrackClick returns the product the affiliate code points at.
	TrackClick(ctx context.Context, token, code string) (string, error)
}
