package ports

import (
	"context"

	"github.com/afripulse/storefront-session/internal/core/domain"
)

// CredentialStore is the durable per-device home of the bearer token and the
// last-known user. Only the Identity Resolver and the Session Controller
// write to it.
type CredentialStore interface {
	// Load returns the stored session. A device with nothing stored yields a
	// zero Session and no error.
	Load(ctx context.Context, device string) (domain.Session, error)
	Save(ctx context.Context, device string, session domain.Session) error
	// RefreshUser replaces the cached user only while the stored token still
	// equals token. It reports false when the session was cleared or
	// replaced after the caller read it.
	RefreshUser(ctx context.Context, device, token string, user *domain.User) (bool, error)
	Clear(ctx context.Context, device string) error
	// ClearToken deletes the session only while it still holds token and
	// reports whether it did.
	ClearToken(ctx context.Context, device, token string) (bool, error)
}

// GuestCartStore persists the cart of a device that has no session.
type GuestCartStore interface {
	Load(ctx context.Context, device string) ([]domain.CartItem, error)
	Save(ctx context.Context, device string, items []domain.CartItem) error
	Clear(ctx context.Context, device string) error
}
