package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// IdentityResolver restores a device's identity from the credential store
// and re-validates it against the backend. It favours continuity: a
// transient backend failure keeps the cached user rather than logging out.
type IdentityResolver struct {
	store    ports.CredentialStore
	backend  ports.AuthBackend
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
	group    singleflight.Group
}

// NewIdentityResolver returns an IdentityResolver.
func NewIdentityResolver(
	store ports.CredentialStore,
	backend ports.AuthBackend,
	notifier ports.Notifier,
	log zerolog.Logger,
) *IdentityResolver {
	return &IdentityResolver{
		store:    store,
		backend:  backend,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

var (
	_ ports.IdentityService = (*IdentityResolver)(nil)
	_ ports.SessionExpirer  = (*IdentityResolver)(nil)
)

// Hydrate returns the cached identity without any network call.
func (r *IdentityResolver) Hydrate(ctx context.Context, device string) (domain.Identity, error) {
	cached, err := r.store.Load(ctx, device)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("hydrate identity: %w", err)
	}
	if cached.Token == "" {
		r.discardOrphan(ctx, device, cached)
		return domain.Identity{}, nil
	}
	if tokenExpired(cached.Token, r.now()) {
		r.expire(ctx, device)
		return domain.Identity{}, nil
	}
	return domain.Identity{Session: &cached, Provisional: true}, nil
}

// Current hydrates, falling back to a full Resolve when a token is stored
// without a cached user.
func (r *IdentityResolver) Current(ctx context.Context, device string) (domain.Identity, error) {
	id, err := r.Hydrate(ctx, device)
	if err != nil {
		return id, err
	}
	if id.Session != nil && id.Session.User == nil {
		return r.Resolve(ctx, device)
	}
	return id, nil
}

// Resolve runs the full restore-and-revalidate algorithm.
func (r *IdentityResolver) Resolve(ctx context.Context, device string) (domain.Identity, error) {
	cached, err := r.store.Load(ctx, device)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}

	// 1. No token: anonymous, and no backend call.
	if cached.Token == "" {
		r.discardOrphan(ctx, device, cached)
		return domain.Identity{}, nil
	}

	// 2. A bearer that is a JWT past its exp cannot be valid.
	if tokenExpired(cached.Token, r.now()) {
		r.expire(ctx, device)
		return domain.Identity{}, nil
	}

	// 3. Ask the backend.
	user, err := r.fetch(ctx, device, cached.Token)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		r.expire(ctx, device)
		return domain.Identity{}, nil

	case ctx.Err() != nil:
		// The caller went away; its outcome says nothing about the session.
		return domain.Identity{}, fmt.Errorf("resolve identity: %w", ctx.Err())

	case err != nil:
		r.log.Warn().Err(err).Str("device", device).Msg("identity refresh failed")
		return r.keepOrLogout(ctx, device, cached)

	case user == nil:
		r.log.Warn().Str("device", device).Msg("token present but backend returned no user")
		return r.keepOrLogout(ctx, device, cached)

	case user.Validate() != nil:
		r.log.Warn().Str("device", device).Str("role", user.Role.String()).Msg("backend user has mismatched sub-profile")
		return r.keepOrLogout(ctx, device, cached)
	}

	stored, err := r.store.RefreshUser(ctx, device, cached.Token, user)
	if err != nil {
		r.log.Warn().Err(err).Str("device", device).Msg("failed to write back refreshed user")
	} else if !stored {
		// Logged out (or re-logged in) while the fetch was in flight.
		r.log.Debug().Str("device", device).Msg("discarding refresh for ended session")
		return domain.Identity{}, nil
	}

	return domain.Identity{Session: &domain.Session{Token: cached.Token, User: user}}, nil
}

// fetch collapses concurrent refreshes of the same device and token. The
// shared call does not inherit any one caller's cancellation and is bounded
// by the backend client's timeout; each caller stops waiting on its own ctx.
func (r *IdentityResolver) fetch(ctx context.Context, device, token string) (*domain.User, error) {
	ch := r.group.DoChan(device+"\x00"+token, func() (any, error) {
		return r.backend.CurrentUser(context.WithoutCancel(ctx), token)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user, _ := res.Val.(*domain.User)
		return user, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *IdentityResolver) keepOrLogout(ctx context.Context, device string, cached domain.Session) (domain.Identity, error) {
	if cached.User != nil {
		return domain.Identity{Session: &cached, Stale: true}, nil
	}
	if err := r.store.Clear(ctx, device); err != nil {
		return domain.Identity{}, fmt.Errorf("resolve identity: clear: %w", err)
	}
	r.log.Info().Str("device", device).Msg("no cached user to fall back on, session cleared")
	return domain.Identity{}, nil
}

// Expire ends the device's session after another component saw the backend
// reject token. A session replaced by a newer login is left alone.
func (r *IdentityResolver) Expire(ctx context.Context, device, token string) error {
	if token == "" {
		return nil
	}
	cleared, err := r.store.ClearToken(ctx, device, token)
	if err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	if cleared {
		r.log.Info().Str("device", device).Msg("backend rejected token, session cleared")
		r.notifyExpired(ctx, device)
	}
	return nil
}

func (r *IdentityResolver) expire(ctx context.Context, device string) {
	if err := r.store.Clear(ctx, device); err != nil {
		r.log.Error().Err(err).Str("device", device).Msg("failed to clear expired session")
	}
	r.notifyExpired(ctx, device)
}

func (r *IdentityResolver) notifyExpired(ctx context.Context, device string) {
	notify(ctx, r.notifier, r.log, device, domain.Notice{
		Level:       domain.NoticeInfo,
		Title:       "Session expired",
		Description: "Please sign in again.",
	})
}

func (r *IdentityResolver) discardOrphan(ctx context.Context, device string, cached domain.Session) {
	if cached.User == nil {
		return
	}
	if err := r.store.Clear(ctx, device); err != nil {
		r.log.Warn().Err(err).Str("device", device).Msg("failed to discard cached user without token")
	}
}

// tokenExpired reports whether token parses as a JWT whose exp is in the
// past. Opaque tokens are never considered expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
