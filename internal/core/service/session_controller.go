package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

const backendLogoutTimeout = 10 * time.Second

// signupRoles are the roles a visitor may register for themselves.
var signupRoles = map[domain.Role]bool{
	domain.RoleSeller:    true,
	domain.RoleAffiliate: true,
	domain.RoleCustomer:  true,
}

// cartSyncer is the slice of the cart engine the controller drives.
type cartSyncer interface {
	Sync(ctx context.Context, device string, session *domain.Session) (domain.CartState, error)
}

// SessionController implements login, logout, signup and profile updates.
type SessionController struct {
	store    ports.CredentialStore
	backend  ports.AuthBackend
	cart     cartSyncer
	tasks    ports.TaskQueue
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewSessionController returns a SessionController.
func NewSessionController(
	store ports.CredentialStore,
	backend ports.AuthBackend,
	cart cartSyncer,
	tasks ports.TaskQueue,
	notifier ports.Notifier,
	log zerolog.Logger,
) *SessionController {
	return &SessionController{
		store:    store,
		backend:  backend,
		cart:     cart,
		tasks:    tasks,
		notifier: notifier,
		log:      log,
	}
}

var _ ports.SessionService = (*SessionController)(nil)

// Login authenticates, persists the session, reconciles the cart and picks
// the post-login destination. On failure nothing is stored.
func (s *SessionController) Login(ctx context.Context, device, email, password string) (*ports.LoginOutcome, error) {
	res, err := s.backend.Login(ctx, email, password)
	if err == nil && (res == nil || res.Token == "" || res.User == nil) {
		err = fmt.Errorf("login: response missing user or token: %w", domain.ErrBackendRejected)
	}
	if err == nil {
		err = res.User.Validate()
	}
	if err != nil {
		s.log.Info().Err(err).Str("device", device).Msg("login failed")
		notify(ctx, s.notifier, s.log, device, domain.Notice{
			Level:       domain.NoticeError,
			Title:       "Login Failed",
			Description: loginFailureMessage(err),
		})
		return nil, err
	}

	session := domain.Session{Token: res.Token, User: res.User}
	if err := s.store.Save(ctx, device, session); err != nil {
		notify(ctx, s.notifier, s.log, device, domain.Notice{
			Level:       domain.NoticeError,
			Title:       "Login Failed",
			Description: "An unexpected error occurred.",
		})
		return nil, fmt.Errorf("login: persist session: %w", err)
	}

	if _, err := s.cart.Sync(ctx, device, &session); err != nil {
		s.log.Warn().Err(err).Str("device", device).Msg("cart reconciliation after login failed")
	}

	user := res.User
	notify(ctx, s.notifier, s.log, device, domain.Notice{
		Level:       domain.NoticeSuccess,
		Title:       "Login Successful",
		Description: fmt.Sprintf("Welcome back, %s!", user.DisplayName()),
	})

	complete := domain.IsProfileComplete(user)
	redirect := user.Role.LandingPath()
	if !complete {
		redirect = user.Role.SettingsPath()
		notify(ctx, s.notifier, s.log, device, domain.Notice{
			Level:       domain.NoticeInfo,
			Title:       "Profile Incomplete",
			Description: "Please complete your profile to continue.",
		})
	}

	s.log.Info().
		Str("device", device).
		Str("user_id", user.ID).
		Str("role", user.Role.String()).
		Bool("profile_complete", complete).
		Msg("login succeeded")

	return &ports.LoginOutcome{User: user, Redirect: redirect, ProfileComplete: complete}, nil
}

// Logout clears the device's session and returns the login page of the role
// that was signed in. The backend is told best-effort, off the request path.
func (s *SessionController) Logout(ctx context.Context, device string) ports.LogoutOutcome {
	cached, err := s.store.Load(ctx, device)
	if err != nil {
		s.log.Warn().Err(err).Str("device", device).Msg("logout: failed to read session")
	}

	role := domain.RoleUnknown
	if cached.User != nil {
		role = cached.User.Role
	}

	if token := cached.Token; token != "" {
		s.tasks.Enqueue(device, func(ctx context.Context) {
			ctx, cancel := context.WithTimeout(ctx, backendLogoutTimeout)
			defer cancel()
			if err := s.backend.Logout(ctx, token); err != nil {
				s.log.Warn().Err(err).Str("device", device).Msg("backend logout failed")
			}
		})
	}

	if err := s.store.Clear(ctx, device); err != nil {
		s.log.Error().Err(err).Str("device", device).Msg("logout: failed to clear session")
	}

	if _, err := s.cart.Sync(ctx, device, nil); err != nil {
		s.log.Warn().Err(err).Str("device", device).Msg("cart reconciliation after logout failed")
	}

	s.log.Info().Str("device", device).Str("role", role.String()).Msg("logged out")
	return ports.LogoutOutcome{Redirect: role.LoginPath(), Role: role}
}

// Signup registers an account. It never signs the visitor in: the backend
// requires email verification first.
func (s *SessionController) Signup(ctx context.Context, device string, in ports.SignupInput) (bool, error) {
	if !signupRoles[in.Role] {
		notify(ctx, s.notifier, s.log, device, domain.Notice{
			Level:       domain.NoticeError,
			Title:       "Signup Failed",
			Description: "This account type cannot be registered.",
		})
		return false, domain.ErrInvalidRole
	}

	if err := s.backend.Signup(ctx, in); err != nil {
		s.log.Info().Err(err).Str("device", device).Str("role", in.Role.String()).Msg("signup failed")
		notify(ctx, s.notifier, s.log, device, domain.Notice{
			Level:       domain.NoticeError,
			Title:       "Signup Failed",
			Description: userMessage(err, "Signup failed"),
		})
		return false, err
	}

	s.log.Info().Str("device", device).Str("role", in.Role.String()).Msg("signup accepted")
	return true, nil
}

// UpdateProfile pushes profile edits and caches the user the backend returns.
// The role can never change through this path.
func (s *SessionController) UpdateProfile(ctx context.Context, device string, in ports.ProfileUpdate) (*domain.User, error) {
	cached, err := s.store.Load(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if !cached.Valid() {
		return nil, domain.ErrNotAuthenticated
	}

	role := cached.User.Role
	if (in.SellerProfile != nil && role != domain.RoleSeller) ||
		(in.AffiliateProfile != nil && role != domain.RoleAffiliate) {
		return nil, domain.ErrRoleMismatch
	}

	user, err := s.backend.UpdateProfile(ctx, cached.Token, in)
	if errors.Is(err, domain.ErrUnauthorized) {
		if clearErr := s.store.Clear(ctx, device); clearErr != nil {
			s.log.Error().Err(clearErr).Str("device", device).Msg("failed to clear rejected session")
		}
		notify(ctx, s.notifier, s.log, device, domain.Notice{
			Level:       domain.NoticeInfo,
			Title:       "Session expired",
			Description: "Please sign in again.",
		})
		return nil, err
	}
	if err == nil && user == nil {
		err = fmt.Errorf("update profile: empty response: %w", domain.ErrBackendRejected)
	}
	if err != nil {
		notify(ctx, s.notifier, s.log, device, domain.Notice{
			Level:       domain.NoticeError,
			Title:       "Update Failed",
			Description: userMessage(err, "Could not save your profile. Please try again."),
		})
		return nil, err
	}

	if user.Role != role || user.Validate() != nil {
		s.log.Error().
			Str("device", device).
			Str("cached_role", role.String()).
			Str("returned_role", user.Role.String()).
			Msg("backend returned a user with a different role")
		return nil, domain.ErrRoleMismatch
	}

	stored, err := s.store.RefreshUser(ctx, device, cached.Token, user)
	if err != nil {
		return nil, fmt.Errorf("update profile: cache user: %w", err)
	}
	if !stored {
		return nil, domain.ErrNotAuthenticated
	}

	notify(ctx, s.notifier, s.log, device, domain.Notice{
		Level: domain.NoticeSuccess,
		Title: "Profile Updated",
	})
	return user, nil
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Please check your credentials and try again."
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "Please verify your email before logging in."
	default:
		return "An unexpected error occurred."
	}
}

// userMessage extracts a human-readable backend message when one exists.
func userMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}
