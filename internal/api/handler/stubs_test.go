package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

const testDevice = "dev-1"

// newContext builds an echo context as the Device middleware would leave it.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("device", testDevice)
	return c, rec
}

type stubIdentity struct {
	hydrateFn func(ctx context.Context, device string) (domain.Identity, error)
	resolveFn func(ctx context.Context, device string) (domain.Identity, error)
	current   domain.Identity
}

func (s *stubIdentity) Hydrate(ctx context.Context, device string) (domain.Identity, error) {
	if s.hydrateFn == nil {
		return s.current, nil
	}
	return s.hydrateFn(ctx, device)
}

func (s *stubIdentity) Resolve(ctx context.Context, device string) (domain.Identity, error) {
	if s.resolveFn == nil {
		return s.current, nil
	}
	return s.resolveFn(ctx, device)
}

func (s *stubIdentity) Current(context.Context, string) (domain.Identity, error) {
	return s.current, nil
}

type stubSessions struct {
	loginFn   func(ctx context.Context, device, email, password string) (*ports.LoginOutcome, error)
	logoutFn  func(ctx context.Context, device string) ports.LogoutOutcome
	signupFn  func(ctx context.Context, device string, in ports.SignupInput) (bool, error)
	profileFn func(ctx context.Context, device string, in ports.ProfileUpdate) (*domain.User, error)
}

func (s *stubSessions) Login(ctx context.Context, device, email, password string) (*ports.LoginOutcome, error) {
	return s.loginFn(ctx, device, email, password)
}

func (s *stubSessions) Logout(ctx context.Context, device string) ports.LogoutOutcome {
	return s.logoutFn(ctx, device)
}

func (s *stubSessions) Signup(ctx context.Context, device string, in ports.SignupInput) (bool, error) {
	return s.signupFn(ctx, device, in)
}

func (s *stubSessions) UpdateProfile(ctx context.Context, device string, in ports.ProfileUpdate) (*domain.User, error) {
	return s.profileFn(ctx, device, in)
}

// stubCart records the last call and answers with state or err.
type stubCart struct {
	state   domain.CartState
	err     error
	op      string
	session *domain.Session
	item    domain.CartItem
	product string
	qty     int
}

func (s *stubCart) Sync(_ context.Context, _ string, session *domain.Session) (domain.CartState, error) {
	s.op, s.session = "sync", session
	return s.state, s.err
}

func (s *stubCart) AddItem(_ context.Context, _ string, session *domain.Session, item domain.CartItem) (domain.CartState, error) {
	s.op, s.session, s.item = "add", session, item
	return s.state, s.err
}

func (s *stubCart) UpdateQuantity(_ context.Context, _ string, session *domain.Session, productID string, quantity int) (domain.CartState, error) {
	s.op, s.session, s.product, s.qty = "update", session, productID, quantity
	return s.state, s.err
}

func (s *stubCart) RemoveItem(_ context.Context, _ string, session *domain.Session, productID string) (domain.CartState, error) {
	s.op, s.session, s.product = "remove", session, productID
	return s.state, s.err
}

func (s *stubCart) Clear(_ context.Context, _ string, session *domain.Session) (domain.CartState, error) {
	s.op, s.session = "clear", session
	return s.state, s.err
}

type stubTracker struct {
	productID string
	err       error
	code      string
	session   *domain.Session
}

func (s *stubTracker) Track(_ context.Context, _ string, session *domain.Session, code string) (string, error) {
	s.code, s.session = code, session
	return s.productID, s.err
}

type stubNotices struct {
	pending []domain.Notice
	err     error
}

func (s *stubNotices) Notify(_ context.Context, _ string, n domain.Notice) error {
	s.pending = append(s.pending, n)
	return nil
}

func (s *stubNotices) Drain(context.Context, string) ([]domain.Notice, error) {
	out := s.pending
	s.pending = nil
	return out, s.err
}

func memberIdentity(role domain.Role) domain.Identity {
	return domain.Identity{Session: &domain.Session{
		Token: "tok",
		User:  &domain.User{ID: "7", Email: "m@example.com", Role: role},
	}}
}
