package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
	"github.com/afripulse/storefront-session/internal/core/service"
)

type stubIdentity struct {
	id  domain.Identity
	err error
}

func (s stubIdentity) Hydrate(context.Context, string) (domain.Identity, error) { return s.id, s.err }
func (s stubIdentity) Resolve(context.Context, string) (domain.Identity, error) { return s.id, s.err }
func (s stubIdentity) Current(context.Context, string) (domain.Identity, error) { return s.id, s.err }

func signedIn(role domain.Role) domain.Identity {
	return domain.Identity{Session: &domain.Session{
		Token: "tok",
		User:  &domain.User{ID: "1", Email: "u@example.com", Role: role},
	}}
}

func runGuard(t *testing.T, identity ports.IdentityService, roles ...domain.Role) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/v1/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(deviceKey, "dev-1")

	called := false
	h := Guard(identity, service.NewGuard(false), roles...)(func(c echo.Context) error {
		called = true
		if _, ok := IdentityFrom(c); !ok {
			t.Fatalf("identity not stored on context")
		}
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	return rec, called, err
}

func TestGuard_AllowsMatchingRole(t *testing.T) {
	rec, called, err := runGuard(t, stubIdentity{id: signedIn(domain.RoleSeller)}, domain.RoleSeller, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestGuard_AnonymousGets401(t *testing.T) {
	rec, called, err := runGuard(t, stubIdentity{}, domain.RoleSeller)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("handler must not run")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body guardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Decision.Action != ports.GuardRedirectLogin || body.Decision.From != "/v1/profile" {
		t.Fatalf("unexpected decision: %+v", body.Decision)
	}
}

func TestGuard_WrongRoleGets403(t *testing.T) {
	rec, called, _ := runGuard(t, stubIdentity{id: signedIn(domain.RoleAffiliate)}, domain.RoleSeller)
	if called {
		t.Fatalf("handler must not run")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var body guardResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Decision.Location != domain.RoleAffiliate.DashboardPath() {
		t.Fatalf("expected redirect to affiliate dashboard, got %+v", body.Decision)
	}
}

func TestGuard_PropagatesIdentityError(t *testing.T) {
	boom := errors.New("store down")
	_, called, err := runGuard(t, stubIdentity{err: boom}, domain.RoleSeller)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if called {
		t.Fatalf("handler must not run")
	}
}
