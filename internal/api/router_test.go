package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/api/handler"
	"github.com/afripulse/storefront-session/internal/api/middleware"
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
	"github.com/afripulse/storefront-session/internal/core/service"
)

type anonymousIdentity struct{}

func (anonymousIdentity) Hydrate(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, nil
}
func (anonymousIdentity) Resolve(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, nil
}
func (anonymousIdentity) Current(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, nil
}

// TestRouter builds the router once: echoprometheus registers its collectors
// globally.
func TestRouter(t *testing.T) {
	e := NewRouter(Dependencies{
		Identity: anonymousIdentity{},
		Guard:    service.NewGuard(false),
		Readiness: map[string]handler.Pinger{
			"redis": handler.PingFunc(func(context.Context) error { return nil }),
		},
	}, Options{DeviceSecret: "secret"}, zerolog.Nop())

	t.Run("health needs no device", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get(middleware.DeviceHeader) != "" {
			t.Fatalf("ops routes must not mint devices")
		}
	})

	t.Run("v1 routes mint a device", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/route?path=/seller/dashboard", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get(middleware.DeviceHeader) == "" {
			t.Fatalf("expected a device token")
		}
		var d ports.Decision
		_ = json.Unmarshal(rec.Body.Bytes(), &d)
		if d.Action != ports.GuardRedirectLogin || d.Location != "/seller/login" {
			t.Fatalf("unexpected decision: %+v", d)
		}
	})

	t.Run("profile is guarded", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/profile", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown route uses the error envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
			t.Fatalf("expected error envelope, got %q", rec.Body.String())
		}
	})
}
