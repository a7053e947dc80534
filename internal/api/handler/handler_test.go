package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/afripulse/storefront-session/internal/core/domain"
)

func TestAffiliateHandler_Track(t *testing.T) {
	tracker := &stubTracker{productID: "42"}
	h := NewAffiliateHandler(&stubIdentity{current: memberIdentity(domain.RoleCustomer)}, tracker)

	c, rec := newContext(http.MethodPost, "/v1/affiliate/track", `{"code":"AFF-XYZ"}`)
	if err := h.Track(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if tracker.code != "AFF-XYZ" || !tracker.session.Valid() {
		t.Fatalf("unexpected call: code=%q session=%v", tracker.code, tracker.session)
	}
	var resp trackResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ProductID != "42" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	t.Run("missing code", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/v1/affiliate/track", `{}`)
		assertHTTPError(t, h.Track(c), http.StatusBadRequest)
	})

	t.Run("backend rejection", func(t *testing.T) {
		tracker.err = domain.ErrBackendRejected
		c, _ := newContext(http.MethodPost, "/v1/affiliate/track", `{"code":"BAD"}`)
		if err := h.Track(c); !errors.Is(err, domain.ErrBackendRejected) {
			t.Fatalf("expected ErrBackendRejected, got %v", err)
		}
	})
}

func TestNoticeHandler_Drain(t *testing.T) {
	store := &stubNotices{}
	_ = store.Notify(context.Background(), testDevice, domain.Notice{
		Level: domain.NoticeSuccess, Title: "Login Successful", CreatedAt: time.Now(),
	})
	h := NewNoticeHandler(store)

	c, rec := newContext(http.MethodGet, "/v1/notices", "")
	if err := h.Drain(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp noticesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Notices) != 1 || resp.Notices[0].Title != "Login Successful" {
		t.Fatalf("unexpected notices: %+v", resp.Notices)
	}

	// Drained notices are delivered once.
	c, rec = newContext(http.MethodGet, "/v1/notices", "")
	if err := h.Drain(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var raw map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &raw)
	if list, ok := raw["notices"].([]any); !ok || len(list) != 0 {
		t.Fatalf("expected empty list, got %v", raw["notices"])
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", "")
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all dependencies up", func(t *testing.T) {
		h := NewReadinessHandler(map[string]Pinger{"mongodb": ok, "redis": ok})
		c, rec := newContext(http.MethodGet, "/health/ready", "")
		if err := h.Readiness(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewReadinessHandler(map[string]Pinger{"mongodb": ok, "redis": down})
		c, rec := newContext(http.MethodGet, "/health/ready", "")
		if err := h.Readiness(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		var resp readinessResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Status != "degraded" || resp.Dependencies["redis"].Error != "connection refused" || resp.Dependencies["mongodb"].Status != "ok" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})
}
