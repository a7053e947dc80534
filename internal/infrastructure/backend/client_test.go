package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", time.Second, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ada@example.com" || body["password"] != "pw" {
			t.Errorf("unexpected body %v", body)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok-1",
			"user": map[string]any{
				"id":    42,
				"email": "ada@example.com",
				"role":  "seller",
				"seller_profile": map[string]any{
					"business_name":   "Obi Crafts",
					"commission_rate": 0.1,
				},
			},
		})
	})

	res, err := c.Login(context.Background(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token != "tok-1" {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if res.User.ID != "42" || res.User.Role != domain.RoleSeller {
		t.Fatalf("unexpected user %+v", res.User)
	}
	if res.User.SellerProfile == nil || res.User.SellerProfile.BusinessName != "Obi Crafts" {
		t.Fatalf("seller profile not decoded: %+v", res.User.SellerProfile)
	}
}

func TestClient_LoginStatuses(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrInvalidCredentials},
		{http.StatusForbidden, domain.ErrEmailNotVerified},
		{http.StatusBadRequest, domain.ErrBackendRejected},
		{http.StatusInternalServerError, domain.ErrBackendUnavailable},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, map[string]string{"message": "nope"})
			})
			_, err := c.Login(context.Background(), "a@example.com", "pw")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var be *Error
			if !errors.As(err, &be) || be.UserMessage() != "nope" {
				t.Fatalf("expected backend message, got %v", err)
			}
		})
	}
}

func TestClient_CurrentUser(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("missing bearer token")
			}
			writeJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "c@example.com", "role": "customer"})
		})
		u, err := c.CurrentUser(context.Background(), "tok-1")
		if err != nil || u == nil || u.ID != "7" || u.Role != domain.RoleCustomer {
			t.Fatalf("unexpected result %+v %v", u, err)
		}
	})

	for _, status := range []int{http.StatusUnauthorized, http.StatusUnprocessableEntity} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, status, map[string]string{"msg": "Token has expired"})
			})
			if _, err := c.CurrentUser(context.Background(), "tok-1"); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}

	t.Run("null body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, nil)
		})
		u, err := c.CurrentUser(context.Background(), "tok-1")
		if err != nil || u != nil {
			t.Fatalf("expected (nil, nil), got %+v %v", u, err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, zerolog.Nop())
		if _, err := c.CurrentUser(context.Background(), "tok-1"); !errors.Is(err, domain.ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
	})
}

func TestClient_Signup(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["role"] != "affiliate" {
				t.Errorf("unexpected role %q", body["role"])
			}
			writeJSON(w, http.StatusCreated, map[string]any{"userId": 12})
		})
		err := c.Signup(context.Background(), ports.SignupInput{Email: "a@example.com", Password: "pw", Role: domain.RoleAffiliate})
		if err != nil {
			t.Fatalf("Signup returned error: %v", err)
		}
	})

	t.Run("no user id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"message": "Email already registered"})
		})
		err := c.Signup(context.Background(), ports.SignupInput{Email: "a@example.com", Password: "pw", Role: domain.RoleSeller})
		if !errors.Is(err, domain.ErrSignupFailed) {
			t.Fatalf("expected ErrSignupFailed, got %v", err)
		}
		var be *Error
		if !errors.As(err, &be) || be.UserMessage() != "Email already registered" {
			t.Fatalf("expected backend message, got %v", err)
		}
	})
}

func TestClient_FetchCart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cart/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{
					"id": 3, "product_id": 9, "quantity": 2,
					"product": map[string]any{
						"id": 9, "name": "Mug", "price": 4.5,
						"images": []map[string]any{
							{"image_url": "a.png", "is_primary": false},
							{"image_url": "b.png", "is_primary": true},
						},
					},
				},
				{
					"id": "4", "product_id": "10", "quantity": 1, "affiliate_id": "AFF1",
					"product": map[string]any{"id": 10, "name": "Bowl", "price": 2, "image": "bowl.png"},
				},
			},
			"total": 11,
		})
	})

	items, err := c.FetchCart(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("FetchCart returned error: %v", err)
	}
	want := []domain.CartItem{
		{ID: "3", ProductID: "9", Name: "Mug", Price: 4.5, Quantity: 2, Image: "b.png"},
		{ID: "4", ProductID: "10", Name: "Bowl", Price: 2, Quantity: 1, Image: "bowl.png", AffiliateID: "AFF1"},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestClient_CartMutations(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, body})
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	})
	ctx := context.Background()

	if err := c.AddItem(ctx, "tok", ports.NewCartLine{ProductID: "9", Quantity: 2, AffiliateID: "AFF1"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := c.UpdateItem(ctx, "tok", "3", 5); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if err := c.RemoveItem(ctx, "tok", "9"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := c.ClearCart(ctx, "tok"); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/api/cart/items"},
		{http.MethodPut, "/api/cart/items/3"},
		{http.MethodDelete, "/api/cart/items"},
		{http.MethodDelete, "/api/cart/items/all"},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(calls))
	}
	for i, w := range want {
		if calls[i].method != w.method || calls[i].path != w.path {
			t.Fatalf("call %d = %s %s, want %s %s", i, calls[i].method, calls[i].path, w.method, w.path)
		}
	}
	if calls[0].body["product_id"] != "9" || calls[0].body["affiliate_id"] != "AFF1" {
		t.Fatalf("unexpected add body %v", calls[0].body)
	}
	if calls[1].body["quantity"] != float64(5) {
		t.Fatalf("unexpected update body %v", calls[1].body)
	}
	if calls[2].body["productId"] != "9" {
		t.Fatalf("unexpected remove body %v", calls[2].body)
	}
}

func TestClient_TrackClick(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("anonymous click should carry no token")
		}
		writeJSON(w, http.StatusOK, map[string]any{"productId": 77})
	})
	id, err := c.TrackClick(context.Background(), "", "AFF1")
	if err != nil || id != "77" {
		t.Fatalf("unexpected result %q %v", id, err)
	}
}
