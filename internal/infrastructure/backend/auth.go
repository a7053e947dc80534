package backend

import (
	"context"
	"net/http"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

var _ ports.AuthBackend = (*Client)(nil)

// wireUser decodes a backend user whose id is numeric.
type wireUser struct {
	ID flexID `json:"id"`
	*domain.User
}

func (w *wireUser) toDomain() *domain.User {
	if w == nil || w.User == nil {
		return nil
	}
	u := *w.User
	u.ID = string(w.ID)
	return &u
}

func loginStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrInvalidCredentials
	case http.StatusForbidden:
		return domain.ErrEmailNotVerified
	}
	return defaultStatus(status)
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	req := map[string]string{"email": email, "password": password}
	var resp struct {
		AccessToken string    `json:"access_token"`
		User        *wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp, loginStatus); err != nil {
		return nil, err
	}
	return &ports.LoginResult{Token: resp.AccessToken, User: resp.User.toDomain()}, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil, nil)
}

// Signup succeeds only when the backend hands back the new user's id.
func (c *Client) Signup(ctx context.Context, in ports.SignupInput) error {
	req := map[string]string{
		"email":    in.Email,
		"password": in.Password,
		"role":     in.Role.String(),
		"name":     in.Name,
	}
	var resp struct {
		UserID  flexID `json:"userId"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &resp, nil); err != nil {
		return err
	}
	if resp.UserID == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown error during registration"
		}
		return &Error{Status: http.StatusOK, Message: msg, Err: domain.ErrSignupFailed}
	}
	return nil
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	var resp *wireUser
	if err := c.do(ctx, http.MethodGet, "/profile/me", token, nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, in ports.ProfileUpdate) (*domain.User, error) {
	req := struct {
		Profile          *domain.Profile          `json:"profile,omitempty"`
		SellerProfile    *domain.SellerProfile    `json:"seller_profile,omitempty"`
		AffiliateProfile *domain.AffiliateProfile `json:"affiliate_profile,omitempty"`
	}{in.Profile, in.SellerProfile, in.AffiliateProfile}

	var resp *wireUser
	if err := c.do(ctx, http.MethodPut, "/profile/me", token, req, &resp, nil); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}
