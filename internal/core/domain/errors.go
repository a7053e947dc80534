package domain

import "errors"

var (
	// ErrUnauthorized signals that the backend rejected the bearer token.
	ErrUnauthorized = errors.New("authentication required")
	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	// ErrBackendUnavailable covers transport failures and 5xx responses.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrBackendRejected covers any other 4xx response.
	ErrBackendRejected = errors.New("backend rejected request")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSignupFailed     = errors.New("signup failed")
	ErrInvalidRole      = errors.New("invalid role")
	ErrRoleMismatch     = errors.New("profile does not match role")

	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("cart item not found")
)
