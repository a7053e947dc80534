package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain and
// backend errors to status codes and renders {"error": "<message>"}.
// Unexpected errors are logged and never leak to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusForbidden, "email not verified"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "invalid role"
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusUnprocessableEntity, "profile does not match role"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, domain.ErrInvalidQuantity.Error()
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, "cart item not found"
	case errors.Is(err, domain.ErrSignupFailed):
		return http.StatusBadRequest, backendMessage(err, "signup failed")
	case errors.Is(err, domain.ErrBackendRejected):
		return http.StatusUnprocessableEntity, backendMessage(err, "request rejected")
	case errors.Is(err, domain.ErrBackendUnavailable):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("backend unavailable")
		return http.StatusBadGateway, "storefront backend unavailable"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// backendMessage surfaces the backend's own explanation when it sent one.
func backendMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}
