package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/api/metrics"
	"github.com/afripulse/storefront-session/internal/api/middleware"
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// SessionHandler exposes identity resolution, login, logout, signup and
// profile updates for the calling device.
type SessionHandler struct {
	identity ports.IdentityService
	sessions ports.SessionService
}

func NewSessionHandler(identity ports.IdentityService, sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{identity: identity, sessions: sessions}
}

// Get handles GET /v1/session.
//
// @Summary      Resolve the device's identity
// @Description  With cached=true only the credential cache is read (provisional user). Otherwise the user is re-validated against the backend.
// @Tags         session
// @Produce      json
// @Param        cached  query     bool  false  "Read the credential cache only"
// @Success      200     {object}  sessionResponse
// @Failure      500     {object}  errorResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	device := middleware.DeviceID(c)

	var (
		id  domain.Identity
		err error
	)
	if c.QueryParam("cached") == "true" {
		id, err = h.identity.Hydrate(ctx, device)
	} else {
		id, err = h.identity.Resolve(ctx, device)
	}
	if err != nil {
		metrics.IdentityResolutionsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.IdentityResolutionsTotal.WithLabelValues(
		metrics.IdentityOutcome(id.Authenticated(), id.Provisional, id.Stale),
	).Inc()

	return c.JSON(http.StatusOK, newSessionResponse(id))
}

// Login handles POST /v1/session/login.
//
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.sessions.Login(c.Request().Context(), middleware.DeviceID(c), req.Email, req.Password)
	metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		User:            out.User,
		Redirect:        out.Redirect,
		ProfileComplete: out.ProfileComplete,
	})
}

// Logout handles POST /v1/session/logout. It always succeeds.
//
// @Summary      Log out
// @Tags         session
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /v1/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	device := middleware.DeviceID(c)

	out := h.sessions.Logout(ctx, device)
	metrics.LogoutsTotal.WithLabelValues(out.Role.String()).Inc()

	return c.JSON(http.StatusOK, logoutResponse{Redirect: out.Redirect})
}

// Signup handles POST /v1/session/signup. Only seller, affiliate and
// customer accounts can be registered.
//
// @Summary      Register an account
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration form"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/session/signup [post]
func (h *SessionHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ok, err := h.sessions.Signup(c.Request().Context(), middleware.DeviceID(c), ports.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.ParseRole(req.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, signupResponse{Success: ok})
}

// UpdateProfile handles PUT /v1/profile.
//
// @Summary      Update the signed-in user's profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Profile changes; omitted sections are left unchanged"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/profile [put]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.sessions.UpdateProfile(c.Request().Context(), middleware.DeviceID(c), req.toPort())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		User:            user,
		ProfileComplete: domain.IsProfileComplete(user),
	})
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "unverified"
	default:
		return "error"
	}
}
