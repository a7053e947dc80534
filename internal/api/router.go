package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/afripulse/storefront-session/internal/api/handler"
	"github.com/afripulse/storefront-session/internal/api/middleware"
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// Dependencies are the services the HTTP layer fronts.
type Dependencies struct {
	Identity  ports.IdentityService
	Sessions  ports.SessionService
	Cart      ports.CartService
	Affiliate ports.AffiliateService
	Notices   ports.NoticeStore
	Guard     ports.RouteGuard
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.Pinger
}

// Options configure cross-cutting HTTP behaviour.
type Options struct {
	DeviceSecret string
	// SecureCookies marks the device cookie HTTPS-only.
	SecureCookies bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Ops (no device required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Device-scoped API ---
	v1 := e.Group("/v1", middleware.Device(middleware.DeviceOptions{
		Secret: opts.DeviceSecret,
		Secure: opts.SecureCookies,
	}))

	sessionHandler := handler.NewSessionHandler(deps.Identity, deps.Sessions)
	v1.GET("/session", sessionHandler.Get)
	v1.POST("/session/login", sessionHandler.Login)
	v1.POST("/session/logout", sessionHandler.Logout)
	v1.POST("/session/signup", sessionHandler.Signup)
	v1.PUT("/profile", sessionHandler.UpdateProfile, middleware.Guard(deps.Identity, deps.Guard,
		domain.RoleAdmin, domain.RoleSeller, domain.RoleAffiliate, domain.RoleCustomer))

	routeHandler := handler.NewRouteHandler(deps.Identity, deps.Guard)
	v1.GET("/route", routeHandler.Decide)

	cartHandler := handler.NewCartHandler(deps.Identity, deps.Cart)
	v1.GET("/cart", cartHandler.Get)
	v1.DELETE("/cart", cartHandler.Clear)
	v1.POST("/cart/items", cartHandler.AddItem)
	v1.PATCH("/cart/items/:product_id", cartHandler.UpdateQuantity)
	v1.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)

	affiliateHandler := handler.NewAffiliateHandler(deps.Identity, deps.Affiliate)
	v1.POST("/affiliate/track", affiliateHandler.Track)

	noticeHandler := handler.NewNoticeHandler(deps.Notices)
	v1.GET("/notices", noticeHandler.Drain)

	return e
}
