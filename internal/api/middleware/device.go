package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// DeviceCookie carries the signed device token for browsers.
	DeviceCookie = "sf_device"
	// DeviceHeader carries the signed device token for non-browser clients.
	DeviceHeader = "X-Device-Token"

	deviceKey      = "device"
	deviceTokenTTL = 365 * 24 * time.Hour
	deviceIssuer   = "storefront-session"
)

// DeviceOptions configures the Device middleware.
type DeviceOptions struct {
	Secret string
	// Secure marks the cookie HTTPS-only.
	Secure bool
	Now    func() time.Time
}

// Device identifies the calling browser. A valid device token is read from
// the header or cookie; otherwise a new device id is minted and returned in
// both. The id is available to handlers through DeviceID.
func Device(opts DeviceOptions) echo.MiddlewareFunc {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	key := []byte(opts.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(DeviceHeader)
			if raw == "" {
				if cookie, err := c.Cookie(DeviceCookie); err == nil {
					raw = cookie.Value
				}
			}

			device, ok := parseDeviceToken(raw, key, opts.Now())
			if !ok {
				device = uuid.NewString()
				signed, err := signDeviceToken(device, key, opts.Now())
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "could not issue device token").SetInternal(err)
				}
				c.SetCookie(&http.Cookie{
					Name:     DeviceCookie,
					Value:    signed,
					Path:     "/",
					MaxAge:   int(deviceTokenTTL.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				c.Response().Header().Set(DeviceHeader, signed)
			}

			c.Set(deviceKey, device)
			return next(c)
		}
	}
}

// DeviceID returns the id set by the Device middleware.
func DeviceID(c echo.Context) string {
	id, _ := c.Get(deviceKey).(string)
	return id
}

func parseDeviceToken(raw string, key []byte, now time.Time) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	claims := jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return key, nil
	}, jwt.WithIssuer(deviceIssuer), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !tkn.Valid {
		return "", false
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", false
	}
	return claims.Subject, true
}

func signDeviceToken(device string, key []byte, now time.Time) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    deviceIssuer,
		Subject:   device,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(deviceTokenTTL)),
	}).SignedString(key)
}
