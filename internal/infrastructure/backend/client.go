// Package backend is the HTTP client for the storefront REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// Error is a non-2xx answer from the backend. It unwraps to one of the
// domain sentinels so callers can branch with errors.Is.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend %d: %v", e.Status, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the backend's human-readable explanation, if any.
func (e *Error) UserMessage() string { return e.Message }

// Client talks to the storefront backend. It implements ports.AuthBackend,
// ports.CartBackend and ports.AffiliateBackend.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient returns a Client rooted at baseURL, e.g. http://localhost:5000/api.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// statusMapper lets an endpoint override how an error status is classified.
type statusMapper func(status int) error

func defaultStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusUnprocessableEntity:
		// 422 is what the backend's JWT layer answers for a malformed token.
		return domain.ErrUnauthorized
	case status >= 500:
		return domain.ErrBackendUnavailable
	default:
		return domain.ErrBackendRejected
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any, mapStatus statusMapper) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return &Error{Err: fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode >= 300 {
		if mapStatus == nil {
			mapStatus = defaultStatus
		}
		return &Error{
			Status:  resp.StatusCode,
			Message: readMessage(resp.Body),
			Err:     mapStatus(resp.StatusCode),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &Error{Status: resp.StatusCode, Err: fmt.Errorf("%w: decode %s: %v", domain.ErrBackendRejected, path, err)}
	}
	return nil
}

// readMessage pulls the explanation out of an error body. The backend uses
// "message"; its JWT layer uses "msg".
func readMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Msg != "":
		return body.Msg
	default:
		return body.Error
	}
}

// flexID accepts ids the backend sends either as numbers or as strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}
