// Package auth resolves the acting Principal for a request: it reads the
// session cookie, verifies it, and fetches the principal's role from the
// profile store. All three guards (edge, server, client-facing endpoint)
// resolve principals through this package, so the fail-closed rules live
// in exactly one place.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/localpros/localpros/webapp/pkg/contracts"
)

// SessionCookieName is the cookie carrying the session credential.
const SessionCookieName = "localpros_session"

// sessionClaims is the signed payload of the session cookie.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// CookieCodec issues and verifies HS256-signed session cookies.
//
// The credential is stateless: the identity lives in the signed subject
// claim, so reading a session costs no store round trip. Once a cookie has
// passed half of its lifetime, Read re-issues it — the refresh the guards
// must forward with the response whether the request is allowed or denied.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
	secure bool

	// now is stubbed in tests.
	now func() time.Time
}

// NewCookieCodec creates a codec. ttl must be positive; secure controls the
// cookie's Secure flag (off for local development).
func NewCookieCodec(secret string, ttl time.Duration, secure bool) (*CookieCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	return &CookieCodec{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}, nil
}

// Issue mints a session cookie bound to identity.
func (c *CookieCodec) Issue(identity string) (*http.Cookie, error) {
	now := c.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return c.cookie(signed, c.ttl), nil
}

// Clear returns a cookie that removes the session credential.
func (c *CookieCodec) Clear() *http.Cookie {
	cookie := c.cookie("", 0)
	cookie.MaxAge = -1
	return cookie
}

// Read implements contracts.SessionReader.
//
// A missing, malformed, expired, or tampered cookie is reported as
// contracts.ErrNoSession — callers cannot (and must not) distinguish the
// cases. When the token is past half its lifetime a fresh cookie for the
// same identity is returned alongside the identity.
func (c *CookieCodec) Read(r *http.Request) (string, *http.Cookie, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", nil, contracts.ErrNoSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", nil, contracts.ErrNoSession
	}

	var refresh *http.Cookie
	if c.pastHalfLife(claims) {
		// Best effort: a refresh that fails to sign is dropped, the
		// current credential is still good.
		refresh, _ = c.Issue(claims.Subject)
	}
	return claims.Subject, refresh, nil
}

func (c *CookieCodec) pastHalfLife(claims *sessionClaims) bool {
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return false
	}
	half := claims.ExpiresAt.Sub(claims.IssuedAt.Time) / 2
	return c.now().After(claims.IssuedAt.Add(half))
}

func (c *CookieCodec) cookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

var _ contracts.SessionReader = (*CookieCodec)(nil)
