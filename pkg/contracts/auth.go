// Package contracts — the external collaborator boundary of the
// authorization layer.
//
// The guards never reach for ambient globals: the session carrier, the
// profile-role lookup, and (for login) the credential check are injected
// through these interfaces, so every guard is testable with substitutable
// fakes and the hosted identity/profile backend stays swappable.
package contracts

import (
	"context"
	"errors"
	"net/http"

	"github.com/localpros/localpros/webapp/pkg/authz"
)

// ── Session carrier ─────────────────────────────────────────

// ErrNoSession is returned by SessionReader when the request carries no
// usable session credential. Expired, malformed, and absent credentials are
// all reported this way — the guards treat them identically.
var ErrNoSession = errors.New("no session")

// SessionReader reads the opaque session credential from a request and
// returns the identity it is bound to.
//
// refresh, when non-nil, is a re-issued credential cookie that must
// accompany the response — on the allowed path and the denied path alike.
// This layer never decides when to refresh; it only forwards what the
// carrier produced while being read.
type SessionReader interface {
	Read(r *http.Request) (identity string, refresh *http.Cookie, err error)
}

// ── Profile store ───────────────────────────────────────────

// ErrProfileNotFound is returned by RoleLookup when no profile record
// exists for an identity.
var ErrProfileNotFound = errors.New("profile not found")

// RoleLookup fetches the one profile attribute that participates in
// authorization decisions. Any error — missing record, timeout, network
// fault — must be treated by callers as principal-absent (fail closed);
// there is no retry here.
type RoleLookup interface {
	FetchRole(ctx context.Context, identity string) (authz.Role, error)
}

// RoleLookupFunc adapts a function to the RoleLookup interface.
type RoleLookupFunc func(ctx context.Context, identity string) (authz.Role, error)

func (f RoleLookupFunc) FetchRole(ctx context.Context, identity string) (authz.Role, error) {
	return f(ctx, identity)
}

// ── Credential verification ─────────────────────────────────

// ErrInvalidCredentials is returned by CredentialVerifier for any failed
// login attempt. Deliberately carries no detail.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks a login attempt and returns the identity to
// bind the new session to. Password hashing, OAuth, and MFA all live behind
// this boundary; the webapp only mints the session cookie afterwards.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (identity string, err error)
}
