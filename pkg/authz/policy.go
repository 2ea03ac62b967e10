// Package authz holds the role-based route authorization policy for the
// LocalPros webapp: the closed role set, the route classification rules,
// and the pure allow/deny resolver shared by every enforcement point.
//
// This package exists in pkg/ (not internal/) because the client-side guard
// (pkg/guard) and out-of-repo frontends evaluate the same policy types.
// Nothing in here performs I/O; the resolver is a pure function over
// (principal, classification) and is safe to call concurrently.
package authz

import "net/url"

// ── Roles ───────────────────────────────────────────────────

// Role is the single authorization attribute of a principal.
// Exactly one role per principal; there is no super-role — an admin is not
// implicitly a provider and vice versa.
type Role string

const (
	// RoleUser is a regular visitor with an account (can send enquiries).
	RoleUser Role = "user"
	// RoleProvider is a service provider managing a listing.
	RoleProvider Role = "provider"
	// RoleAdmin moderates the directory.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// ── Principal ───────────────────────────────────────────────

// Principal is the resolved actor for the current request or render:
// a session-bound identity plus the one role fetched from the profile store.
// It is materialized fresh per request and never cached across navigations.
type Principal struct {
	// Identity is the opaque session-bound identifier issued by the
	// identity provider. Unique per authenticated user.
	Identity string `json:"identity"`

	// Role is the principal's role. Never empty on a resolved Principal.
	Role Role `json:"role"`
}

// ── Classification ──────────────────────────────────────────

// Classification is the derived category of a request path.
// Every path classifies into exactly one of the three values.
type Classification string

const (
	ClassPublic   Classification = "public"
	ClassAdmin    Classification = "admin"
	ClassProvider Classification = "provider"
)

// RequiredRole returns the role a protected classification demands,
// or ("", false) for public.
func (c Classification) RequiredRole() (Role, bool) {
	switch c {
	case ClassAdmin:
		return RoleAdmin, true
	case ClassProvider:
		return RoleProvider, true
	}
	return "", false
}

// ── Redirect targets ────────────────────────────────────────

// Canonical redirect targets. The login page accepts a redirectTo query
// parameter so the originally requested path can resume after sign-in.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"

	AdminHomePath    = "/admin/dashboard"
	ProviderHomePath = "/provider/dashboard"
	PublicHomePath   = "/"
)

// LoginRedirect builds the login target carrying returnTo for post-login
// resumption. An empty returnTo yields the bare login path.
func LoginRedirect(returnTo string) string {
	if returnTo == "" {
		return LoginPath
	}
	return LoginPath + "?redirectTo=" + url.QueryEscape(returnTo)
}

// HomeFor returns the landing page appropriate for a role. Used by the
// server guard when an authenticated principal hits a page its role cannot
// use: each role gets a sensible destination instead of the generic
// unauthorized page. Unknown roles land on the public home.
func HomeFor(role Role) string {
	switch role {
	case RoleAdmin:
		return AdminHomePath
	case RoleProvider:
		return ProviderHomePath
	default:
		return PublicHomePath
	}
}

// ── Decision ────────────────────────────────────────────────

// Decision is the ephemeral outcome of one policy evaluation. It is never
// persisted; every check recomputes it.
type Decision struct {
	Allow bool

	// RedirectTarget is set only when Allow is false: the login page
	// (principal absent) or the unauthorized page (role mismatch).
	RedirectTarget string
}

// Allowed is the decision that forwards the request unmodified.
var Allowed = Decision{Allow: true}

// Resolve is the single policy function behind all three guards.
//
// principal is nil when no session exists or the profile lookup failed —
// the two are intentionally indistinguishable here (fail closed).
// returnTo is the originally requested path, carried into the login
// redirect so navigation resumes after sign-in.
//
// Rules, in order:
//   - public paths are always allowed, principal or not
//   - a protected path with no principal denies to login (+redirectTo)
//   - a protected path with the wrong role denies to unauthorized
//   - otherwise allow
func Resolve(principal *Principal, class Classification, returnTo string) Decision {
	required, protected := class.RequiredRole()
	if !protected {
		return Allowed
	}
	if principal == nil {
		return Decision{RedirectTarget: LoginRedirect(returnTo)}
	}
	if principal.Role != required {
		return Decision{RedirectTarget: UnauthorizedPath}
	}
	return Allowed
}
