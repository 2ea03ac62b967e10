// Package guard provides the server-side render guard: role enforcement
// callable from inside page and action handlers, independent of whether the
// edge guard already ran (defense in depth).
package guard

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/localpros/localpros/webapp/internal/auth"
	"github.com/localpros/localpros/webapp/pkg/authz"
)

// abortRender is the panic sentinel RequireRole throws after writing a
// redirect. Recover swallows exactly this type; anything else re-panics.
type abortRender struct{}

// ServerGuard resolves the current principal within a handler and either
// returns it or redirects and aborts the handler.
type ServerGuard struct {
	resolver *auth.Resolver
}

// New creates a ServerGuard over the shared principal resolver.
func New(resolver *auth.Resolver) *ServerGuard {
	return &ServerGuard{resolver: resolver}
}

// Option adjusts a single RequireRole call.
type Option func(*requireOpts)

type requireOpts struct {
	fallback string
}

// WithFallback overrides the login redirect used when no principal can be
// resolved.
func WithFallback(target string) Option {
	return func(o *requireOpts) { o.fallback = target }
}

// RequireRole resolves the principal and returns it when its role is in
// allowed. Otherwise it writes a redirect and aborts the calling handler by
// panicking with a sentinel that Recover swallows — the handler body after
// a failed RequireRole never executes, so it cannot leak protected content.
//
// Redirect targets differ from the edge guard on purpose: an absent
// principal goes to login (or the WithFallback target), but a present
// principal with the wrong role goes to the landing page for its actual
// role rather than the generic unauthorized page. Pages calling this guard
// are role-aware and can offer a sensible destination.
func (g *ServerGuard) RequireRole(w http.ResponseWriter, r *http.Request, allowed []authz.Role, opts ...Option) *authz.Principal {
	var o requireOpts
	for _, opt := range opts {
		opt(&o)
	}

	principal, _ := g.resolver.Resolve(r)
	if principal == nil {
		target := o.fallback
		if target == "" {
			target = authz.LoginRedirect(r.URL.RequestURI())
		}
		g.abort(w, r, target)
	}

	for _, role := range allowed {
		if principal.Role == role {
			return principal
		}
	}

	log.Debug().
		Str("path", r.URL.Path).
		Str("role", string(principal.Role)).
		Msg("Server guard rerouting mismatched role to its home")
	g.abort(w, r, authz.HomeFor(principal.Role))
	return nil // unreachable
}

// HasRole reports whether the current principal holds role. Never
// redirects; a missing principal is simply false.
func (g *ServerGuard) HasRole(r *http.Request, role authz.Role) bool {
	principal, _ := g.resolver.Resolve(r)
	return principal != nil && principal.Role == role
}

// CurrentPrincipal returns the resolved principal or nil, without forcing
// a redirect. For code paths that branch on identity instead of gating.
func (g *ServerGuard) CurrentPrincipal(r *http.Request) *authz.Principal {
	principal, _ := g.resolver.Resolve(r)
	return principal
}

func (g *ServerGuard) abort(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
	panic(abortRender{})
}

// Recover returns middleware that catches the RequireRole abort. Install it
// inside the router's recoverer so real panics still surface. By the time
// the sentinel reaches here the redirect is already written; there is
// nothing left to do.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if _, ok := rec.(abortRender); ok {
					return
				}
				panic(rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
