package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/localpros/localpros/webapp/internal/auth"
	"github.com/localpros/localpros/webapp/pkg/authz"
	pkgmw "github.com/localpros/localpros/webapp/pkg/middleware"
)

// EdgeGuard is the HTTP middleware that enforces route authorization at the
// network boundary, before any page content is produced.
//
// Per request it classifies the path against the route table, resolves the
// principal (session cookie → profile role) only for protected paths, and
// applies the shared policy resolver. Denials short-circuit into a redirect;
// this layer never answers with a 500 — a broken profile lookup is a
// denial, not a server error.
type EdgeGuard struct {
	routes   *authz.RouteTable
	resolver *auth.Resolver
}

// NewEdgeGuard creates the edge guard middleware.
func NewEdgeGuard(routes *authz.RouteTable, resolver *auth.Resolver) *EdgeGuard {
	return &EdgeGuard{routes: routes, resolver: resolver}
}

// Handler returns the middleware. Evaluation order per request:
//
//  1. Classify the path. Public → pass through untouched, no identity
//     lookup (unauthenticated traffic never pays the profile-lookup cost).
//  2. Resolve the principal, fail closed.
//  3. Apply the policy. Deny → redirect, allow → forward with the
//     Principal in context.
//
// A session refresh produced while reading the credential is written on
// every outcome, allowed or denied — the re-issued cookie must never be
// dropped just because the navigation bounced.
func (g *EdgeGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := g.routes.Classify(r.URL.Path)
		if class == authz.ClassPublic {
			next.ServeHTTP(w, r)
			return
		}

		principal, refresh := g.resolver.Resolve(r)
		if refresh != nil {
			http.SetCookie(w, refresh)
		}

		decision := authz.Resolve(principal, class, r.URL.RequestURI())
		if !decision.Allow {
			log.Debug().
				Str("path", r.URL.Path).
				Str("class", string(class)).
				Str("redirect", decision.RedirectTarget).
				Bool("principal_present", principal != nil).
				Msg("Edge guard denied request")
			http.Redirect(w, r, decision.RedirectTarget, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(pkgmw.SetPrincipal(r.Context(), principal)))
	})
}
