// Package middleware provides shared middleware helpers for the LocalPros
// webapp.
//
// This package lives in pkg/ (not internal/) so that embedders composing
// their own handler chains can read the Principal the edge guard resolved.
package middleware

import (
	"context"

	"github.com/localpros/localpros/webapp/pkg/authz"
)

type contextKey string

const principalKey contextKey = "principal"

// SetPrincipal stores the resolved Principal in the context.
// Called by the edge guard after a successful authorization decision.
func SetPrincipal(ctx context.Context, p *authz.Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal retrieves the Principal from the context.
// Returns nil on public paths, where the edge guard performs no lookup.
//
// Handlers that need a guaranteed, freshly resolved principal should use
// the server guard instead of trusting this value alone.
func GetPrincipal(ctx context.Context) *authz.Principal {
	if v, ok := ctx.Value(principalKey).(*authz.Principal); ok {
		return v
	}
	return nil
}
