// Package guard provides the client-side authorization guard: a rendering
// wrapper that re-validates the principal after mount and either lets its
// children render or navigates away.
//
// It lives in pkg/ because it runs in client code (SPA shells, embedded
// frontends) that imports the webapp module but not its internals. It is a
// safety net for fully client-routed transitions the edge guard never
// sees — never the sole protection for a sensitive view, since it runs
// after the server has already produced whatever shell it produced.
package guard

import (
	"context"
	"slices"
	"sync"

	"github.com/localpros/localpros/webapp/pkg/authz"
)

// State is the guard's lifecycle state.
type State int

const (
	// StateChecking means the async principal check is in flight. Views
	// render a neutral loading indicator and assume nothing.
	StateChecking State = iota
	// StateAuthorized means children may render.
	StateAuthorized
	// StateRedirecting means the guard navigated away; render nothing.
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthorized:
		return "authorized"
	case StateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// PrincipalSource is the client-reachable form of the session + profile
// lookup. A nil principal with nil error means "not signed in"; an error is
// treated exactly the same (fail closed).
type PrincipalSource interface {
	Current(ctx context.Context) (*authz.Principal, error)
}

// PrincipalSourceFunc adapts a function to PrincipalSource.
type PrincipalSourceFunc func(ctx context.Context) (*authz.Principal, error)

func (f PrincipalSourceFunc) Current(ctx context.Context) (*authz.Principal, error) {
	return f(ctx)
}

// Navigator performs the client-side navigation on a denial.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// Params is the authorization context of one guarded view. Changing either
// field starts a fresh check; re-setting identical params does not.
type Params struct {
	AllowedRoles []authz.Role

	// RedirectTo overrides the login destination used when no principal
	// exists. Role mismatches always go to the unauthorized page.
	RedirectTo string
}

func (p Params) equal(o Params) bool {
	return p.RedirectTo == o.RedirectTo && slices.Equal(p.AllowedRoles, o.AllowedRoles)
}

// ClientGuard re-validates the principal asynchronously and gates
// rendering on the outcome.
//
// Concurrency: one check is in flight per mount or param change; a result
// arriving after Unmount (or after the params changed underneath it) is
// discarded via a generation counter — stale checks never mutate state or
// fire a late navigation.
type ClientGuard struct {
	source PrincipalSource
	nav    Navigator

	mu        sync.Mutex
	params    Params
	state     State
	principal *authz.Principal
	mounted   bool
	gen       uint64
	onChange  func(State)
}

// ClientOption configures a ClientGuard.
type ClientOption func(*ClientGuard)

// OnChange registers a callback invoked (outside the guard's lock) after
// every state transition. Used by views to re-render.
func OnChange(fn func(State)) ClientOption {
	return func(g *ClientGuard) { g.onChange = fn }
}

// NewClient creates a client guard for one view.
func NewClient(source PrincipalSource, nav Navigator, params Params, opts ...ClientOption) *ClientGuard {
	g := &ClientGuard{
		source: source,
		nav:    nav,
		params: params,
		state:  StateChecking,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mount starts the asynchronous check. Call once when the view appears;
// a remount after navigation starts a fresh check.
func (g *ClientGuard) Mount(ctx context.Context) {
	g.mu.Lock()
	g.mounted = true
	g.state = StateChecking
	g.principal = nil
	g.gen++
	gen, params := g.gen, g.params
	g.mu.Unlock()

	go g.check(ctx, gen, params)
}

// Unmount tears the guard down. Any in-flight check result is discarded.
func (g *ClientGuard) Unmount() {
	g.mu.Lock()
	g.mounted = false
	g.gen++
	g.mu.Unlock()
}

// SetParams replaces the authorization context. Identical params are a
// no-op; changed params re-run the check once.
func (g *ClientGuard) SetParams(ctx context.Context, params Params) {
	g.mu.Lock()
	if g.params.equal(params) {
		g.mu.Unlock()
		return
	}
	g.params = params
	if !g.mounted {
		g.mu.Unlock()
		return
	}
	g.state = StateChecking
	g.principal = nil
	g.gen++
	gen := g.gen
	g.mu.Unlock()

	go g.check(ctx, gen, params)
}

// State returns the current state.
func (g *ClientGuard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Principal returns the authorized principal, or nil unless the guard is
// in StateAuthorized.
func (g *ClientGuard) Principal() *authz.Principal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.principal
}

// Render invokes children with the principal iff the guard is authorized.
// In checking and redirecting states nothing renders.
func (g *ClientGuard) Render(children func(p *authz.Principal)) {
	g.mu.Lock()
	state, principal := g.state, g.principal
	g.mu.Unlock()

	if state == StateAuthorized {
		children(principal)
	}
}

func (g *ClientGuard) check(ctx context.Context, gen uint64, params Params) {
	principal, err := g.source.Current(ctx)
	if err != nil {
		// Indistinguishable from "not signed in".
		principal = nil
	}

	next := StateAuthorized
	target := ""
	switch {
	case principal == nil:
		next = StateRedirecting
		target = params.RedirectTo
		if target == "" {
			target = authz.LoginPath
		}
	case !slices.Contains(params.AllowedRoles, principal.Role):
		next = StateRedirecting
		target = authz.UnauthorizedPath
	}

	g.mu.Lock()
	if !g.mounted || gen != g.gen {
		// Stale: the view unmounted or the params moved on.
		g.mu.Unlock()
		return
	}
	g.state = next
	if next == StateAuthorized {
		g.principal = principal
	}
	onChange := g.onChange
	g.mu.Unlock()

	if next == StateRedirecting {
		g.nav.Navigate(target)
	}
	if onChange != nil {
		onChange(next)
	}
}
