package guard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localpros/localpros/webapp/pkg/authz"
	"github.com/localpros/localpros/webapp/pkg/guard"
)

// blockingSource serves one principal per call, but only after release is
// signalled, so tests control when the async check resolves.
type blockingSource struct {
	release   chan struct{}
	principal *authz.Principal
	err       error
	calls     atomic.Int32
}

func newBlockingSource(p *authz.Principal, err error) *blockingSource {
	return &blockingSource{release: make(chan struct{}), principal: p, err: err}
}

func (s *blockingSource) Current(ctx context.Context) (*authz.Principal, error) {
	s.calls.Add(1)
	<-s.release
	return s.principal, s.err
}

// recordingNav records navigations.
type recordingNav struct {
	mu      chan string
	targets []string
}

func newRecordingNav() *recordingNav { return &recordingNav{mu: make(chan string, 8)} }

func (n *recordingNav) Navigate(target string) { n.mu <- target }

func (n *recordingNav) next(t *testing.T) string {
	t.Helper()
	select {
	case target := <-n.mu:
		return target
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for navigation")
		return ""
	}
}

func (n *recordingNav) none(t *testing.T) {
	t.Helper()
	select {
	case target := <-n.mu:
		t.Fatalf("unexpected navigation to %q", target)
	case <-time.After(50 * time.Millisecond):
	}
}

// waitState blocks until the guard reports a transition.
func waitState(t *testing.T, ch <-chan guard.State) guard.State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state transition")
		return guard.StateChecking
	}
}

func newGuard(source guard.PrincipalSource, nav guard.Navigator, params guard.Params) (*guard.ClientGuard, chan guard.State) {
	transitions := make(chan guard.State, 8)
	g := guard.NewClient(source, nav, params, guard.OnChange(func(s guard.State) {
		transitions <- s
	}))
	return g, transitions
}

func providerParams() guard.Params {
	return guard.Params{AllowedRoles: []authz.Role{authz.RoleProvider}}
}

func TestClientGuard_Authorized(t *testing.T) {
	source := newBlockingSource(&authz.Principal{Identity: "user-1", Role: authz.RoleProvider}, nil)
	nav := newRecordingNav()
	g, transitions := newGuard(source, nav, providerParams())

	g.Mount(context.Background())
	if g.State() != guard.StateChecking {
		t.Errorf("state before resolution = %v, want checking", g.State())
	}

	// Nothing renders while checking.
	g.Render(func(*authz.Principal) { t.Error("children rendered during checking") })

	close(source.release)
	if s := waitState(t, transitions); s != guard.StateAuthorized {
		t.Fatalf("state = %v, want authorized", s)
	}

	var rendered *authz.Principal
	g.Render(func(p *authz.Principal) { rendered = p })
	if rendered == nil || rendered.Identity != "user-1" {
		t.Errorf("Render() principal = %+v", rendered)
	}
	nav.none(t)
}

func TestClientGuard_AbsentNavigatesToLogin(t *testing.T) {
	source := newBlockingSource(nil, nil)
	nav := newRecordingNav()
	g, transitions := newGuard(source, nav, providerParams())

	g.Mount(context.Background())
	close(source.release)

	if s := waitState(t, transitions); s != guard.StateRedirecting {
		t.Fatalf("state = %v, want redirecting", s)
	}
	if target := nav.next(t); target != authz.LoginPath {
		t.Errorf("Navigate(%q), want %q", target, authz.LoginPath)
	}
	g.Render(func(*authz.Principal) { t.Error("children rendered while redirecting") })
}

func TestClientGuard_AbsentHonorsRedirectTo(t *testing.T) {
	source := newBlockingSource(nil, nil)
	nav := newRecordingNav()
	params := providerParams()
	params.RedirectTo = "/provider/signin"
	g, _ := newGuard(source, nav, params)

	g.Mount(context.Background())
	close(source.release)

	if target := nav.next(t); target != "/provider/signin" {
		t.Errorf("Navigate(%q), want /provider/signin", target)
	}
}

func TestClientGuard_MismatchNavigatesToUnauthorized(t *testing.T) {
	source := newBlockingSource(&authz.Principal{Identity: "user-1", Role: authz.RoleUser}, nil)
	nav := newRecordingNav()
	g, _ := newGuard(source, nav, providerParams())

	g.Mount(context.Background())
	close(source.release)

	if target := nav.next(t); target != authz.UnauthorizedPath {
		t.Errorf("Navigate(%q), want %q", target, authz.UnauthorizedPath)
	}
}

func TestClientGuard_SourceErrorFailsClosed(t *testing.T) {
	source := newBlockingSource(nil, errors.New("network down"))
	nav := newRecordingNav()
	g, _ := newGuard(source, nav, providerParams())

	g.Mount(context.Background())
	close(source.release)

	if target := nav.next(t); target != authz.LoginPath {
		t.Errorf("Navigate(%q), want login (fail closed)", target)
	}
}

// Scenario: the lookup resolves after unmount. No state mutation, no late
// redirect.
func TestClientGuard_StaleResultAfterUnmountDiscarded(t *testing.T) {
	source := newBlockingSource(nil, nil)
	nav := newRecordingNav()
	g, transitions := newGuard(source, nav, providerParams())

	g.Mount(context.Background())
	g.Unmount()
	close(source.release)

	nav.none(t)
	select {
	case s := <-transitions:
		t.Fatalf("state transition %v after unmount", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClientGuard_SetParamsIdenticalNoRecheck(t *testing.T) {
	source := newBlockingSource(&authz.Principal{Identity: "user-1", Role: authz.RoleProvider}, nil)
	close(source.release)
	nav := newRecordingNav()
	g, transitions := newGuard(source, nav, providerParams())

	g.Mount(context.Background())
	waitState(t, transitions)

	g.SetParams(context.Background(), providerParams())
	time.Sleep(50 * time.Millisecond)
	if n := source.calls.Load(); n != 1 {
		t.Errorf("source calls after identical SetParams = %d, want 1", n)
	}
}

func TestClientGuard_SetParamsChangedRechecks(t *testing.T) {
	source := newBlockingSource(&authz.Principal{Identity: "user-1", Role: authz.RoleProvider}, nil)
	close(source.release)
	nav := newRecordingNav()
	g, transitions := newGuard(source, nav, providerParams())

	g.Mount(context.Background())
	if s := waitState(t, transitions); s != guard.StateAuthorized {
		t.Fatalf("state = %v, want authorized", s)
	}

	// Narrow the allowed roles: same principal is now unauthorized.
	g.SetParams(context.Background(), guard.Params{AllowedRoles: []authz.Role{authz.RoleAdmin}})
	if s := waitState(t, transitions); s != guard.StateRedirecting {
		t.Fatalf("state after param change = %v, want redirecting", s)
	}
	if target := nav.next(t); target != authz.UnauthorizedPath {
		t.Errorf("Navigate(%q), want %q", target, authz.UnauthorizedPath)
	}
	if n := source.calls.Load(); n != 2 {
		t.Errorf("source calls = %d, want 2", n)
	}
}

// ─── HTTPSource ──────────────────────────────────────────────

func TestHTTPSource(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("path = %q, want /api/auth/me", r.URL.Path)
		}
		code := int(status.Load())
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"identity":"user-1","role":"admin"}`))
	}))
	defer srv.Close()

	source := &guard.HTTPSource{BaseURL: srv.URL}

	p, err := source.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if p == nil || p.Role != authz.RoleAdmin {
		t.Errorf("Current() = %+v", p)
	}

	status.Store(http.StatusUnauthorized)
	p, err = source.Current(context.Background())
	if err != nil || p != nil {
		t.Errorf("Current() on 401 = (%+v, %v), want (nil, nil)", p, err)
	}

	status.Store(http.StatusInternalServerError)
	if _, err := source.Current(context.Background()); err == nil {
		t.Error("Current() on 500 should error")
	}
}
