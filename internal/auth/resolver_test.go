package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/localpros/localpros/webapp/internal/auth"
	"github.com/localpros/localpros/webapp/pkg/authz"
	"github.com/localpros/localpros/webapp/pkg/contracts"
)

type stubSessions struct {
	identity string
	refresh  *http.Cookie
	err      error
}

func (s stubSessions) Read(*http.Request) (string, *http.Cookie, error) {
	return s.identity, s.refresh, s.err
}

func roleLookup(role authz.Role, err error) contracts.RoleLookupFunc {
	return func(context.Context, string) (authz.Role, error) { return role, err }
}

func TestResolver_Resolves(t *testing.T) {
	rs := auth.NewResolver(
		stubSessions{identity: "user-1"},
		roleLookup(authz.RoleProvider, nil),
	)

	p, _ := rs.Resolve(httptest.NewRequest("GET", "/provider/listing", nil))
	if p == nil {
		t.Fatal("Resolve() = nil, want principal")
	}
	if p.Identity != "user-1" || p.Role != authz.RoleProvider {
		t.Errorf("Resolve() = %+v", p)
	}
}

func TestResolver_NoSession(t *testing.T) {
	rs := auth.NewResolver(
		stubSessions{err: contracts.ErrNoSession},
		roleLookup(authz.RoleAdmin, nil),
	)

	if p, _ := rs.Resolve(httptest.NewRequest("GET", "/admin", nil)); p != nil {
		t.Errorf("Resolve() = %+v, want nil", p)
	}
}

// A lookup failure must be indistinguishable from an absent principal.
func TestResolver_LookupFailureFailsClosed(t *testing.T) {
	cases := map[string]error{
		"store error":    errors.New("connection refused"),
		"missing record": contracts.ErrProfileNotFound,
	}
	for name, lookupErr := range cases {
		t.Run(name, func(t *testing.T) {
			rs := auth.NewResolver(
				stubSessions{identity: "user-1"},
				roleLookup("", lookupErr),
			)
			if p, _ := rs.Resolve(httptest.NewRequest("GET", "/admin", nil)); p != nil {
				t.Errorf("Resolve() = %+v, want nil (fail closed)", p)
			}
		})
	}
}

func TestResolver_UnknownRoleFailsClosed(t *testing.T) {
	rs := auth.NewResolver(
		stubSessions{identity: "user-1"},
		roleLookup(authz.Role("superuser"), nil),
	)
	if p, _ := rs.Resolve(httptest.NewRequest("GET", "/admin", nil)); p != nil {
		t.Errorf("Resolve() = %+v, want nil", p)
	}
}

// The refresh cookie must surface even when the principal comes back nil,
// so the edge guard can forward the re-issued credential with a denial.
func TestResolver_RefreshSurvivesDenial(t *testing.T) {
	refresh := &http.Cookie{Name: auth.SessionCookieName, Value: "fresh", Expires: time.Now().Add(time.Hour)}
	rs := auth.NewResolver(
		stubSessions{identity: "user-1", refresh: refresh},
		roleLookup("", errors.New("profile store down")),
	)

	p, got := rs.Resolve(httptest.NewRequest("GET", "/admin", nil))
	if p != nil {
		t.Fatalf("Resolve() = %+v, want nil", p)
	}
	if got != refresh {
		t.Error("refresh cookie lost on the denied path")
	}
}
