package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localpros/localpros/webapp/pkg/authz"
)

func TestResolve_Matrix(t *testing.T) {
	roles := []authz.Role{authz.RoleUser, authz.RoleProvider, authz.RoleAdmin}

	// Public paths allow everyone, principal or not.
	assert.True(t, authz.Resolve(nil, authz.ClassPublic, "/services").Allow)
	for _, role := range roles {
		p := &authz.Principal{Identity: "id-1", Role: role}
		assert.True(t, authz.Resolve(p, authz.ClassPublic, "/services").Allow, "role %s", role)
	}

	// Protected namespaces are exact-match-per-namespace: only the
	// namespace's own role is allowed. No super-role.
	cases := []struct {
		class authz.Classification
		role  authz.Role
		allow bool
	}{
		{authz.ClassAdmin, authz.RoleAdmin, true},
		{authz.ClassAdmin, authz.RoleProvider, false},
		{authz.ClassAdmin, authz.RoleUser, false},
		{authz.ClassProvider, authz.RoleProvider, true},
		{authz.ClassProvider, authz.RoleAdmin, false},
		{authz.ClassProvider, authz.RoleUser, false},
	}
	for _, tc := range cases {
		p := &authz.Principal{Identity: "id-1", Role: tc.role}
		d := authz.Resolve(p, tc.class, "/x")
		assert.Equal(t, tc.allow, d.Allow, "class=%s role=%s", tc.class, tc.role)
		if !tc.allow {
			// Role mismatch always goes to the generic unauthorized
			// page, never to login.
			assert.Equal(t, authz.UnauthorizedPath, d.RedirectTarget)
		}
	}
}

func TestResolve_AbsentPrincipalGoesToLogin(t *testing.T) {
	for _, class := range []authz.Classification{authz.ClassAdmin, authz.ClassProvider} {
		d := authz.Resolve(nil, class, "/admin/dashboard")
		require.False(t, d.Allow)
		assert.Equal(t, "/login?redirectTo=%2Fadmin%2Fdashboard", d.RedirectTarget,
			"absent principal must deny to login, not unauthorized (class=%s)", class)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	p := &authz.Principal{Identity: "id-1", Role: authz.RoleProvider}
	first := authz.Resolve(p, authz.ClassAdmin, "/admin")
	second := authz.Resolve(p, authz.ClassAdmin, "/admin")
	assert.Equal(t, first, second)
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/login", authz.LoginRedirect(""))
	assert.Equal(t, "/login?redirectTo=%2Fprovider%2Fenquiries%3Fpage%3D2",
		authz.LoginRedirect("/provider/enquiries?page=2"))
}

func TestHomeFor(t *testing.T) {
	assert.Equal(t, authz.AdminHomePath, authz.HomeFor(authz.RoleAdmin))
	assert.Equal(t, authz.ProviderHomePath, authz.HomeFor(authz.RoleProvider))
	assert.Equal(t, authz.PublicHomePath, authz.HomeFor(authz.RoleUser))
	assert.Equal(t, authz.PublicHomePath, authz.HomeFor(authz.Role("unknown")))
}
