package authz_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localpros/localpros/webapp/pkg/authz"
)

func TestClassify_Default(t *testing.T) {
	table := authz.DefaultRouteTable()

	cases := []struct {
		path string
		want authz.Classification
	}{
		{"/admin", authz.ClassAdmin},
		{"/admin/dashboard", authz.ClassAdmin},
		{"/admin/vendors/abc", authz.ClassAdmin},
		{"/provider", authz.ClassProvider},
		{"/provider/listing", authz.ClassProvider},
		{"/", authz.ClassPublic},
		{"/services", authz.ClassPublic},
		{"/login", authz.ClassPublic},
		// Prefix match is per path segment, not per character.
		{"/administer", authz.ClassPublic},
		{"/providers", authz.ClassPublic},
		// An unmatched path is never accidentally protected.
		{"/totally/unknown", authz.ClassPublic},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, table.Classify(tc.path), "path %s", tc.path)
	}
}

func TestNewRouteTable_RejectsNestedPrefixes(t *testing.T) {
	_, err := authz.NewRouteTable([]authz.RouteRule{
		{Prefix: "/admin", Role: authz.RoleAdmin},
		{Prefix: "/admin/reports", Role: authz.RoleProvider},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disjoint")
}

func TestNewRouteTable_RejectsBadRules(t *testing.T) {
	_, err := authz.NewRouteTable([]authz.RouteRule{{Prefix: "admin", Role: authz.RoleAdmin}})
	assert.Error(t, err, "unrooted prefix")

	_, err = authz.NewRouteTable([]authz.RouteRule{{Prefix: "/admin", Role: authz.RoleUser}})
	assert.Error(t, err, "user has no protected namespace")

	_, err = authz.NewRouteTable([]authz.RouteRule{{Prefix: "/admin", Role: authz.Role("owner")}})
	assert.Error(t, err, "unknown role")
}

func TestLoadRouteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	doc := `routes:
  - prefix: /admin
    role: admin
  - prefix: /pro
    role: provider
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	table, err := authz.LoadRouteTable(path)
	require.NoError(t, err)
	assert.Equal(t, authz.ClassProvider, table.Classify("/pro/listing"))
	assert.Equal(t, authz.ClassAdmin, table.Classify("/admin"))
	assert.Equal(t, authz.ClassPublic, table.Classify("/provider"))
}

func TestLoadRouteTable_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes: [{prefix: /a, role: admin}, {prefix: /a/b, role: provider}]"), 0o600))

	_, err := authz.LoadRouteTable(path)
	assert.Error(t, err)
}
