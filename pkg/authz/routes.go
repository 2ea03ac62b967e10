package authz

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ── Route table ─────────────────────────────────────────────

// RouteRule maps one path prefix to the role required under it.
type RouteRule struct {
	Prefix string `yaml:"prefix"`
	Role   Role   `yaml:"role"`
}

// RouteTable classifies request paths by fixed prefix. Protected behavior
// is opt-in per prefix: any path matching no rule classifies public, so a
// misconfigured table can never leave a path blocked by accident.
//
// The table is data, not logic — it can be loaded from YAML and extended
// without touching the guards.
type RouteTable struct {
	rules []RouteRule
}

// DefaultRouteTable returns the built-in table: /admin requires admin,
// /provider requires provider, everything else is public.
func DefaultRouteTable() *RouteTable {
	t, err := NewRouteTable([]RouteRule{
		{Prefix: "/admin", Role: RoleAdmin},
		{Prefix: "/provider", Role: RoleProvider},
	})
	if err != nil {
		// The built-in rules are statically valid.
		panic(err)
	}
	return t
}

// NewRouteTable validates and builds a route table.
//
// Validation enforces the namespace invariants: prefixes are non-empty,
// rooted, carry a valid role, and are pairwise disjoint — no protected
// prefix may contain another, so every path classifies into exactly one
// namespace.
func NewRouteTable(rules []RouteRule) (*RouteTable, error) {
	cleaned := make([]RouteRule, 0, len(rules))
	for _, rule := range rules {
		prefix := strings.TrimSuffix(rule.Prefix, "/")
		if prefix == "" || !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("route rule prefix %q: must start with /", rule.Prefix)
		}
		if rule.Role != RoleAdmin && rule.Role != RoleProvider {
			return nil, fmt.Errorf("route rule %q: role %q has no protected namespace", rule.Prefix, rule.Role)
		}
		cleaned = append(cleaned, RouteRule{Prefix: prefix, Role: rule.Role})
	}
	for i, a := range cleaned {
		for _, b := range cleaned[i+1:] {
			if prefixContains(a.Prefix, b.Prefix) || prefixContains(b.Prefix, a.Prefix) {
				return nil, fmt.Errorf("route rules %q and %q overlap: protected namespaces must be disjoint", a.Prefix, b.Prefix)
			}
		}
	}
	return &RouteTable{rules: cleaned}, nil
}

// LoadRouteTable reads a YAML route table:
//
//	routes:
//	  - prefix: /admin
//	    role: admin
//	  - prefix: /provider
//	    role: provider
func LoadRouteTable(path string) (*RouteTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route table: %w", err)
	}
	var doc struct {
		Routes []RouteRule `yaml:"routes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse route table %s: %w", path, err)
	}
	table, err := NewRouteTable(doc.Routes)
	if err != nil {
		return nil, fmt.Errorf("route table %s: %w", path, err)
	}
	return table, nil
}

// Classify returns the classification of a request path. Unmatched paths
// are public.
func (t *RouteTable) Classify(path string) Classification {
	for _, rule := range t.rules {
		if prefixContains(rule.Prefix, path) {
			switch rule.Role {
			case RoleAdmin:
				return ClassAdmin
			case RoleProvider:
				return ClassProvider
			}
		}
	}
	return ClassPublic
}

// Rules returns a copy of the table's rules, for diagnostics.
func (t *RouteTable) Rules() []RouteRule {
	out := make([]RouteRule, len(t.rules))
	copy(out, t.rules)
	return out
}

// prefixContains reports whether path sits at or under prefix on a path
// segment boundary: /admin matches /admin and /admin/users, not /administer.
func prefixContains(prefix, path string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
