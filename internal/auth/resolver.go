package auth

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/localpros/localpros/webapp/pkg/authz"
	"github.com/localpros/localpros/webapp/pkg/contracts"
)

// Resolver materializes the Principal for the current request: session
// cookie → identity → profile role. It holds no per-request state and is
// safe for concurrent use; every call resolves fresh (no role cache is
// trusted for authorization decisions).
type Resolver struct {
	sessions contracts.SessionReader
	profiles contracts.RoleLookup
}

// NewResolver builds a Resolver from the injected session carrier and
// profile lookup.
func NewResolver(sessions contracts.SessionReader, profiles contracts.RoleLookup) *Resolver {
	return &Resolver{sessions: sessions, profiles: profiles}
}

// Resolve returns the Principal acting in r, or nil when none can be
// established.
//
// Fail closed: a profile lookup error or missing record yields the same
// nil principal as an absent session — never an allow, never a 500. The
// failure is logged here; callers only see "absent".
//
// refresh is the re-issued session cookie, if the carrier produced one
// while being read. It is returned even when the principal comes back nil
// so the edge guard can forward it with a denied response too.
func (rs *Resolver) Resolve(r *http.Request) (principal *authz.Principal, refresh *http.Cookie) {
	identity, refresh, err := rs.sessions.Read(r)
	if err != nil {
		return nil, refresh
	}

	role, err := rs.profiles.FetchRole(r.Context(), identity)
	if err != nil {
		log.Warn().
			Err(err).
			Str("identity", identity).
			Str("path", r.URL.Path).
			Msg("Profile role lookup failed, treating principal as absent")
		return nil, refresh
	}
	if !role.Valid() {
		log.Warn().
			Str("identity", identity).
			Str("role", string(role)).
			Msg("Profile carries unknown role, treating principal as absent")
		return nil, refresh
	}

	return &authz.Principal{Identity: identity, Role: role}, refresh
}
