package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/localpros/localpros/webapp/pkg/authz"
	"github.com/localpros/localpros/webapp/pkg/contracts"
)

// LoginPage renders the login page payload. The redirectTo query parameter
// is echoed back so the form can carry it into the login request.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"page":        "login",
		"redirect_to": r.URL.Query().Get("redirectTo"),
	})
}

// UnauthorizedPage is the terse landing page for role mismatches. It takes
// no parameters on purpose.
func (h *Handlers) UnauthorizedPage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusForbidden, map[string]string{
		"page":    "unauthorized",
		"message": "You do not have access to that page.",
	})
}

// Login verifies credentials through the external verifier, mints the
// session cookie, and tells the client where to go next: the validated
// redirectTo if one was carried, otherwise the home for the account's role.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RedirectTo string `json:"redirect_to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	identity, err := h.verifier.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, contracts.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("Credential verifier failed")
		}
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
		return
	}

	cookie, err := h.sessions.Issue(identity)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue session cookie")
		respondError(w, http.StatusInternalServerError, "session_failed", "could not start session")
		return
	}
	http.SetCookie(w, cookie)

	target := sanitizeRedirect(req.RedirectTo)
	if target == "" {
		role, err := h.store.GetProfile(r.Context(), identity)
		if err != nil {
			target = authz.PublicHomePath
		} else {
			target = authz.HomeFor(role.Role)
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"redirect_to": target})
}

// Logout clears the session cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessions.Clear())
	respondJSON(w, http.StatusOK, map[string]string{"redirect_to": authz.PublicHomePath})
}

// Me is the non-redirecting principal echo used by the client guard. It
// runs the same session + profile resolution as every other guard and
// answers 401 instead of bouncing, so client code can branch.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p := h.guard.CurrentPrincipal(r)
	if p == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "no active session")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// sanitizeRedirect only accepts same-site absolute paths, so the login
// response can never bounce a user to a foreign origin.
func sanitizeRedirect(target string) string {
	if len(target) < 1 || target[0] != '/' {
		return ""
	}
	// Protocol-relative URLs (//evil.example) also start with '/'.
	if len(target) > 1 && target[1] == '/' {
		return ""
	}
	return target
}
