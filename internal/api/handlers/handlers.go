// Package handlers implements the HTTP handlers for the LocalPros webapp:
// the public directory, the provider and admin namespaces, and the auth
// endpoints that mint and clear the session cookie.
//
// Presentation is deliberately thin — handlers return JSON page payloads;
// the visual layer is rendered elsewhere. What matters here is that every
// protected handler goes through the server guard even though the edge
// guard already ran (defense in depth).
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/localpros/localpros/webapp/internal/guard"
	"github.com/localpros/localpros/webapp/internal/store"
	"github.com/localpros/localpros/webapp/pkg/authz"
	"github.com/localpros/localpros/webapp/pkg/contracts"
)

// SessionIssuer mints and clears session cookies. Implemented by the
// cookie codec; narrowed to an interface so handler tests can fake it.
type SessionIssuer interface {
	Issue(identity string) (*http.Cookie, error)
	Clear() *http.Cookie
}

// Handlers carries the dependencies for all routes.
type Handlers struct {
	store    store.Store
	guard    *guard.ServerGuard
	sessions SessionIssuer
	verifier contracts.CredentialVerifier
	version  string
}

// New wires the handler set.
func New(s store.Store, g *guard.ServerGuard, sessions SessionIssuer, verifier contracts.CredentialVerifier, version string) *Handlers {
	return &Handlers{store: s, guard: g, sessions: sessions, verifier: verifier, version: version}
}

// ── JSON helpers ────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	respondJSON(w, status, map[string]string{"error": code, "message": msg})
}

// ── Public directory ────────────────────────────────────────

// Home renders the public landing page payload.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"page":    "home",
		"version": h.version,
	})
}

// ListServices lists approved vendors.
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.store.ListVendors(r.Context(), store.VendorApproved)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list_failed", "could not list services")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"page":     "services",
		"services": vendors,
	})
}

// GetService shows one approved vendor.
func (h *Handlers) GetService(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.GetVendor(r.Context(), chi.URLParam(r, "vendorID"))
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "not_found", "service not found")
		} else {
			respondError(w, http.StatusInternalServerError, "lookup_failed", "could not load service")
		}
		return
	}
	if v.Status != store.VendorApproved {
		respondError(w, http.StatusNotFound, "not_found", "service not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"page":    "service",
		"service": v,
	})
}

// CreateEnquiry accepts a visitor enquiry for a vendor.
func (h *Handlers) CreateEnquiry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VendorID string `json:"vendor_id"`
		Email    string `json:"email"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.VendorID == "" || req.Email == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "vendor_id, email and message are required")
		return
	}
	if _, err := h.store.GetVendor(r.Context(), req.VendorID); err != nil {
		respondError(w, http.StatusNotFound, "not_found", "vendor not found")
		return
	}

	e := &store.Enquiry{
		ID:        uuid.NewString(),
		VendorID:  req.VendorID,
		FromEmail: req.Email,
		Message:   req.Message,
	}
	if err := h.store.CreateEnquiry(r.Context(), e); err != nil {
		respondError(w, http.StatusInternalServerError, "create_failed", "could not save enquiry")
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

// ── Provider namespace ──────────────────────────────────────

// ProviderDashboard renders the provider home, personalized with the
// principal the server guard returned.
func (h *Handlers) ProviderDashboard(w http.ResponseWriter, r *http.Request) {
	p := h.guard.RequireRole(w, r, []authz.Role{authz.RoleProvider})

	payload := map[string]any{
		"page":      "provider_dashboard",
		"principal": p,
	}
	if vendor, err := h.store.GetVendorByOwner(r.Context(), p.Identity); err == nil {
		payload["listing"] = vendor
	}
	respondJSON(w, http.StatusOK, payload)
}

// GetListing returns the provider's own listing.
func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	p := h.guard.RequireRole(w, r, []authz.Role{authz.RoleProvider})

	vendor, err := h.store.GetVendorByOwner(r.Context(), p.Identity)
	if err != nil {
		respondError(w, http.StatusNotFound, "no_listing", "no listing for this provider yet")
		return
	}
	respondJSON(w, http.StatusOK, vendor)
}

// UpdateListing creates or updates the provider's listing. New listings go
// back to pending for re-moderation.
func (h *Handlers) UpdateListing(w http.ResponseWriter, r *http.Request) {
	p := h.guard.RequireRole(w, r, []authz.Role{authz.RoleProvider})

	var req struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "name is required")
		return
	}

	vendor, err := h.store.GetVendorByOwner(r.Context(), p.Identity)
	if err != nil {
		vendor = &store.Vendor{ID: uuid.NewString(), OwnerIdentity: p.Identity}
		vendor.Name, vendor.Category, vendor.Description = req.Name, req.Category, req.Description
		vendor.Status = store.VendorPending
		if err := h.store.CreateVendor(r.Context(), vendor); err != nil {
			respondError(w, http.StatusInternalServerError, "create_failed", "could not create listing")
			return
		}
		respondJSON(w, http.StatusCreated, vendor)
		return
	}

	vendor.Name, vendor.Category, vendor.Description = req.Name, req.Category, req.Description
	vendor.Status = store.VendorPending
	if err := h.store.UpdateVendor(r.Context(), vendor); err != nil {
		respondError(w, http.StatusInternalServerError, "update_failed", "could not update listing")
		return
	}
	respondJSON(w, http.StatusOK, vendor)
}

// ProviderEnquiries lists enquiries for the provider's own listing only.
func (h *Handlers) ProviderEnquiries(w http.ResponseWriter, r *http.Request) {
	p := h.guard.RequireRole(w, r, []authz.Role{authz.RoleProvider})

	vendor, err := h.store.GetVendorByOwner(r.Context(), p.Identity)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{"enquiries": []store.Enquiry{}})
		return
	}
	enquiries, err := h.store.ListEnquiriesByVendor(r.Context(), vendor.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list_failed", "could not list enquiries")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"enquiries": enquiries})
}

// ── Admin namespace ─────────────────────────────────────────

// AdminDashboard renders the admin home with moderation counts.
func (h *Handlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	p := h.guard.RequireRole(w, r, []authz.Role{authz.RoleAdmin})

	pending, err := h.store.ListVendors(r.Context(), store.VendorPending)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list_failed", "could not load dashboard")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"page":          "admin_dashboard",
		"principal":     p,
		"pending_count": len(pending),
	})
}

// AdminVendors lists every vendor, pending included.
func (h *Handlers) AdminVendors(w http.ResponseWriter, r *http.Request) {
	h.guard.RequireRole(w, r, []authz.Role{authz.RoleAdmin})

	vendors, err := h.store.ListVendors(r.Context(), "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list_failed", "could not list vendors")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"vendors": vendors})
}

// ApproveVendor flips a listing to approved.
func (h *Handlers) ApproveVendor(w http.ResponseWriter, r *http.Request) {
	p := h.guard.RequireRole(w, r, []authz.Role{authz.RoleAdmin})

	vendor, err := h.store.GetVendor(r.Context(), chi.URLParam(r, "vendorID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "vendor not found")
		return
	}
	vendor.Status = store.VendorApproved
	if err := h.store.UpdateVendor(r.Context(), vendor); err != nil {
		respondError(w, http.StatusInternalServerError, "update_failed", "could not approve vendor")
		return
	}

	log.Info().
		Str("vendor", vendor.ID).
		Str("admin", p.Identity).
		Msg("Vendor approved")
	respondJSON(w, http.StatusOK, vendor)
}

// AdminEnquiries lists all enquiries across vendors.
func (h *Handlers) AdminEnquiries(w http.ResponseWriter, r *http.Request) {
	h.guard.RequireRole(w, r, []authz.Role{authz.RoleAdmin})

	enquiries, err := h.store.ListEnquiries(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list_failed", "could not list enquiries")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"enquiries": enquiries})
}

// ── errors ──────────────────────────────────────────────────

// isNotFound reports a store miss without leaking store internals to
// handlers that only care about the distinction.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
