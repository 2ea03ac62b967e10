package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/localpros/localpros/webapp/internal/api/handlers"
	"github.com/localpros/localpros/webapp/internal/api/middleware"
	"github.com/localpros/localpros/webapp/internal/config"
	"github.com/localpros/localpros/webapp/internal/guard"
	"github.com/localpros/localpros/webapp/pkg/authz"
)

// NewRouter creates the HTTP router with all routes and middleware.
//
// Middleware order matters: the edge guard sits after logging/tracing so
// denials are observable, and guard.Recover sits innermost so the server
// guard's abort is caught before chi's Recoverer can mistake it for a
// crash.
func NewRouter(cfg *config.Config, h *handlers.Handlers, edge *middleware.EdgeGuard, routes *authz.RouteTable) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry(routes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(edge.Handler)
	r.Use(guard.Recover)

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// Public directory
	r.Get("/", h.Home)
	r.Get("/services", h.ListServices)
	r.Get("/services/{vendorID}", h.GetService)

	// Auth pages
	r.Get("/login", h.LoginPage)
	r.Get("/unauthorized", h.UnauthorizedPage)

	// API
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
		r.Post("/enquiries", h.CreateEnquiry)
	})

	// Provider namespace — gated by the edge guard via the route table
	// and again, per handler, by the server guard.
	r.Route("/provider", func(r chi.Router) {
		r.Get("/dashboard", h.ProviderDashboard)
		r.Get("/listing", h.GetListing)
		r.Put("/listing", h.UpdateListing)
		r.Get("/enquiries", h.ProviderEnquiries)
	})

	// Admin namespace
	r.Route("/admin", func(r chi.Router) {
		r.Get("/dashboard", h.AdminDashboard)
		r.Get("/vendors", h.AdminVendors)
		r.Post("/vendors/{vendorID}/approve", h.ApproveVendor)
		r.Get("/enquiries", h.AdminEnquiries)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "localpros-webapp",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
		})
	}
}
