// Package server provides the public entry point for initializing the
// LocalPros webapp server.
//
// This package exists in pkg/ (not internal/) so deployments can compose
// the server with their own identity provider:
//
//	cfg := server.LoadConfig()
//	cfg.Verifier = myOIDCVerifier
//	srv, err := server.NewWithConfig(ctx, cfg)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/localpros/localpros/webapp/internal/api"
	"github.com/localpros/localpros/webapp/internal/api/handlers"
	apimw "github.com/localpros/localpros/webapp/internal/api/middleware"
	"github.com/localpros/localpros/webapp/internal/auth"
	"github.com/localpros/localpros/webapp/internal/config"
	"github.com/localpros/localpros/webapp/internal/guard"
	"github.com/localpros/localpros/webapp/internal/store"
	"github.com/localpros/localpros/webapp/internal/telemetry"
	"github.com/localpros/localpros/webapp/pkg/authz"
	"github.com/localpros/localpros/webapp/pkg/contracts"
)

// Config is the public configuration for the webapp server.
type Config struct {
	Port    int
	Version string

	// Verifier is the external credential check behind POST
	// /api/auth/login. Defaults to deny-all; demo seeding installs a
	// static table.
	Verifier contracts.CredentialVerifier
}

// Server holds the initialized LocalPros webapp.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the profile/directory store. Exposed so embedders can
	// seed or inspect it.
	Store store.Store

	// Config is the server configuration.
	Config *Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush
	// telemetry.
	ShutdownFunc func(context.Context) error
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	cfg := config.Load()
	return &Config{
		Port:    cfg.Port,
		Version: cfg.Version,
	}
}

// New initializes all webapp components and returns a ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, LoadConfig())
}

// NewWithConfig initializes the webapp with an explicit configuration.
func NewWithConfig(ctx context.Context, pubCfg *Config) (*Server, error) {
	cfg := config.Load()
	if pubCfg.Port > 0 {
		cfg.Port = pubCfg.Port
	}

	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	// Route table: built-in /admin + /provider rules, or the YAML file.
	routes := authz.DefaultRouteTable()
	if cfg.Routes.File != "" {
		routes, err = authz.LoadRouteTable(cfg.Routes.File)
		if err != nil {
			return nil, fmt.Errorf("load route table: %w", err)
		}
		log.Info().Str("file", cfg.Routes.File).Msg("✅ Route table loaded")
	}

	// Store: PostgreSQL when configured, in-memory otherwise.
	var dataStore store.Store
	if cfg.Database.URL != "" {
		dataStore, err = store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
	} else {
		dataStore = store.NewMemoryStore()
		log.Info().Msg("✅ In-memory store initialized")
	}

	// Session cookie codec. A missing secret gets an ephemeral one:
	// fine for dev, useless across restarts.
	secret := cfg.Session.Secret
	if secret == "" {
		secret = randomSecret()
		log.Warn().Msg("LOCALPROS_SESSION_SECRET not set, sessions will not survive restarts")
	}
	codec, err := auth.NewCookieCodec(secret, cfg.Session.TTL, cfg.Session.SecureCookies)
	if err != nil {
		return nil, fmt.Errorf("init session codec: %w", err)
	}

	verifier := pubCfg.Verifier
	if verifier == nil {
		verifier = auth.DenyAllVerifier{}
	}
	if cfg.SeedDemo {
		verifier = seedDemoData(ctx, dataStore)
	}

	// One resolver behind every guard: same lookup, same fail-closed
	// rules at the edge, in server renders, and behind /api/auth/me.
	resolver := auth.NewResolver(codec, contracts.RoleLookupFunc(store.FetchRole(dataStore)))
	serverGuard := guard.New(resolver)
	edgeGuard := apimw.NewEdgeGuard(routes, resolver)

	h := handlers.New(dataStore, serverGuard, codec, verifier, cfg.Version)
	router := api.NewRouter(cfg, h, edgeGuard, routes)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Config:       pubCfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// seedDemoData loads demo accounts and a sample listing, and returns the
// static verifier that signs them in.
func seedDemoData(ctx context.Context, s store.Store) contracts.CredentialVerifier {
	profiles := []store.Profile{
		{Identity: "demo-admin", Email: "admin@localpros.dev", Name: "Demo Admin", Role: authz.RoleAdmin},
		{Identity: "demo-provider", Email: "pat@localpros.dev", Name: "Pat Provider", Role: authz.RoleProvider},
		{Identity: "demo-user", Email: "sam@localpros.dev", Name: "Sam User", Role: authz.RoleUser},
	}
	for i := range profiles {
		if err := s.CreateProfile(ctx, &profiles[i]); err != nil {
			log.Warn().Err(err).Str("identity", profiles[i].Identity).Msg("Failed to seed profile")
		}
	}

	vendor := &store.Vendor{
		ID:            "demo-vendor",
		OwnerIdentity: "demo-provider",
		Name:          "Pat's Plumbing",
		Category:      "plumbing",
		Description:   "Emergency plumbing, 24/7.",
		Status:        store.VendorApproved,
	}
	if err := s.CreateVendor(ctx, vendor); err != nil {
		log.Warn().Err(err).Msg("Failed to seed vendor")
	} else {
		log.Info().Msg("✅ Demo data seeded")
	}

	return auth.StaticVerifier{
		"admin@localpros.dev": {Password: "admin-demo", Identity: "demo-admin"},
		"pat@localpros.dev":   {Password: "provider-demo", Identity: "demo-provider"},
		"sam@localpros.dev":   {Password: "user-demo", Identity: "demo-user"},
	}
}
