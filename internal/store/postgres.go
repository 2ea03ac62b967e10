package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresStore is the pgx-backed implementation of Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info().Str("database", cfg.ConnConfig.Database).Msg("✅ PostgreSQL store connected")
	return &PostgresStore{pool: pool}, nil
}

// ── Profiles ────────────────────────────────────────────────

func (s *PostgresStore) GetProfile(ctx context.Context, identity string) (*Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT identity, email, name, role, created_at FROM profiles WHERE identity = $1`,
		identity)

	var p Profile
	if err := row.Scan(&p.Identity, &p.Email, &p.Name, &p.Role, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", identity, ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p *Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (identity, email, name, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.Identity, p.Email, p.Name, p.Role, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// ── Vendors ─────────────────────────────────────────────────

const vendorColumns = `id, owner_identity, name, category, description, status, created_at, updated_at`

func scanVendor(row pgx.Row) (*Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.OwnerIdentity, &v.Name, &v.Category, &v.Description,
		&v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PostgresStore) ListVendors(ctx context.Context, status VendorStatus) ([]Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var result []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (s *PostgresStore) GetVendor(ctx context.Context, id string) (*Vendor, error) {
	v, err := scanVendor(s.pool.QueryRow(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) GetVendorByOwner(ctx context.Context, ownerIdentity string) (*Vendor, error) {
	v, err := scanVendor(s.pool.QueryRow(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE owner_identity = $1`, ownerIdentity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor for owner %s: %w", ownerIdentity, ErrNotFound)
		}
		return nil, fmt.Errorf("get vendor by owner: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) CreateVendor(ctx context.Context, v *Vendor) error {
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vendors (`+vendorColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.OwnerIdentity, v.Name, v.Category, v.Description, v.Status, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateVendor(ctx context.Context, v *Vendor) error {
	v.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE vendors SET name = $2, category = $3, description = $4, status = $5, updated_at = $6 WHERE id = $1`,
		v.ID, v.Name, v.Category, v.Description, v.Status, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vendor %s: %w", v.ID, ErrNotFound)
	}
	return nil
}

// ── Enquiries ───────────────────────────────────────────────

func (s *PostgresStore) CreateEnquiry(ctx context.Context, e *Enquiry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO enquiries (id, vendor_id, from_email, message, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.VendorID, e.FromEmail, e.Message, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create enquiry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListEnquiriesByVendor(ctx context.Context, vendorID string) ([]Enquiry, error) {
	return s.listEnquiries(ctx,
		`SELECT id, vendor_id, from_email, message, created_at FROM enquiries WHERE vendor_id = $1 ORDER BY created_at DESC`,
		vendorID)
}

func (s *PostgresStore) ListEnquiries(ctx context.Context) ([]Enquiry, error) {
	return s.listEnquiries(ctx,
		`SELECT id, vendor_id, from_email, message, created_at FROM enquiries ORDER BY created_at DESC`)
}

func (s *PostgresStore) listEnquiries(ctx context.Context, query string, args ...any) ([]Enquiry, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	defer rows.Close()

	var result []Enquiry
	for rows.Next() {
		var e Enquiry
		if err := rows.Scan(&e.ID, &e.VendorID, &e.FromEmail, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan enquiry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ── Lifecycle ───────────────────────────────────────────────

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
