// Package store provides the storage interface and implementations for the
// LocalPros webapp. The in-memory store backs tests and zero-config local
// runs; the PostgreSQL store backs production.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/localpros/localpros/webapp/pkg/authz"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ── Models ──────────────────────────────────────────────────

// Profile is the per-identity record in the profile store. Only Role
// participates in authorization; the rest is directory content.
type Profile struct {
	Identity  string     `json:"identity"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      authz.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// VendorStatus is the moderation state of a listing.
type VendorStatus string

const (
	VendorPending  VendorStatus = "pending"
	VendorApproved VendorStatus = "approved"
)

// Vendor is one service listing in the directory.
type Vendor struct {
	ID            string       `json:"id"`
	OwnerIdentity string       `json:"owner_identity"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	Description   string       `json:"description"`
	Status        VendorStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Enquiry is a visitor message to a vendor.
type Enquiry struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendor_id"`
	FromEmail string    `json:"from_email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ── Store interfaces ────────────────────────────────────────

// ProfileStore is the profile lookup used by the authorization layer.
// Read-only from the guards' perspective: they never mutate roles.
type ProfileStore interface {
	GetProfile(ctx context.Context, identity string) (*Profile, error)
	CreateProfile(ctx context.Context, p *Profile) error
}

// VendorStore manages directory listings.
type VendorStore interface {
	ListVendors(ctx context.Context, status VendorStatus) ([]Vendor, error)
	GetVendor(ctx context.Context, id string) (*Vendor, error)
	GetVendorByOwner(ctx context.Context, ownerIdentity string) (*Vendor, error)
	CreateVendor(ctx context.Context, v *Vendor) error
	UpdateVendor(ctx context.Context, v *Vendor) error
}

// EnquiryStore manages enquiries sent to vendors.
type EnquiryStore interface {
	CreateEnquiry(ctx context.Context, e *Enquiry) error
	ListEnquiriesByVendor(ctx context.Context, vendorID string) ([]Enquiry, error)
	ListEnquiries(ctx context.Context) ([]Enquiry, error)
}

// Store is the primary storage interface. Handler code depends on this
// interface, making it easy to swap between in-memory (tests) and
// PostgreSQL (production) implementations.
type Store interface {
	ProfileStore
	VendorStore
	EnquiryStore

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// FetchRole exposes a Store's profile table as the RoleLookup capability
// the guards consume. A missing profile maps to ErrNotFound, which the
// resolver treats as principal-absent.
func FetchRole(s ProfileStore) func(ctx context.Context, identity string) (authz.Role, error) {
	return func(ctx context.Context, identity string) (authz.Role, error) {
		p, err := s.GetProfile(ctx, identity)
		if err != nil {
			return "", err
		}
		return p.Role, nil
	}
}
