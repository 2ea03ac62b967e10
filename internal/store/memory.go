package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory implementation of Store.
// Used by tests and zero-configuration local runs.
type MemoryStore struct {
	mu        sync.RWMutex
	profiles  map[string]*Profile // key: identity
	vendors   map[string]*Vendor  // key: vendor ID
	enquiries map[string]*Enquiry // key: enquiry ID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[string]*Profile),
		vendors:   make(map[string]*Vendor),
		enquiries: make(map[string]*Enquiry),
	}
}

// ── Profiles ────────────────────────────────────────────────

func (s *MemoryStore) GetProfile(_ context.Context, identity string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[identity]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", identity, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) CreateProfile(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.Identity]; exists {
		return fmt.Errorf("profile %s already exists", p.Identity)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	cp := *p
	s.profiles[p.Identity] = &cp
	return nil
}

// ── Vendors ─────────────────────────────────────────────────

func (s *MemoryStore) ListVendors(_ context.Context, status VendorStatus) ([]Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Vendor
	for _, v := range s.vendors {
		if status == "" || v.Status == status {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (s *MemoryStore) GetVendor(_ context.Context, id string) (*Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vendors[id]
	if !ok {
		return nil, fmt.Errorf("vendor %s: %w", id, ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

func (s *MemoryStore) GetVendorByOwner(_ context.Context, ownerIdentity string) (*Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.vendors {
		if v.OwnerIdentity == ownerIdentity {
			cp := *v
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("vendor for owner %s: %w", ownerIdentity, ErrNotFound)
}

func (s *MemoryStore) CreateVendor(_ context.Context, v *Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vendors[v.ID]; exists {
		return fmt.Errorf("vendor %s already exists", v.ID)
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	cp := *v
	s.vendors[v.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateVendor(_ context.Context, v *Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vendors[v.ID]; !exists {
		return fmt.Errorf("vendor %s: %w", v.ID, ErrNotFound)
	}
	v.UpdatedAt = time.Now().UTC()
	cp := *v
	s.vendors[v.ID] = &cp
	return nil
}

// ── Enquiries ───────────────────────────────────────────────

func (s *MemoryStore) CreateEnquiry(_ context.Context, e *Enquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.enquiries[e.ID]; exists {
		return fmt.Errorf("enquiry %s already exists", e.ID)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cp := *e
	s.enquiries[e.ID] = &cp
	return nil
}

func (s *MemoryStore) ListEnquiriesByVendor(_ context.Context, vendorID string) ([]Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Enquiry
	for _, e := range s.enquiries {
		if e.VendorID == vendorID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (s *MemoryStore) ListEnquiries(_ context.Context) ([]Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Enquiry, 0, len(s.enquiries))
	for _, e := range s.enquiries {
		result = append(result, *e)
	}
	return result, nil
}

// ── Lifecycle ───────────────────────────────────────────────

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
