package catalog

import "github.com/go-rentals-api/internal/domain"

// Store is the read-only listing catalog. Listings are fixed at construction
// and never mutated, so the store is safe for concurrent use without locking.
type Store struct {
	listings []domain.Listing
	byID     map[int]domain.Listing
}

// NewStore builds a Store over the given listings, preserving their order.
func NewStore(listings []domain.Listing) *Store {
	byID := make(map[int]domain.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	return &Store{listings: listings, byID: byID}
}

// NewDefaultStore returns a Store over the built-in apartment fixture.
func NewDefaultStore() *Store {
	return NewStore(defaultListings)
}

// All returns the catalog in its natural order. Callers must not modify the
// returned slice.
func (s *Store) All() []domain.Listing {
	return s.listings
}

// Get returns the listing with the given id.
func (s *Store) Get(id int) (domain.Listing, bool) {
	l, ok := s.byID[id]
	return l, ok
}
