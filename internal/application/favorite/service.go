package favorite

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rentals-api/internal/domain"
	"github.com/go-rentals-api/internal/infrastructure/dynamo"
)

type Service interface {
	Add(ctx context.Context, userID string, listingID int) (*domain.Favorite, error)
	List(ctx context.Context, userID string) ([]domain.Listing, error)
	Remove(ctx context.Context, userID string, listingID int) error
}

type favoriteStore interface {
	Put(ctx context.Context, f *domain.Favorite) error
	ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error)
	Delete(ctx context.Context, userID string, listingID int) error
}

type catalogStore interface {
	Get(id int) (domain.Listing, bool)
}

type service struct {
	repo    favoriteStore
	catalog catalogStore
}

func NewService(repo favoriteStore, catalog catalogStore) Service {
	return &service{repo: repo, catalog: catalog}
}

// Add is idempotent: the favorite key is derived from (user, listing), so
// favoriting the same listing twice overwrites one row.
func (s *service) Add(ctx context.Context, userID string, listingID int) (*domain.Favorite, error) {
	if _, ok := s.catalog.Get(listingID); !ok {
		return nil, fmt.Errorf("listing %d does not exist: %w", listingID, domain.ErrNotFound)
	}
	f := &domain.Favorite{
		FavoriteID: dynamo.FavoriteID(userID, listingID),
		UserID:     userID,
		ListingID:  listingID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// List returns the favorited listings, skipping favorites whose listing is
// no longer in the catalog.
func (s *service) List(ctx context.Context, userID string) ([]domain.Listing, error) {
	favs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(favs))
	for _, f := range favs {
		if l, ok := s.catalog.Get(f.ListingID); ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *service) Remove(ctx context.Context, userID string, listingID int) error {
	return s.repo.Delete(ctx, userID, listingID)
}
