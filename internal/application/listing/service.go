package listing

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-rentals-api/internal/domain"
	"github.com/go-rentals-api/internal/pkg/id"
	"github.com/go-rentals-api/internal/pkg/validate"
)

type Service interface {
	Search(ctx context.Context, userID string, q domain.SearchQuery) ([]domain.Listing, error)
	Get(ctx context.Context, listingID int) (*domain.Listing, error)
}

type catalogStore interface {
	All() []domain.Listing
	Get(id int) (domain.Listing, bool)
}

type eventStore interface {
	Put(ctx context.Context, e *domain.Event) error
}

type service struct {
	catalog   catalogStore
	eventRepo eventStore
}

func NewService(catalog catalogStore, eventRepo eventStore) Service {
	return &service{catalog: catalog, eventRepo: eventRepo}
}

// Search filters the catalog by location substring (case-insensitive) and
// inclusive price bounds, then sorts. The sort is stable so listings with
// equal keys keep their catalog order. userID may be empty for anonymous
// searches.
func (s *service) Search(ctx context.Context, userID string, q domain.SearchQuery) ([]domain.Listing, error) {
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	needle := strings.ToLower(q.Location)
	var out []domain.Listing
	for _, l := range s.catalog.All() {
		if needle != "" && !strings.Contains(strings.ToLower(l.Location), needle) {
			continue
		}
		if q.MinPrice != nil && l.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && l.Price > *q.MaxPrice {
			continue
		}
		out = append(out, l)
	}
	if q.SortBy != "" {
		desc := q.Order == "desc"
		sort.SliceStable(out, func(i, j int) bool {
			var a, b float64
			switch q.SortBy {
			case "rating":
				a, b = out[i].Rating, out[j].Rating
			case "distance":
				a, b = out[i].Distance, out[j].Distance
			default:
				a, b = out[i].Price, out[j].Price
			}
			if desc {
				return a > b
			}
			return a < b
		})
	}
	s.recordEvent(ctx, userID, q.Location)
	return out, nil
}

func (s *service) Get(ctx context.Context, listingID int) (*domain.Listing, error) {
	l, ok := s.catalog.Get(listingID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (s *service) recordEvent(ctx context.Context, userID, location string) {
	e := &domain.Event{
		EventID:   id.New(),
		Type:      domain.EventSearch,
		UserID:    userID,
		Location:  location,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.eventRepo.Put(ctx, e); err != nil {
		slog.Warn("failed to record search event", "location", location, "err", err)
	}
}
