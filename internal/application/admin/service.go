package admin

import (
	"context"
	"sort"

	"github.com/go-rentals-api/internal/domain"
)

const topLocationLimit = 5

// Overview aggregates the dashboard headline numbers.
type Overview struct {
	Registers    int                    `json:"registers"`
	Logins       int                    `json:"logins"`
	Searches     int                    `json:"searches"`
	TopLocations []domain.LocationCount `json:"top_locations"`
}

// UserStats is a user row on the dashboard with per-user counts.
type UserStats struct {
	User      domain.User `json:"user"`
	Favorites int         `json:"favorites"`
	Alerts    int         `json:"alerts"`
}

type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	Users(ctx context.Context) ([]UserStats, error)
	TopFavorites(ctx context.Context, limit int) ([]domain.FavoriteCount, error)
	AlertsPerLocation(ctx context.Context) ([]domain.LocationCount, error)
}

type eventStore interface {
	CountByType(ctx context.Context, eventType string) (int, error)
	ListByType(ctx context.Context, eventType string) ([]domain.Event, error)
}

type userStore interface {
	ListEnabled(ctx context.Context) ([]domain.User, error)
}

type favoriteStore interface {
	TopListings(ctx context.Context, limit int) ([]domain.FavoriteCount, error)
	CountByUser(ctx context.Context) (map[string]int, error)
}

type alertStore interface {
	ListAll(ctx context.Context) ([]domain.Alert, error)
}

type service struct {
	eventRepo    eventStore
	userRepo     userStore
	favoriteRepo favoriteStore
	alertRepo    alertStore
}

func NewService(eventRepo eventStore, userRepo userStore, favoriteRepo favoriteStore, alertRepo alertStore) Service {
	return &service{
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
		alertRepo:    alertRepo,
	}
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	registers, err := s.eventRepo.CountByType(ctx, domain.EventRegister)
	if err != nil {
		return nil, err
	}
	logins, err := s.eventRepo.CountByType(ctx, domain.EventLogin)
	if err != nil {
		return nil, err
	}
	searches, err := s.eventRepo.ListByType(ctx, domain.EventSearch)
	if err != nil {
		return nil, err
	}
	byLocation := map[string]int{}
	for _, e := range searches {
		if e.Location != "" {
			byLocation[e.Location]++
		}
	}
	top := rankLocations(byLocation)
	if len(top) > topLocationLimit {
		top = top[:topLocationLimit]
	}
	return &Overview{
		Registers:    registers,
		Logins:       logins,
		Searches:     len(searches),
		TopLocations: top,
	}, nil
}

func (s *service) Users(ctx context.Context) ([]UserStats, error) {
	users, err := s.userRepo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	favCounts, err := s.favoriteRepo.CountByUser(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := s.alertRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	alertCounts := map[string]int{}
	for _, a := range alerts {
		alertCounts[a.UserID]++
	}
	out := make([]UserStats, 0, len(users))
	for _, u := range users {
		out = append(out, UserStats{
			User:      u,
			Favorites: favCounts[u.UserID],
			Alerts:    alertCounts[u.UserID],
		})
	}
	return out, nil
}

func (s *service) TopFavorites(ctx context.Context, limit int) ([]domain.FavoriteCount, error) {
	if limit < 1 {
		limit = topLocationLimit
	}
	return s.favoriteRepo.TopListings(ctx, limit)
}

func (s *service) AlertsPerLocation(ctx context.Context) ([]domain.LocationCount, error) {
	alerts, err := s.alertRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byLocation := map[string]int{}
	for _, a := range alerts {
		loc := a.Location
		if loc == "" {
			loc = "(all)"
		}
		byLocation[loc]++
	}
	return rankLocations(byLocation), nil
}

// rankLocations sorts counts descending, breaking ties alphabetically so
// the output is deterministic.
func rankLocations(counts map[string]int) []domain.LocationCount {
	out := make([]domain.LocationCount, 0, len(counts))
	for loc, n := range counts {
		out = append(out, domain.LocationCount{Location: loc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Location < out[j].Location
	})
	return out
}
