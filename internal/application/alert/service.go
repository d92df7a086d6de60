package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rentals-api/internal/domain"
	"github.com/go-rentals-api/internal/pkg/id"
	"github.com/go-rentals-api/internal/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateAlertRequest) (*domain.Alert, error)
	List(ctx context.Context, userID string) ([]domain.Alert, error)
	Delete(ctx context.Context, userID, alertID string) error
}

type alertStore interface {
	Put(ctx context.Context, a *domain.Alert) error
	Get(ctx context.Context, alertID string) (*domain.Alert, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Alert, error)
	Delete(ctx context.Context, alertID string) error
}

type service struct {
	repo alertStore
}

func NewService(repo alertStore) Service {
	return &service{repo: repo}
}

// Create validates the request and stores a new alert. An empty location is
// allowed and matches every listing. An inverted price range is rejected.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateAlertRequest) (*domain.Alert, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if req.MinPrice > req.MaxPrice {
		return nil, fmt.Errorf("min_price must not exceed max_price: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	a := &domain.Alert{
		AlertID:   id.New(),
		UserID:    userID,
		Location:  req.Location,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Alert, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete removes the alert if it belongs to the given user.
func (s *service) Delete(ctx context.Context, userID, alertID string) error {
	a, err := s.repo.Get(ctx, alertID)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return fmt.Errorf("alert belongs to another user: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, alertID)
}
