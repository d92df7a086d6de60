package favorite

import (
	"context"
	"testing"

	"github.com/go-rentals-api/internal/domain"
	"github.com/go-rentals-api/internal/infrastructure/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFavoriteStore struct{ mock.Mock }

func (m *mockFavoriteStore) Put(ctx context.Context, f *domain.Favorite) error {
	return m.Called(ctx, f).Error(0)
}
func (m *mockFavoriteStore) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	args := m.Called(ctx, userID)
	if f, _ := args.Get(0).([]domain.Favorite); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockFavoriteStore) Delete(ctx context.Context, userID string, listingID int) error {
	return m.Called(ctx, userID, listingID).Error(0)
}

func testCatalog() *catalog.Store {
	return catalog.NewStore([]domain.Listing{
		{ID: 1, Name: "Apartma Pohorje", Location: "Maribor", Price: 75},
		{ID: 2, Name: "Vila Morska zvezda", Location: "Piran", Price: 150},
	})
}

func TestAdd_UnknownListing(t *testing.T) {
	repo := &mockFavoriteStore{}
	svc := NewService(repo, testCatalog())

	_, err := svc.Add(context.Background(), "u1", 999)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestAdd_DeterministicID(t *testing.T) {
	repo := &mockFavoriteStore{}
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, testCatalog())

	f1, err := svc.Add(context.Background(), "u1", 1)
	require.NoError(t, err)
	f2, err := svc.Add(context.Background(), "u1", 1)
	require.NoError(t, err)

	// Same key both times: the second Put overwrites the first row.
	assert.Equal(t, f1.FavoriteID, f2.FavoriteID)
	assert.Equal(t, "u1#1", f1.FavoriteID)
}

func TestList_SkipsListingsNoLongerInCatalog(t *testing.T) {
	repo := &mockFavoriteStore{}
	repo.On("ListByUser", mock.Anything, "u1").Return([]domain.Favorite{
		{FavoriteID: "u1#1", UserID: "u1", ListingID: 1},
		{FavoriteID: "u1#999", UserID: "u1", ListingID: 999},
	}, nil)
	svc := NewService(repo, testCatalog())

	listings, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, listings, 1)
	assert.Equal(t, 1, listings[0].ID)
}

func TestRemove(t *testing.T) {
	repo := &mockFavoriteStore{}
	repo.On("Delete", mock.Anything, "u1", 2).Return(nil)
	svc := NewService(repo, testCatalog())

	require.NoError(t, svc.Remove(context.Background(), "u1", 2))
	repo.AssertExpectations(t)
}
