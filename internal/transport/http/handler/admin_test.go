package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-rentals-api/internal/application/admin"
	"github.com/go-rentals-api/internal/application/sweep"
	"github.com/go-rentals-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockAdminSvc struct{ mock.Mock }

func (m *mockAdminSvc) Overview(ctx context.Context) (*admin.Overview, error) {
	args := m.Called(ctx)
	if o, _ := args.Get(0).(*admin.Overview); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAdminSvc) Users(ctx context.Context) ([]admin.UserStats, error) {
	args := m.Called(ctx)
	if u, _ := args.Get(0).([]admin.UserStats); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAdminSvc) TopFavorites(ctx context.Context, limit int) ([]domain.FavoriteCount, error) {
	args := m.Called(ctx, limit)
	if f, _ := args.Get(0).([]domain.FavoriteCount); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAdminSvc) AlertsPerLocation(ctx context.Context) ([]domain.LocationCount, error) {
	args := m.Called(ctx)
	if c, _ := args.Get(0).([]domain.LocationCount); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSweepRunner struct{ mock.Mock }

func (m *mockSweepRunner) Run(ctx context.Context) (*sweep.Report, error) {
	args := m.Called(ctx)
	if r, _ := args.Get(0).(*sweep.Report); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAdminSweep_ReturnsReport(t *testing.T) {
	runner := &mockSweepRunner{}
	runner.On("Run", mock.Anything).Return(&sweep.Report{RunID: "r1", Alerts: 2, Sent: 1, Skipped: 1}, nil)
	h := NewAdminHandler(&mockAdminSvc{}, runner)

	r := httptest.NewRequest(http.MethodPost, "/v1/admin/sweep", nil)
	rr := httptest.NewRecorder()
	h.Sweep(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"run_id":"r1"`)
}

func TestAdminSweep_ConcurrentRunConflicts(t *testing.T) {
	runner := &mockSweepRunner{}
	runner.On("Run", mock.Anything).Return(nil, sweep.ErrSweepInProgress)
	h := NewAdminHandler(&mockAdminSvc{}, runner)

	r := httptest.NewRequest(http.MethodPost, "/v1/admin/sweep", nil)
	rr := httptest.NewRecorder()
	h.Sweep(rr, r)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAdminOverview(t *testing.T) {
	svc := &mockAdminSvc{}
	svc.On("Overview", mock.Anything).Return(&admin.Overview{
		Registers: 3, Logins: 5, Searches: 9,
		TopLocations: []domain.LocationCount{{Location: "Ljubljana", Count: 4}},
	}, nil)
	h := NewAdminHandler(svc, &mockSweepRunner{})

	r := httptest.NewRequest(http.MethodGet, "/v1/admin/overview", nil)
	rr := httptest.NewRecorder()
	h.Overview(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"Ljubljana"`)
}
