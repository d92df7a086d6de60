package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-rentals-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAlertLister struct{ mock.Mock }

func (m *mockAlertLister) ListAll(ctx context.Context) ([]domain.Alert, error) {
	args := m.Called(ctx)
	if a, _ := args.Get(0).([]domain.Alert); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCatalog struct{ listings []domain.Listing }

func (m *mockCatalog) All() []domain.Listing { return m.listings }

type mockLockStore struct{ mock.Mock }

func (m *mockLockStore) Acquire(ctx context.Context, lockID, holder string, ttl time.Duration) error {
	return m.Called(ctx, lockID, holder, ttl).Error(0)
}
func (m *mockLockStore) Release(ctx context.Context, lockID, holder string) error {
	return m.Called(ctx, lockID, holder).Error(0)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, a domain.Alert, listings []domain.Listing) Outcome {
	return m.Called(ctx, a, listings).Get(0).(Outcome)
}

type mockArchiver struct{ mock.Mock }

func (m *mockArchiver) PutReport(ctx context.Context, runID string, report interface{}) (string, error) {
	args := m.Called(ctx, runID, report)
	return args.String(0), args.Error(1)
}

type mockOps struct{ mock.Mock }

func (m *mockOps) Publish(ctx context.Context, subject, message string) error {
	return m.Called(ctx, subject, message).Error(0)
}

func newTestService(alerts *mockAlertLister, locks *mockLockStore, d *mockDispatcher, listings []domain.Listing) *Service {
	return NewService(ServiceDeps{
		Alerts:       alerts,
		Catalog:      &mockCatalog{listings: listings},
		Locks:        locks,
		Dispatcher:   d,
		Workers:      2,
		AlertTimeout: time.Second,
		LockTTL:      time.Minute,
		Logger:       quietLogger(),
	})
}

func TestRun_LeaseHeld_ReturnsErrSweepInProgress(t *testing.T) {
	alerts := &mockAlertLister{}
	locks := &mockLockStore{}
	d := &mockDispatcher{}
	locks.On("Acquire", mock.Anything, "sweep", mock.Anything, time.Minute).Return(domain.ErrConflict)

	svc := newTestService(alerts, locks, d, testListings)
	report, err := svc.Run(context.Background())

	assert.ErrorIs(t, err, ErrSweepInProgress)
	assert.Nil(t, report)
	alerts.AssertNotCalled(t, "ListAll", mock.Anything)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	locks.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestRun_AggregatesOutcomes(t *testing.T) {
	alerts := &mockAlertLister{}
	locks := &mockLockStore{}
	d := &mockDispatcher{}
	locks.On("Acquire", mock.Anything, "sweep", mock.Anything, mock.Anything).Return(nil)
	locks.On("Release", mock.Anything, "sweep", mock.Anything).Return(nil)

	snapshot := []domain.Alert{
		{AlertID: "a1", UserID: "u1"},
		{AlertID: "a2", UserID: "u2"},
		{AlertID: "a3", UserID: "u3"},
	}
	alerts.On("ListAll", mock.Anything).Return(snapshot, nil)
	d.On("Dispatch", mock.Anything, snapshot[0], testListings).Return(Outcome{AlertID: "a1", Status: StatusSent, Matches: 2})
	d.On("Dispatch", mock.Anything, snapshot[1], testListings).Return(Outcome{AlertID: "a2", Status: StatusSkipped, Reason: ReasonNoMatches})
	d.On("Dispatch", mock.Anything, snapshot[2], testListings).Return(Outcome{AlertID: "a3", Status: StatusFailed, Reason: ReasonMail, Err: errors.New("smtp down")})

	svc := newTestService(alerts, locks, d, testListings)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Alerts)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Outcomes, 3)
	// Outcomes keep snapshot order regardless of worker interleaving.
	assert.Equal(t, "a1", report.Outcomes[0].AlertID)
	assert.Equal(t, "a2", report.Outcomes[1].AlertID)
	assert.Equal(t, "a3", report.Outcomes[2].AlertID)
	locks.AssertCalled(t, "Release", mock.Anything, "sweep", mock.Anything)
}

func TestRun_EmptySnapshot(t *testing.T) {
	alerts := &mockAlertLister{}
	locks := &mockLockStore{}
	d := &mockDispatcher{}
	locks.On("Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	locks.On("Release", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	alerts.On("ListAll", mock.Anything).Return([]domain.Alert{}, nil)

	svc := newTestService(alerts, locks, d, testListings)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Alerts)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_SnapshotLoadFailure_ReleasesLease(t *testing.T) {
	alerts := &mockAlertLister{}
	locks := &mockLockStore{}
	d := &mockDispatcher{}
	locks.On("Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	locks.On("Release", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	alerts.On("ListAll", mock.Anything).Return(nil, errors.New("dynamo unavailable"))

	svc := newTestService(alerts, locks, d, testListings)
	_, err := svc.Run(context.Background())

	assert.Error(t, err)
	locks.AssertCalled(t, "Release", mock.Anything, "sweep", mock.Anything)
}

func TestRun_OneFailureNeverAbortsTheRest(t *testing.T) {
	alerts := &mockAlertLister{}
	locks := &mockLockStore{}
	d := &mockDispatcher{}
	locks.On("Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	locks.On("Release", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	snapshot := []domain.Alert{
		{AlertID: "a1"}, {AlertID: "a2"}, {AlertID: "a3"}, {AlertID: "a4"},
	}
	alerts.On("ListAll", mock.Anything).Return(snapshot, nil)
	d.On("Dispatch", mock.Anything, snapshot[0], mock.Anything).Return(Outcome{AlertID: "a1", Status: StatusFailed, Reason: ReasonUserResolution})
	d.On("Dispatch", mock.Anything, snapshot[1], mock.Anything).Return(Outcome{AlertID: "a2", Status: StatusSent})
	d.On("Dispatch", mock.Anything, snapshot[2], mock.Anything).Return(Outcome{AlertID: "a3", Status: StatusSent})
	d.On("Dispatch", mock.Anything, snapshot[3], mock.Anything).Return(Outcome{AlertID: "a4", Status: StatusSent})

	svc := newTestService(alerts, locks, d, testListings)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Sent)
	assert.Equal(t, 1, report.Failed)
	d.AssertNumberOfCalls(t, "Dispatch", 4)
}

func TestRun_OpsNotifiedOnlyOnFailures(t *testing.T) {
	alerts := &mockAlertLister{}
	locks := &mockLockStore{}
	d := &mockDispatcher{}
	ops := &mockOps{}
	locks.On("Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	locks.On("Release", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	snapshot := []domain.Alert{{AlertID: "a1"}}
	alerts.On("ListAll", mock.Anything).Return(snapshot, nil)
	d.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(Outcome{AlertID: "a1", Status: StatusSent})

	svc := newTestService(alerts, locks, d, testListings)
	svc.ops = ops

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	ops.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_ArchivesReport(t *testing.T) {
	alerts := &mockAlertLister{}
	locks := &mockLockStore{}
	d := &mockDispatcher{}
	archive := &mockArchiver{}
	locks.On("Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	locks.On("Release", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	alerts.On("ListAll", mock.Anything).Return([]domain.Alert{}, nil)
	archive.On("PutReport", mock.Anything, mock.Anything, mock.Anything).Return("s3://reports/sweeps/x.json", nil)

	svc := newTestService(alerts, locks, d, testListings)
	svc.archive = archive

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	archive.AssertNumberOfCalls(t, "PutReport", 1)
}
