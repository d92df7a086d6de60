package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-rentals-api/internal/domain"
	"github.com/go-rentals-api/internal/pkg/id"
)

// ErrSweepInProgress is returned when another process holds the run lease.
var ErrSweepInProgress = errors.New("a sweep is already in progress")

const lockID = "sweep"

// Report summarizes one complete sweep pass.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Alerts     int       `json:"alerts"`
	Sent       int       `json:"sent"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes"`
}

type alertLister interface {
	ListAll(ctx context.Context) ([]domain.Alert, error)
}

type catalogStore interface {
	All() []domain.Listing
}

type lockStore interface {
	Acquire(ctx context.Context, lockID, holder string, ttl time.Duration) error
	Release(ctx context.Context, lockID, holder string) error
}

type alertDispatcher interface {
	Dispatch(ctx context.Context, a domain.Alert, listings []domain.Listing) Outcome
}

type reportArchiver interface {
	PutReport(ctx context.Context, runID string, report interface{}) (string, error)
}

type opsNotifier interface {
	Publish(ctx context.Context, subject, message string) error
}

// Service runs sweep passes. It is stateless across runs: the only durable
// traces of a pass are committed last_sent_at updates, which survive
// cancellation and are never rolled back.
type Service struct {
	alerts     alertLister
	catalog    catalogStore
	locks      lockStore
	dispatcher alertDispatcher

	workers      int
	alertTimeout time.Duration
	lockTTL      time.Duration

	archive reportArchiver // nil disables report archiving
	ops     opsNotifier    // nil disables ops notifications

	logger *logrus.Logger
}

type ServiceDeps struct {
	Alerts     alertLister
	Catalog    catalogStore
	Locks      lockStore
	Dispatcher alertDispatcher

	Workers      int
	AlertTimeout time.Duration
	LockTTL      time.Duration

	Archive reportArchiver
	Ops     opsNotifier

	Logger *logrus.Logger
}

func NewService(deps ServiceDeps) *Service {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	return &Service{
		alerts:       deps.Alerts,
		catalog:      deps.Catalog,
		locks:        deps.Locks,
		dispatcher:   deps.Dispatcher,
		workers:      workers,
		alertTimeout: deps.AlertTimeout,
		lockTTL:      deps.LockTTL,
		archive:      deps.Archive,
		ops:          deps.Ops,
		logger:       deps.Logger,
	}
}

// Run executes one complete sweep pass: acquire the run lease, snapshot the
// alerts, dispatch each one through a bounded worker pool, release the lease.
// One alert's failure never aborts the rest; a per-alert timeout bounds how
// long a single slow dependency can stall a worker.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	runID := id.New()
	if err := s.locks.Acquire(ctx, lockID, runID, s.lockTTL); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrSweepInProgress
		}
		return nil, fmt.Errorf("acquire sweep lease: %w", err)
	}
	defer func() {
		if err := s.locks.Release(context.Background(), lockID, runID); err != nil {
			s.logger.WithField("run_id", runID).WithError(err).Warn("failed to release sweep lease")
		}
	}()

	started := time.Now().UTC()
	alerts, err := s.alerts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alert snapshot: %w", err)
	}
	listings := s.catalog.All()

	s.logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"alerts":  len(alerts),
		"workers": s.workers,
	}).Info("sweep started")

	outcomes := make([]Outcome, len(alerts))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.dispatchOne(ctx, alerts[i], listings)
			}
		}()
	}
	for i := range alerts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report := &Report{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Alerts:     len(alerts),
		Outcomes:   outcomes,
	}
	for _, o := range outcomes {
		switch o.Status {
		case StatusSent:
			report.Sent++
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"sent":     report.Sent,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("sweep finished")

	s.archiveReport(ctx, report)
	s.notifyOps(ctx, report)
	return report, nil
}

func (s *Service) dispatchOne(ctx context.Context, a domain.Alert, listings []domain.Listing) Outcome {
	actx := ctx
	if s.alertTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, s.alertTimeout)
		defer cancel()
	}
	o := s.dispatcher.Dispatch(actx, a, listings)
	if o.Status == StatusFailed {
		s.logger.WithFields(logrus.Fields{
			"alert_id": o.AlertID,
			"reason":   string(o.Reason),
			"error":    fmt.Sprint(o.Err),
		}).Warn("alert dispatch failed")
	}
	return o
}

func (s *Service) archiveReport(ctx context.Context, report *Report) {
	if s.archive == nil {
		return
	}
	url, err := s.archive.PutReport(ctx, report.RunID, report)
	if err != nil {
		s.logger.WithField("run_id", report.RunID).WithError(err).Warn("failed to archive sweep report")
		return
	}
	s.logger.WithFields(logrus.Fields{"run_id": report.RunID, "url": url}).Info("sweep report archived")
}

func (s *Service) notifyOps(ctx context.Context, report *Report) {
	if s.ops == nil || report.Failed == 0 {
		return
	}
	msg := fmt.Sprintf("Sweep %s finished with %d failed of %d alerts (sent %d, skipped %d).",
		report.RunID, report.Failed, report.Alerts, report.Sent, report.Skipped)
	if err := s.ops.Publish(ctx, "Sweep failures", msg); err != nil {
		s.logger.WithField("run_id", report.RunID).WithError(err).Warn("failed to publish ops notification")
	}
}
