package main

import (
	"context"
	"errors"
	"os"

	"github.com/go-rentals-api/internal/application/sweep"
	"github.com/go-rentals-api/internal/config"
	"github.com/go-rentals-api/internal/infrastructure/catalog"
	"github.com/go-rentals-api/internal/infrastructure/dynamo"
	s3infra "github.com/go-rentals-api/internal/infrastructure/s3"
	"github.com/go-rentals-api/internal/infrastructure/smtp"
	"github.com/go-rentals-api/internal/infrastructure/sns"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Runs one complete sweep pass and exits. Meant to be invoked from cron; a
// pass already running elsewhere is not an error.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, reading from environment")
	}

	cfg := config.Load()

	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	alertRepo := dynamo.NewAlertRepo(dynamoClient, cfg.DynamoTables.Alerts)
	mailer := smtp.NewMailer(cfg)

	deps := sweep.ServiceDeps{
		Alerts:       alertRepo,
		Catalog:      catalog.NewDefaultStore(),
		Locks:        dynamo.NewLockRepo(dynamoClient, cfg.DynamoTables.SweepLocks),
		Dispatcher:   sweep.NewDispatcher(alertRepo, userRepo, mailer, cfg.SweepCooldown, logger),
		Workers:      cfg.SweepWorkers,
		AlertTimeout: cfg.SweepAlertTimeout,
		LockTTL:      cfg.SweepLockTTL,
		Logger:       logger,
	}
	if cfg.SweepReportBucket != "" {
		deps.Archive = s3infra.NewArchive(s3infra.NewClient(cfg), cfg.SweepReportBucket)
	}
	if cfg.SweepOpsTopicARN != "" {
		if ops, err := sns.NewNotifier(cfg); err == nil {
			deps.Ops = ops
		} else {
			logger.WithError(err).Warn("SNS notifier not available")
		}
	}

	svc := sweep.NewService(deps)
	report, err := svc.Run(context.Background())
	if err != nil {
		if errors.Is(err, sweep.ErrSweepInProgress) {
			logger.Info("another sweep holds the lease; nothing to do")
			return
		}
		logger.WithError(err).Error("sweep failed")
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"alerts":  report.Alerts,
		"sent":    report.Sent,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("sweep complete")
	if report.Failed > 0 {
		os.Exit(1)
	}
}
