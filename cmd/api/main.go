package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-rentals-api/internal/application/sweep"
	"github.com/go-rentals-api/internal/config"
	"github.com/go-rentals-api/internal/infrastructure/catalog"
	"github.com/go-rentals-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-rentals-api/internal/infrastructure/jwt"
	s3infra "github.com/go-rentals-api/internal/infrastructure/s3"
	"github.com/go-rentals-api/internal/infrastructure/smtp"
	"github.com/go-rentals-api/internal/infrastructure/sns"
	transporthttp "github.com/go-rentals-api/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider is optional; auth routes are disabled if keys are missing.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	mailer := smtp.NewMailer(cfg)
	listings := catalog.NewDefaultStore()

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	alertRepo := dynamo.NewAlertRepo(dynamoClient, cfg.DynamoTables.Alerts)

	deps := &transporthttp.Deps{
		UserRepo:         userRepo,
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications),
		FavoriteRepo:     dynamo.NewFavoriteRepo(dynamoClient, cfg.DynamoTables.Favorites),
		AlertRepo:        alertRepo,
		EventRepo:        dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events),
		Catalog:          listings,
		Mailer:           mailer,
		JWTProvider:      jwtProvider,
		Sweep:            newSweepService(cfg, dynamoClient, userRepo, alertRepo, listings, mailer),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// newSweepService wires the sweep pipeline used by POST /v1/admin/sweep. The
// S3 archive and SNS ops topic are optional and skipped when unconfigured.
func newSweepService(
	cfg *config.Config,
	dynamoClient *dynamodb.Client,
	userRepo *dynamo.UserRepo,
	alertRepo *dynamo.AlertRepo,
	listings *catalog.Store,
	mailer smtp.Mailer,
) *sweep.Service {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	deps := sweep.ServiceDeps{
		Alerts:       alertRepo,
		Catalog:      listings,
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
			log.Printf("WARN: SNS notifier not available: %v", err)
		}
	}
	return sweep.NewService(deps)
}
