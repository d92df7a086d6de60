package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath  string
	JWTPublicKeyPath   string
	JWTExpiry          time.Duration
	RefreshTokenExpiry time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// Sweep settings.
	SweepWorkers      int
	SweepAlertTimeout time.Duration
	SweepLockTTL      time.Duration
	SweepCooldown     time.Duration // 0 disables the resend window
	SweepReportBucket string        // empty disables the S3 report archive
	SweepOpsTopicARN  string        // empty disables SNS ops notifications

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Sessions      string
	Verifications string
	Favorites     string
	Alerts        string
	Events        string
	SweepLocks    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "5000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "eu-central-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Verifications: getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
			Favorites:     getEnv("DYNAMO_TABLE_FAVORITES", "favorites"),
			Alerts:        getEnv("DYNAMO_TABLE_ALERTS", "alerts"),
			Events:        getEnv("DYNAMO_TABLE_EVENTS", "events"),
			SweepLocks:    getEnv("DYNAMO_TABLE_SWEEP_LOCKS", "sweep_locks"),
		},

		JWTPrivateKeyPath:  getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:   getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:          time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenExpiry: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "obvestila@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SweepWorkers:      getEnvInt("SWEEP_WORKERS", 4),
		SweepAlertTimeout: time.Duration(getEnvInt("SWEEP_ALERT_TIMEOUT_SECONDS", 15)) * time.Second,
		SweepLockTTL:      time.Duration(getEnvInt("SWEEP_LOCK_TTL_SECONDS", 300)) * time.Second,
		SweepCooldown:     time.Duration(getEnvInt("SWEEP_COOLDOWN_SECONDS", 0)) * time.Second,
		SweepReportBucket: getEnv("SWEEP_REPORT_BUCKET", ""),
		SweepOpsTopicARN:  getEnv("SWEEP_OPS_TOPIC_ARN", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
