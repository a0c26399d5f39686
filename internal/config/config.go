package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
	StorePostgres = "pgx"

	StorageS3     = "s3"
	StorageMemory = "memory"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Security
	JWTSecret               string
	JWTIssuer               string
	SessionExpiryAdmin      time.Duration
	SessionExpiryContractor time.Duration
	AuthRateLimit           int
	AuthRateWindow          time.Duration
	ContactRateLimit        int
	ContactRateWindow       time.Duration
	TrustProxyHeaders       bool // Rate limits key on X-Real-IP/X-Forwarded-For; only behind a proxy that sets them
	CORSAllowedOrigins      []string

	// Requests
	RequestTimeout   time.Duration
	ListDefaultLimit int
	ListMaxLimit     int

	// Store (dynamodb, sqlite or pgx)
	StoreDriver  string
	DBConnection string

	// DynamoDB
	DynamoEndpoint           string // Optional: DynamoDB Local
	DynamoCredentialsTable   string
	DynamoContentTable       string
	DynamoContentCategoryGSI string
	DynamoRevocationsTable   string

	// Storage (S3-compatible: AWS S3, MinIO, Cloudflare R2, etc.)
	StorageDriver      string
	AWSRegion          string
	S3Bucket           string
	S3AccessKey        string
	S3SecretKey        string
	S3Endpoint         string        // Optional: for S3-compatible services
	S3PresignExpiry    time.Duration // Signed upload/download URL lifetime
	MaxUploadSize      int64
	PendingUploadGrace time.Duration

	// Email (contact form)
	EmailFrom        string
	SalesInbox       string
	ResendAPIKey     string
	ResendAudienceID string

	// Observability (optional)
	SentryDSN      string
	MetricsEnabled bool
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Northwind"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		// Security
		JWTSecret:               envRequired("JWT_SECRET"),
		JWTIssuer:               envString("JWT_ISSUER", "salesportal"),
		SessionExpiryAdmin:      envDuration("SESSION_EXPIRY_ADMIN", 2*time.Hour),
		SessionExpiryContractor: envDuration("SESSION_EXPIRY_CONTRACTOR", 8*time.Hour),
		AuthRateLimit:           envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:          envDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		ContactRateLimit:        envInt("CONTACT_RATE_LIMIT", 5),
		ContactRateWindow:       envDuration("CONTACT_RATE_WINDOW", time.Hour),
		TrustProxyHeaders:       envBool("TRUST_PROXY_HEADERS", false),
		CORSAllowedOrigins:      envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Requests
		RequestTimeout:   envDuration("REQUEST_TIMEOUT", 15*time.Second),
		ListDefaultLimit: envInt("LIST_DEFAULT_LIMIT", 50),
		ListMaxLimit:     envInt("LIST_MAX_LIMIT", 500),

		// Store
		StoreDriver:  envString("STORE_DRIVER", StoreDynamoDB),
		DBConnection: envString("DB_CONNECTION", "./data/portal.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// DynamoDB
		DynamoEndpoint:           envString("DYNAMODB_ENDPOINT", ""),
		DynamoCredentialsTable:   envString("DYNAMODB_CREDENTIALS_TABLE", "portal-credentials"),
		DynamoContentTable:       envString("DYNAMODB_CONTENT_TABLE", "portal-content"),
		DynamoContentCategoryGSI: envString("DYNAMODB_CONTENT_CATEGORY_INDEX", "category-createdAt-index"),
		DynamoRevocationsTable:   envString("DYNAMODB_REVOCATIONS_TABLE", "portal-revoked-tokens"),

		// Storage
		StorageDriver:      envString("STORAGE_DRIVER", StorageS3),
		AWSRegion:          envString("AWS_REGION", "us-east-1"),
		S3Bucket:           envString("S3_BUCKET", ""),
		S3AccessKey:        envString("S3_ACCESS_KEY", ""),
		S3SecretKey:        envString("S3_SECRET_KEY", ""),
		S3Endpoint:         envString("S3_ENDPOINT", ""),
		S3PresignExpiry:    envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
		MaxUploadSize:      envInt64("MAX_UPLOAD_SIZE", 500<<20), // 500 MiB
		PendingUploadGrace: envDuration("PENDING_UPLOAD_GRACE", 24*time.Hour),

		// Email
		EmailFrom:        envString("EMAIL_FROM", "noreply@example.com"),
		SalesInbox:       envString("SALES_INBOX", "sales@example.com"),
		ResendAPIKey:     envString("RESEND_API_KEY", ""),
		ResendAudienceID: envString("RESEND_AUDIENCE_ID", ""),

		// Observability
		SentryDSN:      envString("SENTRY_DSN", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}

	if cfg.StorageDriver == StorageS3 && cfg.S3Bucket == "" {
		slog.Error("config required env var missing", "key", "S3_BUCKET", "hint", "set STORAGE_DRIVER=memory for local testing")
		os.Exit(1)
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction rejects settings that are only acceptable for local development.
func validateProduction(cfg *Config) {
	if cfg.StorageDriver == StorageMemory {
		slog.Error("production deployment requires persistent blob storage", "storage_driver", cfg.StorageDriver)
		os.Exit(1)
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires JWT_SECRET of at least 32 bytes")
		os.Exit(1)
	}
	if cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, contact form submissions will fail")
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int64, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList splits a comma separated value, dropping empty entries.
func envList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) UsesSQL() bool {
	return c.StoreDriver == StoreSQLite || c.StoreDriver == StorePostgres
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to log at startup.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:                 c.AppName,
		AppEnv:                  c.AppEnv,
		Port:                    c.Port,
		JWTIssuer:               c.JWTIssuer,
		SessionExpiryAdmin:      c.SessionExpiryAdmin,
		SessionExpiryContractor: c.SessionExpiryContractor,
		TrustProxyHeaders:       c.TrustProxyHeaders,
		CORSAllowedOrigins:      c.CORSAllowedOrigins,
		RequestTimeout:          c.RequestTimeout,
		StoreDriver:             c.StoreDriver,
		DynamoEndpoint:          c.DynamoEndpoint,
		DynamoContentTable:      c.DynamoContentTable,
		StorageDriver:           c.StorageDriver,
		AWSRegion:               c.AWSRegion,
		S3Bucket:                c.S3Bucket,
		S3Endpoint:              c.S3Endpoint,
		S3PresignExpiry:         c.S3PresignExpiry,
		MaxUploadSize:           c.MaxUploadSize,
		MetricsEnabled:          c.MetricsEnabled,
	}
}
