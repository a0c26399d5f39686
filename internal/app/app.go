package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jmoiron/sqlx"
	"github.com/northwind/salesportal/internal/config"
	"github.com/northwind/salesportal/internal/db"
	"github.com/northwind/salesportal/internal/repository"
	"github.com/northwind/salesportal/internal/service"
	"github.com/northwind/salesportal/internal/storage"
)

type App struct {
	Cfg     *config.Config
	DB      *sqlx.DB         // set for sqlite and pgx stores
	Dynamo  *dynamodb.Client // set for the dynamodb store
	Storage storage.Storage

	AuthService    *service.AuthService
	ContentService *service.ContentService
	EmailService   *service.EmailService
}

type repositories struct {
	credentials repository.CredentialRepository
	revocations repository.RevocationRepository
	contents    repository.ContentRepository
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Cfg: cfg}

	// Repositories
	repos, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	// Storage
	blobs, err := newStorage(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = blobs

	// Services
	a.AuthService = service.NewAuthService(
		repos.credentials,
		repos.revocations,
		cfg.JWTSecret,
		cfg.JWTIssuer,
		cfg.SessionExpiryAdmin,
		cfg.SessionExpiryContractor,
	)
	a.ContentService = service.NewContentService(
		repos.contents,
		blobs,
		cfg.MaxUploadSize,
		cfg.ListDefaultLimit,
		cfg.ListMaxLimit,
		cfg.PendingUploadGrace,
	)
	a.EmailService = service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.SalesInbox,
		cfg.ResendAudienceID,
		cfg.AppName,
		cfg.IsDevelopment(),
	)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (repositories, error) {
	cfg := a.Cfg

	switch cfg.StoreDriver {
	case config.StoreDynamoDB:
		client, err := repository.NewDynamoClient(ctx, DynamoConfig(cfg))
		if err != nil {
			return repositories{}, fmt.Errorf("failed to initialize dynamodb: %w", err)
		}
		a.Dynamo = client

		// DynamoDB Local starts empty.
		if cfg.DynamoEndpoint != "" {
			err = repository.CreateTables(ctx, client, DynamoTables(cfg))
			if err != nil {
				return repositories{}, fmt.Errorf("failed to create local tables: %w", err)
			}
		}

		return repositories{
			credentials: repository.NewDynamoCredentialRepository(client, cfg.DynamoCredentialsTable),
			revocations: repository.NewDynamoRevocationRepository(client, cfg.DynamoRevocationsTable),
			contents:    repository.NewDynamoContentRepository(client, cfg.DynamoContentTable, cfg.DynamoContentCategoryGSI),
		}, nil

	case config.StoreSQLite, config.StorePostgres:
		database, err := db.Init(ctx, cfg.StoreDriver, cfg.DBConnection)
		if err != nil {
			return repositories{}, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = database

		err = db.RunMigrations(ctx, database.DB, cfg.StoreDriver)
		if err != nil {
			_ = a.Close()
			return repositories{}, fmt.Errorf("failed to run migrations: %w", err)
		}

		return repositories{
			credentials: repository.NewCredentialRepository(database),
			revocations: repository.NewRevocationRepository(database),
			contents:    repository.NewContentRepository(database),
		}, nil
	}

	return repositories{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		s3, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// S3-compatible endpoints in development usually start without the bucket.
		if cfg.S3Endpoint != "" {
			err = s3.EnsureBucket(ctx)
			if err != nil {
				return nil, err
			}
		}
		return s3, nil

	case config.StorageMemory:
		slog.Warn("using in-memory blob storage, uploads are lost on restart")
		return storage.NewMemory(cfg.S3PresignExpiry), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// DynamoConfig derives client settings from cfg. DynamoDB Local accepts any
// static credentials; everywhere else the default AWS chain is used.
func DynamoConfig(cfg *config.Config) repository.DynamoConfig {
	dc := repository.DynamoConfig{
		Region:   cfg.AWSRegion,
		Endpoint: cfg.DynamoEndpoint,
	}
	if cfg.DynamoEndpoint != "" {
		dc.AccessKey = "local"
		dc.SecretKey = "local"
	}
	return dc
}

func DynamoTables(cfg *config.Config) repository.DynamoTables {
	return repository.DynamoTables{
		Content:       cfg.DynamoContentTable,
		CategoryIndex: cfg.DynamoContentCategoryGSI,
		Credentials:   cfg.DynamoCredentialsTable,
		Revocations:   cfg.DynamoRevocationsTable,
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
