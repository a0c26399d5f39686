package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/northwind/salesportal/internal/db"
	"github.com/northwind/salesportal/internal/repository"
	"github.com/northwind/salesportal/internal/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testMaxUpload = 500 << 20

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := db.Init(ctx, "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(ctx, conn.DB, "sqlite"))
	return conn
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	conn := setupDB(t)
	s := NewAuthService(
		repository.NewCredentialRepository(conn),
		repository.NewRevocationRepository(conn),
		"test-secret-that-is-long-enough-for-hs256",
		"salesportal",
		2*time.Hour,
		8*time.Hour,
	)
	s.bcryptCost = bcrypt.MinCost
	return s
}

func newTestContentService(t *testing.T) (*ContentService, *storage.Memory) {
	t.Helper()
	conn := setupDB(t)
	blobs := storage.NewMemory(time.Hour)
	s := NewContentService(
		repository.NewContentRepository(conn),
		blobs,
		testMaxUpload,
		50,
		500,
		24*time.Hour,
	)
	return s, blobs
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }
