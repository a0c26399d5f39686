package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_HeadListDelete(t *testing.T) {
	m := NewMemory(time.Hour)
	ctx := context.Background()

	_, err := m.Head(ctx, "content/pricing/a/x.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	m.Put("content/pricing/a/x.pdf", "application/pdf", 42)
	m.Put("content/pricing/b/y.pdf", "application/pdf", 7)
	m.Put("other/z.txt", "text/plain", 1)

	info, err := m.Head(ctx, "content/pricing/a/x.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.Size)

	objs, err := m.List(ctx, "content/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "content/pricing/a/x.pdf", objs[0].Key)

	require.NoError(t, m.Delete(ctx, "content/pricing/a/x.pdf"))
	require.NoError(t, m.Delete(ctx, "content/pricing/a/x.pdf"))
	_, err = m.Head(ctx, "content/pricing/a/x.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMemory_PresignExpiry(t *testing.T) {
	m := NewMemory(15 * time.Minute)
	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	u, err := m.PresignPut(context.Background(), "content/pricing/a/x.pdf", "application/pdf", 10)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(15*time.Minute), u.ExpiresAt)
	assert.True(t, strings.HasPrefix(u.URL, "memory:///content/pricing/a/x.pdf?"))
}

func TestS3Storage_PresignOffline(t *testing.T) {
	s, err := NewS3Storage(context.Background(), S3Config{
		Region:        "us-east-1",
		Bucket:        "portal-files",
		AccessKey:     "minioadmin",
		SecretKey:     "minioadmin",
		Endpoint:      "http://127.0.0.1:9000",
		PresignExpiry: 15 * time.Minute,
	})
	require.NoError(t, err)

	before := time.Now()
	put, err := s.PresignPut(context.Background(), "content/sales-decks/c1/deck.pdf", "application/pdf", 2048)
	require.NoError(t, err)
	assert.Contains(t, put.URL, "/portal-files/content/sales-decks/c1/deck.pdf")
	assert.Contains(t, put.URL, "X-Amz-Expires=900")
	assert.WithinDuration(t, before.Add(15*time.Minute), put.ExpiresAt, 5*time.Second)

	get, err := s.PresignGet(context.Background(), "content/sales-decks/c1/deck.pdf")
	require.NoError(t, err)
	assert.Contains(t, get.URL, "X-Amz-Signature=")
}
