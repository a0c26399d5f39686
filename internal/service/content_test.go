package service

import (
	"context"
	"testing"
	"time"

	"github.com/northwind/salesportal/internal/model"
	"github.com/northwind/salesportal/internal/repository"
	"github.com/northwind/salesportal/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThenGet_RoundTrip(t *testing.T) {
	s, _ := newTestContentService(t)
	ctx := context.Background()

	created, upload, err := s.Create(ctx, CreateContentInput{
		Category:    model.CategoryCaseStudies,
		Title:       "  Acme rollout  ",
		Description: strPtr("How Acme cut onboarding time"),
		Tags:        []string{"retail", "emea"},
	})
	require.NoError(t, err)
	assert.Nil(t, upload)
	assert.Equal(t, "Acme rollout", created.Title)
	assert.Equal(t, model.BlobNone, created.BlobStatus)
	assert.Equal(t, int64(1), created.Version)

	view, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Download)
	assert.Equal(t, created.ID, view.Item.ID)
	assert.Equal(t, model.CategoryCaseStudies, view.Item.Category)
	assert.Equal(t, "Acme rollout", view.Item.Title)
	assert.Equal(t, "How Acme cut onboarding time", *view.Item.Description)
	assert.Equal(t, model.Tags{"retail", "emea"}, view.Item.Tags)
}

func TestCreate_Validation(t *testing.T) {
	s, _ := newTestContentService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateContentInput
	}{
		{"missing category", CreateContentInput{Title: "x"}},
		{"unknown category", CreateContentInput{Category: "memes", Title: "x"}},
		{"missing title", CreateContentInput{Category: model.CategoryPricing}},
		{"file type without name", CreateContentInput{Category: model.CategoryPricing, Title: "x", FileType: strPtr("application/pdf")}},
		{"path in file name", CreateContentInput{Category: model.CategoryPricing, Title: "x", FileName: strPtr("../x.pdf"), FileType: strPtr("application/pdf")}},
		{"too large", CreateContentInput{Category: model.CategoryPricing, Title: "x", FileName: strPtr("x.pdf"), FileType: strPtr("application/pdf"), FileSize: int64Ptr(testMaxUpload + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.Create(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreate_WithFileIssuesUploadURL(t *testing.T) {
	s, _ := newTestContentService(t)
	ctx := context.Background()

	item, upload, err := s.Create(ctx, CreateContentInput{
		Category: model.CategorySalesDecks,
		Title:    "FY26 deck",
		FileName: strPtr("deck.pdf"),
		FileType: strPtr("application/pdf"),
		FileSize: int64Ptr(2048),
	})
	require.NoError(t, err)
	require.NotNil(t, upload)
	assert.Equal(t, "content/sales-decks/"+item.ID+"/deck.pdf", *item.FileKey)
	assert.Equal(t, model.BlobPending, item.BlobStatus)
	assert.Contains(t, upload.URL, *item.FileKey)
}

func TestUploadCycle(t *testing.T) {
	s, blobs := newTestContentService(t)
	ctx := context.Background()

	item, upload, err := s.Create(ctx, CreateContentInput{Category: model.CategoryTrainingVideos, Title: "Demo"})
	require.NoError(t, err)
	assert.Nil(t, upload)

	ticket, err := s.IssueUploadURL(ctx, UploadURLInput{ContentID: item.ID, FileName: "demo.mp4", FileType: "video/mp4"})
	require.NoError(t, err)
	wantKey := "content/training-videos/" + item.ID + "/demo.mp4"
	assert.Equal(t, wantKey, ticket.FileKey)
	assert.NotEmpty(t, ticket.URL)
	assert.Equal(t, int64(2), ticket.Item.Version)

	// Not uploaded yet: key is visible, no download URL.
	view, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, wantKey, *view.Item.FileKey)
	assert.Equal(t, model.BlobPending, view.Item.BlobStatus)
	assert.Nil(t, view.Download)

	_, err = s.ConfirmUpload(ctx, item.ID)
	assert.ErrorIs(t, err, ErrBlobMissing)

	blobs.Put(wantKey, "video/mp4", 4096)

	confirmed, err := s.ConfirmUpload(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BlobConfirmed, confirmed.BlobStatus)
	assert.Equal(t, int64(4096), *confirmed.FileSize)

	view, err = s.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Download)
	assert.Contains(t, view.Download.URL, wantKey)
}

func TestGet_ConfirmsPendingUploadLazily(t *testing.T) {
	s, blobs := newTestContentService(t)
	ctx := context.Background()

	item, _, err := s.Create(ctx, CreateContentInput{
		Category: model.CategoryPricing,
		Title:    "Price list",
		FileName: strPtr("prices.pdf"),
		FileType: strPtr("application/pdf"),
	})
	require.NoError(t, err)
	blobs.Put(*item.FileKey, "application/pdf", 100)

	view, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BlobConfirmed, view.Item.BlobStatus)
	assert.Equal(t, int64(2), view.Item.Version)
	require.NotNil(t, view.Download)
}

func TestGet_LeavesOversizedUploadPending(t *testing.T) {
	s, blobs := newTestContentService(t)
	ctx := context.Background()

	item, _, err := s.Create(ctx, CreateContentInput{
		Category: model.CategoryTrainingVideos,
		Title:    "All hands recording",
		FileName: strPtr("allhands.mp4"),
		FileType: strPtr("video/mp4"),
	})
	require.NoError(t, err)
	blobs.Put(*item.FileKey, "video/mp4", 4*testMaxUpload)

	view, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BlobPending, view.Item.BlobStatus)
	assert.Equal(t, int64(1), view.Item.Version)
	assert.Nil(t, view.Download)

	_, err = blobs.Head(ctx, *item.FileKey)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	stored, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BlobPending, stored.Item.BlobStatus)
}

func TestGet_NotFound(t *testing.T) {
	s, _ := newTestContentService(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrContentNotFound)

	_, err = s.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_OptimisticConcurrency(t *testing.T) {
	s, _ := newTestContentService(t)
	ctx := context.Background()

	item, _, err := s.Create(ctx, CreateContentInput{
		Category:    model.CategoryProposals,
		Title:       "Draft",
		Description: strPtr("v1"),
		Tags:        []string{"a"},
	})
	require.NoError(t, err)

	_, err = s.Update(ctx, UpdateContentInput{ID: item.ID, Title: "No version"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := s.Update(ctx, UpdateContentInput{ID: item.ID, Title: "Final", Version: int64Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Nil(t, updated.Description)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, int64(2), updated.Version)

	_, err = s.Update(ctx, UpdateContentInput{ID: item.ID, Title: "Stale", Version: int64Ptr(1)})
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	_, err = s.Update(ctx, UpdateContentInput{ID: "missing", Title: "x", Version: int64Ptr(1)})
	assert.ErrorIs(t, err, repository.ErrContentNotFound)
}

func TestDelete_MetadataThenBlob(t *testing.T) {
	s, blobs := newTestContentService(t)
	ctx := context.Background()

	item, _, err := s.Create(ctx, CreateContentInput{
		Category: model.CategoryProductSheets,
		Title:    "Sheet",
		FileName: strPtr("sheet.pdf"),
		FileType: strPtr("application/pdf"),
	})
	require.NoError(t, err)
	blobs.Put(*item.FileKey, "application/pdf", 10)

	require.NoError(t, s.Delete(ctx, item.ID))

	_, err = blobs.Head(ctx, *item.FileKey)
	assert.Error(t, err)

	err = s.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, repository.ErrContentNotFound)
}

func TestList_CategoryFilterAndLimits(t *testing.T) {
	s, _ := newTestContentService(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, cat := range []string{model.CategoryPricing, model.CategorySalesDecks, model.CategoryPricing, model.CategoryCaseStudies, model.CategoryPricing} {
		_, _, err := s.Create(ctx, CreateContentInput{Category: cat, Title: cat})
		require.NoError(t, err)
	}

	pricing, err := s.List(ctx, model.CategoryPricing, 0)
	require.NoError(t, err)
	require.Len(t, pricing, 3)
	for _, item := range pricing {
		assert.Equal(t, model.CategoryPricing, item.Category)
	}
	assert.True(t, pricing[0].CreatedAt.After(pricing[1].CreatedAt))

	limited, err := s.List(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	empty, err := s.List(ctx, model.CategoryProposals, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.List(ctx, "memes", 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIssueUploadURL_Errors(t *testing.T) {
	s, _ := newTestContentService(t)
	ctx := context.Background()

	_, err := s.IssueUploadURL(ctx, UploadURLInput{ContentID: "missing", FileName: "a.pdf", FileType: "application/pdf"})
	assert.ErrorIs(t, err, repository.ErrContentNotFound)

	_, err = s.IssueUploadURL(ctx, UploadURLInput{FileName: "a.pdf", FileType: "application/pdf"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.IssueUploadURL(ctx, UploadURLInput{ContentID: "x", FileName: "a.pdf"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConfirmUpload_RejectsOversizedObject(t *testing.T) {
	s, blobs := newTestContentService(t)
	ctx := context.Background()

	item, _, err := s.Create(ctx, CreateContentInput{Category: model.CategoryTrainingVideos, Title: "Long"})
	require.NoError(t, err)
	ticket, err := s.IssueUploadURL(ctx, UploadURLInput{ContentID: item.ID, FileName: "long.mp4", FileType: "video/mp4"})
	require.NoError(t, err)

	blobs.Put(ticket.FileKey, "video/mp4", testMaxUpload+1)

	_, err = s.ConfirmUpload(ctx, item.ID)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	_, err = blobs.Head(ctx, ticket.FileKey)
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	s, blobs := newTestContentService(t)
	ctx := context.Background()

	kept, _, err := s.Create(ctx, CreateContentInput{
		Category: model.CategoryPricing,
		Title:    "Kept",
		FileName: strPtr("kept.pdf"),
		FileType: strPtr("application/pdf"),
	})
	require.NoError(t, err)
	blobs.Put(*kept.FileKey, "application/pdf", 1)
	blobs.Put("content/pricing/gone/old.pdf", "application/pdf", 1)

	report, err := s.Sweep(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, []string{"content/pricing/gone/old.pdf"}, report.Orphans)
	assert.Equal(t, 0, report.Deleted)

	// Well past the grace period the still-pending record is reported.
	s.now = func() time.Time { return time.Now().UTC().Add(48 * time.Hour) }
	report, err = s.Sweep(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []string{kept.ID}, report.StalePending)

	_, err = blobs.Head(ctx, *kept.FileKey)
	assert.NoError(t, err)
	_, err = blobs.Head(ctx, "content/pricing/gone/old.pdf")
	assert.Error(t, err)
}

// uploadingStorage runs onList before listing, standing in for an upload
// that lands while a sweep is in progress.
type uploadingStorage struct {
	*storage.Memory
	onList func()
}

func (u *uploadingStorage) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if u.onList != nil {
		u.onList()
		u.onList = nil
	}
	return u.Memory.List(ctx, prefix)
}

func TestSweep_KeepsBlobUploadedDuringSweep(t *testing.T) {
	conn := setupDB(t)
	blobs := &uploadingStorage{Memory: storage.NewMemory(time.Hour)}
	s := NewContentService(repository.NewContentRepository(conn), blobs, testMaxUpload, 50, 500, 24*time.Hour)
	ctx := context.Background()

	var fresh *model.Content
	blobs.onList = func() {
		item, _, err := s.Create(ctx, CreateContentInput{
			Category: model.CategorySalesDecks,
			Title:    "Q3 launch deck",
			FileName: strPtr("launch.pdf"),
			FileType: strPtr("application/pdf"),
		})
		require.NoError(t, err)
		blobs.Put(*item.FileKey, "application/pdf", 512)
		fresh = item
	}

	report, err := s.Sweep(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, 1, report.Scanned)
	assert.Empty(t, report.Orphans)
	assert.Equal(t, 0, report.Deleted)

	_, err = blobs.Head(ctx, *fresh.FileKey)
	assert.NoError(t, err)
}
