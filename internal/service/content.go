package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/northwind/salesportal/internal/model"
	"github.com/northwind/salesportal/internal/repository"
	"github.com/northwind/salesportal/internal/storage"
	"github.com/northwind/salesportal/internal/validation"
)

type CreateContentInput struct {
	Category    string
	Title       string
	Description *string
	Tags        []string
	FileName    *string
	FileType    *string
	FileSize    *int64
}

type UpdateContentInput struct {
	ID          string
	Title       string
	Description *string
	Tags        []string
	Version     *int64
}

type UploadURLInput struct {
	ContentID string
	FileName  string
	FileType  string
	FileSize  *int64
}

// UploadTicket is a signed upload URL together with the record it was
// attached to.
type UploadTicket struct {
	URL       string
	ExpiresAt time.Time
	FileKey   string
	Item      *model.Content
}

// ContentView is a record plus a download URL when its file is confirmed.
type ContentView struct {
	Item     *model.Content
	Download *storage.PresignedURL
}

// SweepReport summarises a pass over the blob store.
type SweepReport struct {
	Scanned      int
	Orphans      []string
	Deleted      int
	StalePending []string
}

type ContentService struct {
	contentRepository repository.ContentRepository
	storage           storage.Storage
	maxUploadSize     int64
	defaultLimit      int
	maxLimit          int
	pendingGrace      time.Duration
	now               func() time.Time
}

func NewContentService(
	contentRepository repository.ContentRepository,
	storage storage.Storage,
	maxUploadSize int64,
	defaultLimit int,
	maxLimit int,
	pendingGrace time.Duration,
) *ContentService {
	return &ContentService{
		contentRepository: contentRepository,
		storage:           storage,
		maxUploadSize:     maxUploadSize,
		defaultLimit:      defaultLimit,
		maxLimit:          maxLimit,
		pendingGrace:      pendingGrace,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

func (s *ContentService) MaxUploadSize() int64 {
	return s.maxUploadSize
}

// List returns up to limit records, newest first. limit <= 0 means the
// default; anything above the maximum is clamped.
func (s *ContentService) List(ctx context.Context, category string, limit int) ([]*model.Content, error) {
	if category != "" && !model.IsCategory(category) {
		return nil, invalid(fmt.Sprintf("unknown category: %s", category))
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	items, err := s.contentRepository.List(ctx, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	if items == nil {
		items = []*model.Content{}
	}
	return items, nil
}

// Get returns a record and, when its file is confirmed, a download URL.
// A pending file that has since appeared in the blob store is confirmed on
// the way through.
func (s *ContentService) Get(ctx context.Context, id string) (*ContentView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id is required")
	}

	item, err := s.contentRepository.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get content %s: %w", id, err)
	}

	if item.BlobStatus == model.BlobPending {
		item = s.tryConfirm(ctx, item)
	}

	view := &ContentView{Item: item}
	if item.BlobStatus == model.BlobConfirmed && item.HasBlob() {
		download, err := s.storage.PresignGet(ctx, *item.FileKey)
		if err != nil {
			return nil, fmt.Errorf("failed to sign download for %s: %w", id, err)
		}
		view.Download = download
	}
	return view, nil
}

// tryConfirm checks the blob store for a pending file. Any failure leaves the
// record pending; get must not fail because of it.
func (s *ContentService) tryConfirm(ctx context.Context, item *model.Content) *model.Content {
	info, err := s.storage.Head(ctx, *item.FileKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return item
	}
	if err != nil {
		slog.Warn("failed to check pending upload", "error", err, "content_id", item.ID, "key", *item.FileKey)
		return item
	}
	if s.removeOversized(ctx, item.ID, info) {
		return item
	}

	confirmed := *item
	expected := confirmed.Version
	confirmed.ConfirmFile(info.Size)
	confirmed.Version++
	confirmed.UpdatedAt = s.now()

	err = s.contentRepository.Update(ctx, &confirmed, expected)
	if err != nil {
		slog.Warn("failed to record confirmed upload", "error", err, "content_id", item.ID)
		return item
	}

	slog.Info("upload confirmed", "content_id", item.ID, "key", *item.FileKey, "size", info.Size)
	return &confirmed
}

// Create stores a new record. With file metadata it also attaches a blob key
// and returns a signed upload URL for it.
func (s *ContentService) Create(ctx context.Context, in CreateContentInput) (*model.Content, *storage.PresignedURL, error) {
	err := validation.ValidateRequired("category", in.Category)
	if err != nil {
		return nil, nil, invalid(err.Error())
	}
	if !model.IsCategory(in.Category) {
		return nil, nil, invalid(fmt.Sprintf("unknown category: %s", in.Category))
	}

	title, description, tags, err := validateMetadata(in.Title, in.Description, in.Tags)
	if err != nil {
		return nil, nil, err
	}

	hasFile := in.FileName != nil || in.FileType != nil || in.FileSize != nil
	if hasFile {
		err = s.validateFile(deref(in.FileName), deref(in.FileType), in.FileSize)
		if err != nil {
			return nil, nil, err
		}
	}

	now := s.now()
	item := &model.Content{
		ID:          uuid.NewString(),
		Category:    in.Category,
		Title:       title,
		Description: description,
		Tags:        tags,
		BlobStatus:  model.BlobNone,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var upload *storage.PresignedURL
	if hasFile {
		key := model.FileKey(item.Category, item.ID, *in.FileName)
		upload, err = s.storage.PresignPut(ctx, key, *in.FileType, derefSize(in.FileSize))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to sign upload: %w", err)
		}
		item.AttachFile(key, *in.FileName, *in.FileType, in.FileSize)
	}

	err = s.contentRepository.Create(ctx, item)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create content: %w", err)
	}

	slog.Info("content created", "content_id", item.ID, "category", item.Category, "has_file", hasFile)
	return item, upload, nil
}

// Update overwrites title, description and tags. The caller must echo the
// version it read; omitted description and tags are cleared.
func (s *ContentService) Update(ctx context.Context, in UpdateContentInput) (*model.Content, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, invalid("id is required")
	}
	if in.Version == nil {
		return nil, invalid("version is required")
	}

	title, description, tags, err := validateMetadata(in.Title, in.Description, in.Tags)
	if err != nil {
		return nil, err
	}

	item, err := s.contentRepository.ByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content %s: %w", in.ID, err)
	}
	if item.Version != *in.Version {
		return nil, fmt.Errorf("content %s is at version %d: %w", in.ID, item.Version, repository.ErrVersionConflict)
	}

	item.Title = title
	item.Description = description
	item.Tags = tags
	item.Version++
	item.UpdatedAt = s.now()

	err = s.contentRepository.Update(ctx, item, *in.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update content %s: %w", in.ID, err)
	}

	slog.Info("content updated", "content_id", item.ID, "version", item.Version)
	return item, nil
}

// Delete removes the record first and its blob second. A blob that cannot be
// deleted is left for the sweep.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id is required")
	}

	old, err := s.contentRepository.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete content %s: %w", id, err)
	}

	if old.HasBlob() {
		err = s.storage.Delete(ctx, *old.FileKey)
		if err != nil {
			slog.Warn("blob left behind after delete", "error", err, "content_id", id, "key", *old.FileKey)
		}
	}

	slog.Info("content deleted", "content_id", id)
	return nil
}

// IssueUploadURL attaches a new file to an existing record and signs an
// upload URL for it. The record is left pending until the upload is confirmed.
func (s *ContentService) IssueUploadURL(ctx context.Context, in UploadURLInput) (*UploadTicket, error) {
	err := validation.ValidateRequired("contentId", in.ContentID)
	if err != nil {
		return nil, invalid(err.Error())
	}
	err = s.validateFile(in.FileName, in.FileType, in.FileSize)
	if err != nil {
		return nil, err
	}

	item, err := s.contentRepository.ByID(ctx, in.ContentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content %s: %w", in.ContentID, err)
	}

	key := model.FileKey(item.Category, item.ID, in.FileName)
	upload, err := s.storage.PresignPut(ctx, key, in.FileType, derefSize(in.FileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload: %w", err)
	}

	expected := item.Version
	item.AttachFile(key, in.FileName, in.FileType, in.FileSize)
	item.Version++
	item.UpdatedAt = s.now()

	err = s.contentRepository.Update(ctx, item, expected)
	if err != nil {
		return nil, fmt.Errorf("failed to attach file to %s: %w", in.ContentID, err)
	}

	slog.Info("upload url issued", "content_id", item.ID, "key", key)
	return &UploadTicket{
		URL:       upload.URL,
		ExpiresAt: upload.ExpiresAt,
		FileKey:   key,
		Item:      item,
	}, nil
}

// ConfirmUpload marks the record's file as present after checking the blob
// store, recording the size actually stored.
func (s *ContentService) ConfirmUpload(ctx context.Context, id string) (*model.Content, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id is required")
	}

	item, err := s.contentRepository.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get content %s: %w", id, err)
	}
	if !item.HasBlob() {
		return nil, fmt.Errorf("content %s has no file attached: %w", id, ErrBlobMissing)
	}

	info, err := s.storage.Head(ctx, *item.FileKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("content %s: %w", id, ErrBlobMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check upload for %s: %w", id, err)
	}

	if s.removeOversized(ctx, id, info) {
		return nil, ErrFileTooLarge
	}

	if item.BlobStatus == model.BlobConfirmed && item.FileSize != nil && *item.FileSize == info.Size {
		return item, nil
	}

	expected := item.Version
	item.ConfirmFile(info.Size)
	item.Version++
	item.UpdatedAt = s.now()

	err = s.contentRepository.Update(ctx, item, expected)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm upload for %s: %w", id, err)
	}

	slog.Info("upload confirmed", "content_id", id, "key", *item.FileKey, "size", info.Size)
	return item, nil
}

// removeOversized deletes an uploaded object larger than the ceiling and
// reports whether it did so. The record stays pending.
func (s *ContentService) removeOversized(ctx context.Context, id string, info *storage.ObjectInfo) bool {
	if info.Size <= s.maxUploadSize {
		return false
	}
	slog.Warn("rejecting oversized upload", "content_id", id, "key", info.Key, "size", info.Size, "max", s.maxUploadSize)
	err := s.storage.Delete(ctx, info.Key)
	if err != nil {
		slog.Warn("failed to remove oversized upload", "error", err, "key", info.Key)
	}
	return true
}

// Sweep deletes blobs under the content prefix that no record references and
// reports records whose upload has stayed pending past the grace period.
func (s *ContentService) Sweep(ctx context.Context, dryRun bool) (*SweepReport, error) {
	// Blobs are listed before records are loaded. A record always exists
	// before its blob, so anything listed here is visible to WithFiles.
	objects, err := s.storage.List(ctx, model.ContentKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	items, err := s.contentRepository.WithFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records with files: %w", err)
	}

	report := &SweepReport{}
	referenced := make(map[string]bool, len(items))
	cutoff := s.now().Add(-s.pendingGrace)
	for _, item := range items {
		referenced[*item.FileKey] = true
		if item.BlobStatus == model.BlobPending && item.UpdatedAt.Before(cutoff) {
			report.StalePending = append(report.StalePending, item.ID)
		}
	}

	for _, obj := range objects {
		report.Scanned++
		if referenced[obj.Key] {
			continue
		}
		report.Orphans = append(report.Orphans, obj.Key)
		if dryRun {
			continue
		}

		err = s.storage.Delete(ctx, obj.Key)
		if err != nil {
			slog.Warn("failed to delete orphaned blob", "error", err, "key", obj.Key)
			continue
		}
		report.Deleted++
	}

	slog.Info("sweep finished",
		"scanned", report.Scanned,
		"orphans", len(report.Orphans),
		"deleted", report.Deleted,
		"stale_pending", len(report.StalePending),
		"dry_run", dryRun,
	)
	return report, nil
}

func (s *ContentService) validateFile(fileName, fileType string, fileSize *int64) error {
	err := validation.ValidateFileName(fileName)
	if err != nil {
		return invalid(err.Error())
	}
	err = validation.ValidateContentType(fileType)
	if err != nil {
		return invalid(err.Error())
	}
	if fileSize != nil {
		err = validation.ValidateFileSize(*fileSize, s.maxUploadSize)
		if err != nil {
			return invalid(err.Error())
		}
	}
	return nil
}

func validateMetadata(title string, description *string, tags []string) (string, *string, model.Tags, error) {
	err := validation.ValidateTitle(title)
	if err != nil {
		return "", nil, nil, invalid(err.Error())
	}
	title = strings.TrimSpace(title)

	if description != nil {
		err = validation.ValidateDescription(*description)
		if err != nil {
			return "", nil, nil, invalid(err.Error())
		}
		if strings.TrimSpace(*description) == "" {
			description = nil
		}
	}

	normalized, err := validation.NormalizeTags(tags)
	if err != nil {
		return "", nil, nil, invalid(err.Error())
	}
	return title, description, normalized, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefSize(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
