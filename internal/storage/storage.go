package storage

import (
	"context"
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage is the blob store behind content files. File bytes never pass
// through the server: clients move them with presigned URLs.
type Storage interface {
	// PresignPut returns a URL the client can PUT the object to. When size is
	// positive it is signed into the request, so the store rejects any body
	// of a different length.
	PresignPut(ctx context.Context, key, contentType string, size int64) (*PresignedURL, error)

	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string) (*PresignedURL, error)

	// Head reports the object's metadata or ErrObjectNotFound.
	Head(ctx context.Context, key string) (*ObjectInfo, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every object under prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

type PresignedURL struct {
	URL       string
	ExpiresAt time.Time
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}
