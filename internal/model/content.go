package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	CategoryTrainingVideos = "training-videos"
	CategoryPricing        = "pricing"
	CategoryCaseStudies    = "case-studies"
	CategorySalesDecks     = "sales-decks"
	CategoryProductSheets  = "product-sheets"
	CategoryProposals      = "proposals"
)

// Categories lists every accepted content category.
var Categories = []string{
	CategoryTrainingVideos,
	CategoryPricing,
	CategoryCaseStudies,
	CategorySalesDecks,
	CategoryProductSheets,
	CategoryProposals,
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// ContentKeyPrefix is the blob store prefix under which all content files live.
const ContentKeyPrefix = "content/"

// FileKey returns the blob key for a content file: content/{category}/{id}/{fileName}.
func FileKey(category, id, fileName string) string {
	return fmt.Sprintf("%s%s/%s/%s", ContentKeyPrefix, category, id, fileName)
}

// BlobStatus tracks whether the blob referenced by FileKey is known to exist.
type BlobStatus string

const (
	BlobNone      BlobStatus = "none"      // no file attached
	BlobPending   BlobStatus = "pending"   // upload URL issued, object not yet observed
	BlobConfirmed BlobStatus = "confirmed" // object observed in the blob store
)

type Content struct {
	ID          string     `json:"id" db:"id" dynamodbav:"id"`
	Category    string     `json:"category" db:"category" dynamodbav:"category"`
	Title       string     `json:"title" db:"title" dynamodbav:"title"`
	Description *string    `json:"description" db:"description" dynamodbav:"description,omitempty"`
	FileKey     *string    `json:"fileKey" db:"file_key" dynamodbav:"fileKey,omitempty"`
	FileName    *string    `json:"fileName" db:"file_name" dynamodbav:"fileName,omitempty"`
	FileType    *string    `json:"fileType" db:"file_type" dynamodbav:"fileType,omitempty"`
	FileSize    *int64     `json:"fileSize" db:"file_size" dynamodbav:"fileSize,omitempty"`
	BlobStatus  BlobStatus `json:"blobStatus" db:"blob_status" dynamodbav:"blobStatus"`
	Tags        Tags       `json:"tags" db:"tags" dynamodbav:"tags,omitempty"`
	Version     int64      `json:"version" db:"version" dynamodbav:"version"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" dynamodbav:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" dynamodbav:"updatedAt"`
}

// HasBlob reports whether a file key is attached, regardless of its status.
func (c *Content) HasBlob() bool {
	return c.FileKey != nil && *c.FileKey != ""
}

// AttachFile sets key, name and type together and marks the blob pending.
// size may be nil when the client did not declare it.
func (c *Content) AttachFile(key, name, mimeType string, size *int64) {
	c.FileKey = &key
	c.FileName = &name
	c.FileType = &mimeType
	c.FileSize = size
	c.BlobStatus = BlobPending
}

// ConfirmFile marks the attached blob as present with its observed size.
func (c *Content) ConfirmFile(size int64) {
	c.FileSize = &size
	c.BlobStatus = BlobConfirmed
}

// Tags is stored as a JSON array in SQL and as a string list in DynamoDB.
type Tags []string

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return errors.New("tags: unsupported column type")
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if len(out) == 0 {
		out = nil
	}
	*t = out
	return nil
}
