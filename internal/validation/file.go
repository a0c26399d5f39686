package validation

import (
	"fmt"
	"mime"
	"strings"
	"unicode"
)

const MaxFileNameLength = 255

// ValidateFileName checks a client-supplied file name before it becomes the
// last segment of a blob key. Path separators and traversal are rejected
// rather than stripped so the stored name matches what the client sent.
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("fileName is required")
	}

	if len(name) > MaxFileNameLength {
		return fmt.Errorf("fileName is too long (max %d bytes)", MaxFileNameLength)
	}

	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("fileName must not contain path separators")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("fileName contains control characters")
		}
	}

	return nil
}

// ValidateContentType checks that fileType is a well-formed MIME type.
func ValidateContentType(contentType string) error {
	if strings.TrimSpace(contentType) == "" {
		return fmt.Errorf("fileType is required")
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.Contains(mediaType, "/") {
		return fmt.Errorf("invalid fileType: %s", contentType)
	}

	return nil
}

// ValidateFileSize checks a declared size against the upload ceiling.
// The ceiling itself is accepted.
func ValidateFileSize(size, maxSize int64) error {
	if size <= 0 {
		return fmt.Errorf("fileSize must be positive")
	}

	if size > maxSize {
		return fmt.Errorf("file too large: maximum size is %d MB", maxSize/(1<<20))
	}

	return nil
}
