package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"ok", "correct horse battery", ""},
		{"short", "tooshort", "at least 12"},
		{"long", strings.Repeat("x", 73), "must not exceed 72"},
		{"common", "mypassword2026!", "too common"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFileName(t *testing.T) {
	assert.NoError(t, ValidateFileName("demo.mp4"))
	assert.NoError(t, ValidateFileName("Q3 pricing (final).pdf"))
	assert.Error(t, ValidateFileName(""))
	assert.Error(t, ValidateFileName("../etc/passwd"))
	assert.Error(t, ValidateFileName(`a\b.pdf`))
	assert.Error(t, ValidateFileName(".."))
	assert.Error(t, ValidateFileName("bad\x00name"))
	assert.Error(t, ValidateFileName(strings.Repeat("a", 256)))
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType("video/mp4"))
	assert.NoError(t, ValidateContentType("text/plain; charset=utf-8"))
	assert.Error(t, ValidateContentType(""))
	assert.Error(t, ValidateContentType("not a mime"))
}

func TestValidateFileSize_Boundary(t *testing.T) {
	const ceiling = 500 * 1024 * 1024
	assert.NoError(t, ValidateFileSize(ceiling, ceiling))
	assert.Error(t, ValidateFileSize(ceiling+1, ceiling))
	assert.Error(t, ValidateFileSize(0, ceiling))
	assert.Error(t, ValidateFileSize(-1, ceiling))
}

func TestNormalizeTags(t *testing.T) {
	tags, err := NormalizeTags([]string{" emea ", "", "emea", "2026"})
	require.NoError(t, err)
	assert.Equal(t, []string{"emea", "2026"}, tags)

	tags, err = NormalizeTags(nil)
	require.NoError(t, err)
	assert.Nil(t, tags)

	many := make([]string, MaxTags+1)
	for i := range many {
		many[i] = strings.Repeat("t", i+1)
	}
	_, err = NormalizeTags(many)
	assert.Error(t, err)
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Demo"))
	assert.Error(t, ValidateTitle("   "))
	assert.Error(t, ValidateTitle(strings.Repeat("é", MaxTitleLength+1)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("buyer@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Buyer <buyer@example.com>"))
}
