package mimeutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPathPlainText(t *testing.T) {
	d := NewDetector()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello, world!"), 0o644))

	mime, err := d.DetectPath(path)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
}

func TestCanonicalizeMimeStripsParameters(t *testing.T) {
	assert.Equal(t, "text/plain", canonicalizeMime("text/plain; charset=utf-8"))
	assert.Equal(t, "text/html", canonicalizeMime("text/html;charset=utf-8"))
	assert.Equal(t, "application/json", canonicalizeMime("application/json"))
}

func TestIsLegacyOffice(t *testing.T) {
	assert.True(t, IsLegacyOffice(LegacyWord))
	assert.True(t, IsLegacyOffice(LegacyPowerPoint))
	assert.False(t, IsLegacyOffice(DOCX))
}

func TestLegacyConversionTarget(t *testing.T) {
	assert.Equal(t, DOCX, LegacyConversionTarget(LegacyWord))
	assert.Equal(t, PPTX, LegacyConversionTarget(LegacyPowerPoint))
}

func TestValidateMime(t *testing.T) {
	assert.NoError(t, ValidateMime("text/plain"))
	err := ValidateMime("")
	assert.Error(t, err)
	assert.Equal(t, kerrors.Validation, kerrors.KindOf(err))
	err = ValidateMime("not-a-mime")
	assert.Error(t, err)
}
