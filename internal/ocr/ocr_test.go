package ocr

import (
	"context"
	"testing"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyChangesWithConfig(t *testing.T) {
	img := []byte("fake-image-bytes")
	cfg1 := model.OCRConfig{Language: "eng", PSM: 3}
	cfg2 := model.OCRConfig{Language: "eng", PSM: 6}
	assert.NotEqual(t, cacheKey(img, cfg1), cacheKey(img, cfg2))
}

func TestCacheKeyDeterministic(t *testing.T) {
	img := []byte("fake-image-bytes")
	cfg := model.OCRConfig{Language: "eng", PSM: 3}
	assert.Equal(t, cacheKey(img, cfg), cacheKey(img, cfg))
}

func TestStripControlCharsKeepsWhitespace(t *testing.T) {
	in := "hello\x00\x01world\n\t\r"
	out := stripControlChars(in)
	assert.Equal(t, "helloworld\n\t\r", out)
}

func TestSplitLanguages(t *testing.T) {
	assert.Equal(t, []string{"eng", "fra"}, splitLanguages("eng+fra"))
	assert.Equal(t, []string{"eng"}, splitLanguages("eng"))
}

func TestReconstructTableFromTSV(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t10\t10\t20\t10\t95.5\tName\n" +
		"5\t1\t1\t1\t1\t2\t100\t10\t20\t10\t95.5\tAge\n" +
		"5\t1\t1\t2\t1\t1\t10\t40\t20\t10\t95.5\tAlice\n" +
		"5\t1\t1\t2\t1\t2\t100\t40\t20\t10\t95.5\t30\n"

	cfg := model.OCRConfig{TableMinConfidence: 0.5, TableColumnThreshold: 20, TableRowThresholdRatio: 0.5}
	table, ok := reconstructTableFromTSV(tsv, cfg)
	assert.True(t, ok)
	assert.Len(t, table.Cells, 2)
	assert.NotEmpty(t, table.Markdown)
}

func TestReconstructTableFromTSVNoRowsBelowConfidence(t *testing.T) {
	tsv := "left\ttop\twidth\theight\tconf\ttext\n10\t10\t20\t10\t5\tfoo\n"
	cfg := model.OCRConfig{TableMinConfidence: 0.9}
	_, ok := reconstructTableFromTSV(tsv, cfg)
	assert.False(t, ok)
}

func TestTesseractBackendIdentity(t *testing.T) {
	b := NewTesseractBackend(nil)
	assert.Equal(t, "tesseract", b.Name())
	assert.Equal(t, "tesseract", b.BackendType())
	assert.NoError(t, b.Initialize())
	assert.NoError(t, b.Shutdown())
}

func TestTesseractBackendSupportsLanguageWithoutTessdataIsFalse(t *testing.T) {
	b := NewTesseractBackend(nil)
	b.TessdataDirOverride = "/nonexistent/tessdata/dir"
	assert.False(t, b.SupportsLanguage("eng"))
}

func TestProcessFilesBatchEmpty(t *testing.T) {
	p := NewProcessor(nil)
	results := p.ProcessFilesBatch(context.Background(), nil, model.OCRConfig{Language: "eng"})
	assert.Empty(t, results)
}

func TestProcessFilesBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	p := NewProcessor(nil)
	paths := []string{"/nonexistent/a.png", "/nonexistent/b.png", "/nonexistent/c.png"}

	results := p.ProcessFilesBatch(context.Background(), paths, model.OCRConfig{Language: "eng"})

	require.Len(t, results, 3)
	for i, path := range paths {
		assert.Equal(t, path, results[i].Path)
		assert.False(t, results[i].Success)
		require.Error(t, results[i].Err)
		assert.Equal(t, kerrors.Io, kerrors.KindOf(results[i].Err))
	}
}
