package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

func TestLoadKDLOverlaysDefaults(t *testing.T) {
	src := `
max_concurrent_extractions 8
enable_quality_processing true

postprocessor {
    enabled true
    enabled_processors "whitespace" "footnotes"
}

chunking {
    max_chars 1000
    max_overlap 100
    embedding {
        model "all-MiniLM-L6-v2"
    }
}

language_detection {
    enabled true
    min_confidence 0.6
    detect_multiple true
}

ocr {
    language "eng"
    psm 3
    output_format "tsv"
    enable_table_detection true
}
`
	cfg, err := LoadKDL([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.MaxConcurrentExtractions)
	assert.True(t, cfg.EnableQualityProcessing)

	require.NotNil(t, cfg.Postprocessor)
	assert.True(t, cfg.Postprocessor.Enabled)
	_, ok := cfg.Postprocessor.EnabledProcessors["whitespace"]
	assert.True(t, ok)

	require.NotNil(t, cfg.Chunking)
	assert.Equal(t, 1000, cfg.Chunking.MaxChars)
	assert.Equal(t, 100, cfg.Chunking.MaxOverlap)
	require.NotNil(t, cfg.Chunking.Embedding)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Chunking.Embedding.Model)

	require.NotNil(t, cfg.LanguageDetection)
	assert.InDelta(t, 0.6, cfg.LanguageDetection.MinConfidence, 0.0001)
	assert.True(t, cfg.LanguageDetection.DetectMultiple)

	require.NotNil(t, cfg.OCR)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Equal(t, model.OCROutputTSV, cfg.OCR.OutputFormat)
	assert.True(t, cfg.OCR.EnableTableDetection)
}

func TestLoadKDLEmptyUsesDefaults(t *testing.T) {
	cfg, err := LoadKDL([]byte(""))
	require.NoError(t, err)
	assert.Nil(t, cfg.Postprocessor)
	assert.Equal(t, model.DefaultConfig().MaxConcurrentExtractions, cfg.MaxConcurrentExtractions)
}

func TestLoadTOMLOverlaysDefaults(t *testing.T) {
	src := `
max_concurrent_extractions = 4
enable_quality_processing = true

[chunking]
max_chars = 500
max_overlap = 50

[chunking.embedding]
model = "text-embedding-3-small"

[ocr]
language = "deu"
output_format = "markdown"
`
	cfg, err := LoadTOML([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxConcurrentExtractions)
	require.NotNil(t, cfg.Chunking)
	assert.Equal(t, 500, cfg.Chunking.MaxChars)
	require.NotNil(t, cfg.Chunking.Embedding)
	assert.Equal(t, "text-embedding-3-small", cfg.Chunking.Embedding.Model)
	require.NotNil(t, cfg.OCR)
	assert.Equal(t, model.OCROutputMarkdown, cfg.OCR.OutputFormat)
}

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()

	kdlPath := filepath.Join(dir, "a.kdl")
	require.NoError(t, os.WriteFile(kdlPath, []byte("max_concurrent_extractions 2\n"), 0o644))
	cfg, err := Load(kdlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxConcurrentExtractions)

	tomlPath := filepath.Join(dir, "b.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("max_concurrent_extractions = 3\n"), 0o644))
	cfg, err = Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxConcurrentExtractions)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.kdl"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().MaxConcurrentExtractions, cfg.MaxConcurrentExtractions)
}

func TestFindProjectConfigPrefersKDL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultKDLFilename), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultTOMLFilename), []byte(""), 0o644))

	found := FindProjectConfig(dir)
	assert.Equal(t, filepath.Join(dir, DefaultKDLFilename), found)
}

func TestFindProjectConfigNone(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", FindProjectConfig(dir))
}
