package kreuzberg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(WithCacheRoot(t.TempDir()))
	require.NoError(t, err)
	return e
}

func TestNewRegistersBuiltinExtractors(t *testing.T) {
	e := newTestEngine(t)
	names := e.Extractors.Names()
	assert.Contains(t, names, "builtin.plaintext")
	assert.Contains(t, names, "builtin.html")
	assert.Contains(t, names, "builtin.office")
	assert.Contains(t, names, "builtin.image.ocr")
}

func TestEngineExtractBytesPlainText(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.ExtractBytes(context.Background(), []byte("hello world"), "text/plain", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Content)
}

func TestEngineExtractFileSync(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("sync content"), 0o644))

	result, err := e.ExtractFileSync(context.Background(), path, "", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "sync content", result.Content)
}

func TestEngineBatchExtractBytes(t *testing.T) {
	e := newTestEngine(t)
	contents := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	mimes := []string{"text/plain", "text/plain", "text/plain"}

	results, err := e.BatchExtractBytes(context.Background(), contents, mimes, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Content)
}

func TestEngineCacheIsUsable(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Cache.Set("somekey", []byte("payload"), ""))
	data, ok := e.Cache.Get("somekey", "")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), data)
}

func TestNewRegistersTesseractOcrBackend(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, 1, e.OcrBackends.Count())
	assert.Contains(t, e.OcrBackends.Names(), "tesseract")
}

func TestEngineBatchExtractImagesIsolatesFailures(t *testing.T) {
	e := newTestEngine(t)
	paths := []string{filepath.Join(t.TempDir(), "missing.png")}

	results, err := e.BatchExtractImages(context.Background(), paths, model.OCRConfig{Language: "eng"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Error(t, results[0].Err)
}

func TestEngineUnsupportedFormat(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.ExtractBytes(context.Background(), []byte("data"), "application/x-made-up", DefaultConfig())
	assert.Error(t, err)
}
