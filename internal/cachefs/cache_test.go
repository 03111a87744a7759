package cachefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCacheKeyIsOrderInsensitiveAndValid(t *testing.T) {
	k1 := GenerateCacheKey(map[string]string{"a": "1", "b": "2"})
	k2 := GenerateCacheKey(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, k1, k2)
	assert.True(t, ValidateCacheKey(k1))
	assert.Len(t, k1, 32)
}

func TestValidateCacheKeyRejectsGarbage(t *testing.T) {
	assert.False(t, ValidateCacheKey("not-a-key"))
	assert.False(t, ValidateCacheKey(""))
	assert.False(t, ValidateCacheKey("UPPERCASE0000000000000000000000"))
}

func TestSetGetRoundTrip(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := GenerateCacheKey(map[string]string{"x": "1"})
	require.NoError(t, c.Set(key, []byte("hello"), ""))

	data, ok := c.Get(key, "")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
}

func TestGetMissOnAbsentKey(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	_, ok := c.Get("0000000000000000000000000000000", "")
	assert.False(t, ok)
}

// TestCacheMissAfterSourceModification implements scenario S3 from spec §8.
func TestCacheMissAfterSourceModification(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	srcPath := filepath.Join(dir, "source.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("A"), 0o644))

	key := GenerateCacheKey(map[string]string{"src": srcPath})
	require.NoError(t, c.Set(key, []byte("cached-A"), srcPath))

	data, ok := c.Get(key, srcPath)
	require.True(t, ok)
	assert.Equal(t, []byte("cached-A"), data)

	// Ensure the new mtime differs even on coarse filesystem clocks.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(srcPath, []byte("a longer content B"), 0o644))
	require.NoError(t, os.Chtimes(srcPath, future, future))

	_, ok = c.Get(key, srcPath)
	assert.False(t, ok)
}

func TestMetaFileWrongLengthIsInvalid(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	srcPath := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("x"), 0o644))

	key := GenerateCacheKey(map[string]string{"k": "v"})
	require.NoError(t, c.Set(key, []byte("payload"), srcPath))
	require.NoError(t, os.WriteFile(c.metaPath(key), []byte("short"), 0o644))

	_, ok := c.Get(key, srcPath)
	assert.False(t, ok)
}

func TestProcessingMarkers(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	key := "somekey"
	assert.False(t, c.IsProcessing(key))
	c.MarkProcessing(key)
	assert.True(t, c.IsProcessing(key))
	c.MarkComplete(key)
	assert.False(t, c.IsProcessing(key))
}

func TestClearRemovesAllEntries(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		key := GenerateCacheKey(map[string]string{"i": string(rune('a' + i))})
		require.NoError(t, c.Set(key, []byte("payload"), ""))
	}
	removed, _, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	stats := c.GetStats()
	assert.Equal(t, 0, stats.TotalFiles)
}

func TestSmartCleanupEvictsByAge(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)
	c.CleanupMaxAgeDays = 1
	c.CleanupMaxSizeMB = 0
	c.CleanupMinFreeSpaceMB = 0

	key := GenerateCacheKey(map[string]string{"old": "1"})
	require.NoError(t, c.Set(key, []byte("payload"), ""))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(c.payloadPath(key), old, old))

	removed, _, err := c.SmartCleanup()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	stats := c.GetStats()
	assert.Equal(t, 0, stats.TotalFiles)
}

func Test100thSetTriggersCleanup(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)
	// Budget far below what 100 entries will occupy, so the 100th Set's
	// triggered SmartCleanup has observable work to do.
	c.CleanupMaxSizeMB = 0.00001
	c.CleanupMinFreeSpaceMB = 0
	c.CleanupMaxAgeDays = 30

	for i := 0; i < 100; i++ {
		key := GenerateCacheKey(map[string]string{"i": string(rune('a' + i%26)), "n": string(rune(i))})
		require.NoError(t, c.Set(key, []byte("some reasonably sized payload bytes here"), ""))
	}
	// The 100th Set kicks off cleanup asynchronously; give it a moment.
	assert.Eventually(t, func() bool {
		stats := c.GetStats()
		return stats.TotalSizeMB <= 0.8*c.CleanupMaxSizeMB+0.0001 || stats.TotalFiles < 100
	}, 2*time.Second, 20*time.Millisecond)
}
