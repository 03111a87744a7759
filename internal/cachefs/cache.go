// Package cachefs implements the content-addressed filesystem cache (C2):
// a keyed byte store with source-file invalidation, advisory concurrency
// coordination via in-memory sets, and size/age eviction.
package cachefs

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/vmihailenco/msgpack/v5"
)

const metaFileSize = 16

// Cache is a keyed byte cache rooted at a directory. It is safe for
// concurrent use; on-disk writes are not atomically serialized across
// processes — readers tolerate corruption via best-effort delete, per
// spec §4.1 / §9.
type Cache struct {
	dir string

	processingLocks sync.Map // map[string]struct{}
	deletingFiles    sync.Map // map[string]struct{}

	setCount atomic.Int64

	CleanupMaxAgeDays    float64
	CleanupMaxSizeMB     float64
	CleanupMinFreeSpaceMB float64
}

// cachePayload is the MessagePack envelope written to <key>.msgpack. The
// payload bytes themselves remain opaque to the cache (spec §3); this
// wrapper only gives the .msgpack extension literal meaning.
type cachePayload struct {
	Bytes []byte `msgpack:"bytes"`
}

// New creates a Cache rooted at dir, creating the directory if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, kerrors.New(kerrors.Io, "cache.new", err)
	}
	return &Cache{
		dir:                   dir,
		CleanupMaxAgeDays:     30,
		CleanupMaxSizeMB:      1024,
		CleanupMinFreeSpaceMB: 100,
	}, nil
}

func (c *Cache) payloadPath(key string) string { return filepath.Join(c.dir, key+".msgpack") }
func (c *Cache) metaPath(key string) string    { return filepath.Join(c.dir, key+".meta") }

// Get returns the cached bytes for key, or (nil, false) on any miss: the
// key is being deleted by another caller, the payload is absent, the entry
// is older than max_age_days, a declared source no longer matches the
// stored meta, or a read error occurred. Read errors trigger a best-effort
// delete of both files. Get never blocks on write-lock semantics.
func (c *Cache) Get(key string, sourcePath string) (data []byte, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			data, ok = nil, false
		}
	}()

	payloadPath := c.payloadPath(key)
	if _, deleting := c.deletingFiles.Load(payloadPath); deleting {
		return nil, false
	}

	info, err := os.Stat(payloadPath)
	if err != nil {
		return nil, false
	}
	if c.CleanupMaxAgeDays > 0 {
		age := time.Since(info.ModTime())
		if age.Hours()/24 > c.CleanupMaxAgeDays {
			c.bestEffortDelete(key)
			return nil, false
		}
	}

	if sourcePath != "" {
		valid, metaErr := c.sourceMatchesMeta(key, sourcePath)
		if metaErr != nil || !valid {
			c.bestEffortDelete(key)
			return nil, false
		}
	}

	raw, err := os.ReadFile(payloadPath)
	if err != nil {
		c.bestEffortDelete(key)
		return nil, false
	}
	var p cachePayload
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		c.bestEffortDelete(key)
		return nil, false
	}
	return p.Bytes, true
}

// sourceMatchesMeta reports whether the source file's current size/mtime
// matches the stored 16-byte meta record. Meta absence means "no
// source-file invalidation applies" (valid=true). A meta file whose length
// is not exactly 16 bytes is treated as invalid.
func (c *Cache) sourceMatchesMeta(key, sourcePath string) (valid bool, err error) {
	metaBytes, err := os.ReadFile(c.metaPath(key))
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if len(metaBytes) != metaFileSize {
		return false, nil
	}
	wantSize := binary.LittleEndian.Uint64(metaBytes[0:8])
	wantMtime := binary.LittleEndian.Uint64(metaBytes[8:16])

	info, err := os.Stat(sourcePath)
	if err != nil {
		return false, err
	}
	gotSize := uint64(info.Size())
	gotMtime := uint64(info.ModTime().Unix())
	return gotSize == wantSize && gotMtime == wantMtime, nil
}

// Set writes data under key. If sourcePath is non-empty, it also writes
// the 16-byte meta record capturing the source's current size/mtime. Cache
// write failures are non-fatal: Set always returns nil. Every 100th Set on
// this Cache instance triggers a best-effort SmartCleanup.
func (c *Cache) Set(key string, data []byte, sourcePath string) error {
	defer func() { recover() }() //nolint:errcheck // best-effort, never fatal

	raw, err := msgpack.Marshal(cachePayload{Bytes: data})
	if err == nil {
		_ = os.WriteFile(c.payloadPath(key), raw, 0o644)
	}

	if sourcePath != "" {
		if info, statErr := os.Stat(sourcePath); statErr == nil {
			var meta [metaFileSize]byte
			binary.LittleEndian.PutUint64(meta[0:8], uint64(info.Size()))
			binary.LittleEndian.PutUint64(meta[8:16], uint64(info.ModTime().Unix()))
			_ = os.WriteFile(c.metaPath(key), meta[:], 0o644)
		}
	}

	if c.setCount.Add(1)%100 == 0 {
		go func() { _, _ = c.SmartCleanup() }()
	}
	return nil
}

// IsProcessing reports whether key is currently marked as in-progress by
// some caller. This is advisory only: the engine does not itself enforce
// single-flight (spec §4.1).
func (c *Cache) IsProcessing(key string) bool {
	_, ok := c.processingLocks.Load(key)
	return ok
}

// MarkProcessing records key as in-progress.
func (c *Cache) MarkProcessing(key string) { c.processingLocks.Store(key, struct{}{}) }

// MarkComplete clears the in-progress marker for key.
func (c *Cache) MarkComplete(key string) { c.processingLocks.Delete(key) }

func (c *Cache) bestEffortDelete(key string) {
	payloadPath := c.payloadPath(key)
	c.deletingFiles.Store(payloadPath, struct{}{})
	_ = os.Remove(payloadPath)
	_ = os.Remove(c.metaPath(key))
	c.deletingFiles.Delete(payloadPath)
}

// Clear deletes every *.msgpack entry (and its .meta sibling) in the cache
// directory. Each file is marked in the deleting set immediately before
// removal so a concurrent Get sees the key as unavailable; there is a
// documented TOCTOU window between directory iteration and the mark, which
// is acceptable because Get tolerates read failures silently (spec §4.1).
func (c *Cache) Clear() (removed int, freedMB float64, err error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0, kerrors.New(kerrors.Io, "cache.clear", err)
	}
	for _, e := range entries {
		if e.IsDir() || !isPayloadFile(e.Name()) {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		info, statErr := e.Info()
		c.deletingFiles.Store(path, struct{}{})
		if rmErr := os.Remove(path); rmErr == nil {
			removed++
			if statErr == nil {
				freedMB += float64(info.Size()) / (1024 * 1024)
			}
		}
		key := e.Name()[:len(e.Name())-len(".msgpack")]
		_ = os.Remove(c.metaPath(key))
		c.deletingFiles.Delete(path)
	}
	return removed, freedMB, nil
}

// Stats summarizes the cache directory's footprint.
type Stats struct {
	TotalFiles        int
	TotalSizeMB       float64
	AvailableSpaceMB  float64
	OldestFileAgeDays float64
	NewestFileAgeDays float64
}

// GetStats scans the cache directory and reports its current footprint.
// Scan/stat errors degrade to a zero-value Stats rather than failing the
// caller (cache errors are never fatal, per spec §7).
func (c *Cache) GetStats() Stats {
	entries, bytesTotal, oldest, newest, err := c.scan()
	if err != nil {
		return Stats{}
	}
	stats := Stats{
		TotalFiles:       len(entries),
		TotalSizeMB:      bytesTotal / (1024 * 1024),
		AvailableSpaceMB: availableSpaceMB(c.dir),
	}
	if len(entries) > 0 {
		stats.OldestFileAgeDays = time.Since(oldest).Hours() / 24
		stats.NewestFileAgeDays = time.Since(newest).Hours() / 24
	}
	return stats
}

type fileEntry struct {
	path  string
	size  int64
	mtime time.Time
}

func (c *Cache) scan() (entries []fileEntry, totalBytes float64, oldest, newest time.Time, err error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, 0, time.Time{}, time.Time{}, err
	}
	for _, de := range dirEntries {
		if de.IsDir() || !isPayloadFile(de.Name()) {
			continue
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			continue
		}
		entries = append(entries, fileEntry{path: filepath.Join(c.dir, de.Name()), size: info.Size(), mtime: info.ModTime()})
		totalBytes += float64(info.Size())
		if oldest.IsZero() || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
		if newest.IsZero() || info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return entries, totalBytes, oldest, newest, nil
}

// isPayloadFile reports whether name is a cache payload file. Matched via
// a glob rather than a bare extension check for consistency with the
// include/exclude glob matching used elsewhere in the package.
func isPayloadFile(name string) bool {
	ok, _ := doublestar.Match("*.msgpack", name)
	return ok
}

// SmartCleanup evicts entries older than max_age_days, then, if the
// directory is still over budget, evicts the oldest entries until the
// total size is at or below target_ratio * max_size_mb. target_ratio is
// 0.5 when free disk space triggered the cleanup, 0.8 for a routine
// size/age trigger (spec §4.1).
func (c *Cache) SmartCleanup() (removed int, freedMB float64, err error) {
	entries, totalBytes, oldest, _, err := c.scan()
	if err != nil {
		return 0, 0, kerrors.New(kerrors.Io, "cache.smart_cleanup", err)
	}
	free := availableSpaceMB(c.dir)
	totalMB := totalBytes / (1024 * 1024)

	diskPressure := c.CleanupMinFreeSpaceMB > 0 && free < c.CleanupMinFreeSpaceMB
	overSize := c.CleanupMaxSizeMB > 0 && totalMB > c.CleanupMaxSizeMB
	overAge := c.CleanupMaxAgeDays > 0 && !oldest.IsZero() && time.Since(oldest).Hours()/24 > c.CleanupMaxAgeDays

	if !diskPressure && !overSize && !overAge {
		return 0, 0, nil
	}

	remaining := make([]fileEntry, 0, len(entries))
	now := time.Now()
	for _, e := range entries {
		if c.CleanupMaxAgeDays > 0 && now.Sub(e.mtime).Hours()/24 > c.CleanupMaxAgeDays {
			if c.removeEntry(e) {
				removed++
				freedMB += float64(e.size) / (1024 * 1024)
			}
			continue
		}
		remaining = append(remaining, e)
	}

	remainingMB := totalMB - freedMB
	if c.CleanupMaxSizeMB > 0 && remainingMB > c.CleanupMaxSizeMB {
		ratio := 0.8
		if diskPressure {
			ratio = 0.5
		}
		target := ratio * c.CleanupMaxSizeMB

		sort.Slice(remaining, func(i, j int) bool { return remaining[i].mtime.Before(remaining[j].mtime) })
		for _, e := range remaining {
			if remainingMB <= target {
				break
			}
			if c.removeEntry(e) {
				removed++
				sizeMB := float64(e.size) / (1024 * 1024)
				freedMB += sizeMB
				remainingMB -= sizeMB
			}
		}
	}
	return removed, freedMB, nil
}

func (c *Cache) removeEntry(e fileEntry) bool {
	c.deletingFiles.Store(e.path, struct{}{})
	defer c.deletingFiles.Delete(e.path)
	if err := os.Remove(e.path); err != nil {
		return false
	}
	base := filepath.Base(e.path)
	key := base[:len(base)-len(".msgpack")]
	_ = os.Remove(c.metaPath(key))
	return true
}

func availableSpaceMB(dir string) float64 {
	free, err := diskFreeBytes(dir)
	if err != nil {
		return 0
	}
	return float64(free) / (1024 * 1024)
}
