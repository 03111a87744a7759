package cachefs

import "path/filepath"

// DefaultRoot is the default cache root directory (spec §6).
const DefaultRoot = "./.kreuzberg"

// ContentCacheDir and OcrCacheDir are disjoint subtrees under root, as
// required by spec §5 ("OCR cache and content cache are disjoint on disk").
func ContentCacheDir(root string) string { return filepath.Join(root, "content") }
func OcrCacheDir(root string) string     { return filepath.Join(root, "ocr") }
