package ocr

import (
	"os"
	"path/filepath"

	"github.com/kreuzberg-go/kreuzberg/internal/cachefs"
)

// TesseractBackend adapts Processor to registry.OcrBackend, letting the
// tesseract engine this package already drives be registered in the OCR
// backend registry (C4) alongside whatever other OcrBackend plugins a
// caller adds.
type TesseractBackend struct {
	*Processor
	TessdataDirOverride string
}

// NewTesseractBackend wraps a Processor for registration.
func NewTesseractBackend(cache *cachefs.Cache) *TesseractBackend {
	return &TesseractBackend{Processor: NewProcessor(cache)}
}

func (b *TesseractBackend) Name() string        { return "tesseract" }
func (b *TesseractBackend) Version() string     { return "1.0.0" }
func (b *TesseractBackend) Initialize() error   { return nil }
func (b *TesseractBackend) Shutdown() error     { return nil }
func (b *TesseractBackend) BackendType() string { return "tesseract" }

// SupportsLanguage reports whether lang's trained-data file exists under
// the resolved tessdata directory (spec §4.5 step 1).
func (b *TesseractBackend) SupportsLanguage(lang string) bool {
	dir, err := ResolveTessdataDir(b.TessdataDirOverride)
	if err != nil {
		return false
	}
	for _, l := range splitLanguages(lang) {
		if _, err := os.Stat(filepath.Join(dir, l+".traineddata")); err != nil {
			return false
		}
	}
	return true
}
