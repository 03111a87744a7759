package extractors

import (
	"context"

	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/ocr"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
)

// Image mime types OCR is wired to handle (spec §4.5).
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeGIF  = "image/gif"
	MimeBMP  = "image/bmp"
	MimeTIFF = "image/tiff"
)

// Image runs every raster image through the OCR processor (C5). It is the
// only extractor whose ExtractBytes result depends on model.OCRConfig
// rather than being a pure format transform.
type Image struct {
	Processor *ocr.Processor
}

// NewImage wraps an already-constructed OCR processor as an extractor.
func NewImage(p *ocr.Processor) *Image { return &Image{Processor: p} }

func (i *Image) Name() string    { return "builtin.image.ocr" }
func (i *Image) Version() string { return "1.0.0" }
func (i *Image) Initialize() error { return nil }
func (i *Image) Shutdown() error   { return nil }

func (i *Image) SupportedMimeTypes() []string {
	return []string{MimePNG, MimeJPEG, MimeGIF, MimeBMP, MimeTIFF}
}

func (i *Image) Priority() int { return 0 }

func (i *Image) CanHandle(_, mime string) bool {
	for _, m := range i.SupportedMimeTypes() {
		if m == mime {
			return true
		}
	}
	return false
}

// ExtractBytes runs OCR over data. A caller-supplied cfg.OCR is used
// as-is; a nil OCR config falls back to a language-only default so that
// an image extraction still produces text without requiring every caller
// to populate the whole OCR config.
func (i *Image) ExtractBytes(ctx context.Context, data []byte, _ string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	ocrCfg := model.OCRConfig{Language: "eng", OutputFormat: model.OCROutputText, UseCache: true}
	if cfg.OCR != nil {
		ocrCfg = *cfg.OCR
	}
	return i.Processor.ProcessImage(ctx, data, ocrCfg)
}

func (i *Image) ExtractFile(ctx context.Context, path, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	return registry.DefaultExtractFile(ctx, i, path, mime, cfg)
}
