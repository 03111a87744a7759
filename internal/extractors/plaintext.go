// Package extractors ships the illustrative built-in DocumentExtractor
// plugins named in the dispatcher's expansion notes: plain text/Markdown
// passthrough, HTML-via-Pandoc, modern Office-via-Pandoc, and raster
// images via OCR. Each is a thin adapter onto the subprocess coordinator,
// the OCR processor, or the stdlib, registered
// through the same registry.DocumentExtractor contract a future PDF/DOCX
// plugin would use.
package extractors

import (
	"context"

	"github.com/kreuzberg-go/kreuzberg/internal/mimeutil"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
)

// PlainText handles text/plain and text/markdown by treating the bytes as
// content directly, after UTF-8 normalization.
type PlainText struct{}

func NewPlainText() *PlainText { return &PlainText{} }

func (e *PlainText) Name() string    { return "builtin.plaintext" }
func (e *PlainText) Version() string { return "1.0.0" }
func (e *PlainText) Initialize() error { return nil }
func (e *PlainText) Shutdown() error   { return nil }

func (e *PlainText) SupportedMimeTypes() []string {
	return []string{mimeutil.PlainText, mimeutil.Markdown}
}

func (e *PlainText) Priority() int { return 0 }

func (e *PlainText) CanHandle(path, mime string) bool {
	return mime == mimeutil.PlainText || mime == mimeutil.Markdown
}

func (e *PlainText) ExtractBytes(_ context.Context, data []byte, mime string, _ model.ExtractionConfig) (model.ExtractionResult, error) {
	return model.NewExtractionResult(string(data), mime), nil
}

func (e *PlainText) ExtractFile(ctx context.Context, path, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	return registry.DefaultExtractFile(ctx, e, path, mime, cfg)
}
