package extractors

import (
	"context"

	"github.com/kreuzberg-go/kreuzberg/internal/mimeutil"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
	"github.com/kreuzberg-go/kreuzberg/internal/subprocess"
)

// Office handles modern Office XML formats (DOCX, PPTX) via Pandoc.
// Legacy .doc/.ppt bytes never reach this extractor directly — the
// dispatcher pre-converts them to DOCX/PPTX via LibreOffice before lookup
// (spec §4.3 step 3).
type Office struct{}

func NewOffice() *Office { return &Office{} }

func (e *Office) Name() string      { return "builtin.office" }
func (e *Office) Version() string   { return "1.0.0" }
func (e *Office) Initialize() error { return nil }
func (e *Office) Shutdown() error   { return nil }

func (e *Office) SupportedMimeTypes() []string {
	return []string{mimeutil.DOCX, mimeutil.PPTX}
}

func (e *Office) Priority() int { return 0 }

func (e *Office) CanHandle(path, mime string) bool {
	return mime == mimeutil.DOCX || mime == mimeutil.PPTX
}

func (e *Office) ExtractBytes(ctx context.Context, data []byte, mime string, _ model.ExtractionConfig) (model.ExtractionResult, error) {
	fromFormat := "docx"
	if mime == mimeutil.PPTX {
		fromFormat = "pptx"
	}
	pandocResult, err := subprocess.ConvertViaPandoc(ctx, data, fromFormat)
	if err != nil {
		return model.ExtractionResult{}, err
	}
	result := model.NewExtractionResult(pandocResult.Markdown, mimeutil.Markdown)
	applyPandocMetadata(&result, pandocResult.Metadata)
	return result, nil
}

func (e *Office) ExtractFile(ctx context.Context, path, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	return registry.DefaultExtractFile(ctx, e, path, mime, cfg)
}
