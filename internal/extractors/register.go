package extractors

import (
	"github.com/kreuzberg-go/kreuzberg/internal/cachefs"
	"github.com/kreuzberg-go/kreuzberg/internal/ocr"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
)

// RegisterBuiltins registers every built-in extractor into reg. cache backs
// the Image extractor's OCR processor; a nil cache disables OCR caching
// rather than failing registration.
//
// Format-specific plugins beyond these (PDF, JATS, Typst, legacy binary
// formats not reachable via LibreOffice/Pandoc) attach to reg the same
// way: construct, satisfy registry.DocumentExtractor, Register. None are
// built here because no such plugin exists in this tree yet.
func RegisterBuiltins(reg *registry.ExtractorRegistry, cache *cachefs.Cache) error {
	ocrProcessor := ocr.NewProcessor(cache)
	for _, e := range []registry.DocumentExtractor{
		NewPlainText(),
		NewHTML(),
		NewOffice(),
		NewImage(ocrProcessor),
	} {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}
