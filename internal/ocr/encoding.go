package ocr

import (
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/vmihailenco/msgpack/v5"
)

// cachedResult is the msgpack-serializable projection of an
// ExtractionResult, used to round-trip OCR results through the cache.
type cachedResult struct {
	Content  string
	MimeType string
	Tables   []cachedTable
	Extra    map[string]any
}

type cachedTable struct {
	Cells    [][]string
	Markdown string
	Page     int
}

func encodeCachedResult(r model.ExtractionResult) ([]byte, error) {
	cr := cachedResult{Content: r.Content, MimeType: r.MimeType, Extra: r.Metadata.Additional}
	for _, t := range r.Tables {
		cr.Tables = append(cr.Tables, cachedTable{Cells: t.Cells, Markdown: t.Markdown, Page: t.Page})
	}
	return msgpack.Marshal(cr)
}

func decodeCachedResult(data []byte, out *model.ExtractionResult) error {
	var cr cachedResult
	if err := msgpack.Unmarshal(data, &cr); err != nil {
		return err
	}
	*out = model.NewExtractionResult(cr.Content, cr.MimeType)
	out.Metadata.Additional = cr.Extra
	for _, t := range cr.Tables {
		out.Tables = append(out.Tables, model.Table{Cells: t.Cells, Markdown: t.Markdown, Page: t.Page})
	}
	return nil
}
