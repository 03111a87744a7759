// Package model holds the uniform data types exchanged between the
// dispatcher, extractors, and the post-processing pipeline: ExtractionResult,
// Metadata, Table, Chunk, Image, Page, and ExtractionConfig.
package model

import "unicode/utf8"

// ExtractionResult is the uniform output of every extraction operation.
type ExtractionResult struct {
	Content            string
	MimeType           string
	Metadata           Metadata
	Tables             []Table
	DetectedLanguages  []string
	Chunks             []Chunk
	Images             []Image
	Pages              []Page
}

// Metadata carries well-known document fields plus a free-form bag.
type Metadata struct {
	Title       string
	Authors     []string
	Date        string
	Subject     string
	Description string
	Keywords    []string
	Additional  map[string]any
}

// SetAdditional stores a value under the free-form metadata map, creating
// it lazily.
func (m *Metadata) SetAdditional(key string, value any) {
	if m.Additional == nil {
		m.Additional = make(map[string]any, 4)
	}
	m.Additional[key] = value
}

// GetAdditional retrieves a value from the free-form metadata map.
func (m *Metadata) GetAdditional(key string) (any, bool) {
	if m.Additional == nil {
		return nil, false
	}
	v, ok := m.Additional[key]
	return v, ok
}

// ErrorMetadata is written into Metadata.Additional["error"] for batch
// placeholder results (spec §4.7).
type ErrorMetadata struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Table is an ordered sequence of rows of equal length plus a rendered
// Markdown projection.
type Table struct {
	Cells    [][]string
	Markdown string
	Page     int // 1-based; 0 means "no page concept"
}

// NewTable builds a Table and pads ragged rows to the widest row's length,
// enforcing the non-ragged-matrix invariant (spec §3) at construction
// rather than trusting every extractor to do it.
func NewTable(cells [][]string, page int) Table {
	width := 0
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}
	padded := make([][]string, len(cells))
	for i, row := range cells {
		if len(row) == width {
			padded[i] = row
			continue
		}
		p := make([]string, width)
		copy(p, row)
		padded[i] = p
	}
	return Table{Cells: padded, Page: page}
}

// Chunk is a substring of Content produced by the chunker, with an optional
// embedding vector attached by the embedding component.
type Chunk struct {
	Text      string
	Index     int
	Embedding []float32
}

// Image is an extracted inline image.
type Image struct {
	Bytes   []byte
	Format  string // e.g. "png", "jpeg"
	Caption string
	Width   int
	Height  int
	Page    int
}

// Page is a per-page projection of the document, present only when the
// source format has natural pagination.
type Page struct {
	Number  int // 1-based
	Content string
}

// NewExtractionResult builds a result with the UTF-8 invariant enforced:
// Content is lossy-converted if the source bytes are not valid UTF-8 (spec
// §3: "content is always valid UTF-8").
func NewExtractionResult(content string, mimeType string) ExtractionResult {
	if !utf8.ValidString(content) {
		content = toValidUTF8(content)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return ExtractionResult{Content: content, MimeType: mimeType}
}

func toValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	b := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			b = append(b, utf8.RuneError)
			i++
			continue
		}
		b = append(b, r)
		i += size
	}
	return string(b)
}
