package extractors

import (
	"context"

	"github.com/kreuzberg-go/kreuzberg/internal/mimeutil"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
	"github.com/kreuzberg-go/kreuzberg/internal/subprocess"
)

// HTML converts text/html to Markdown content plus canonicalized metadata
// via a single Pandoc invocation (C6).
type HTML struct{}

func NewHTML() *HTML { return &HTML{} }

func (e *HTML) Name() string      { return "builtin.html" }
func (e *HTML) Version() string   { return "1.0.0" }
func (e *HTML) Initialize() error { return nil }
func (e *HTML) Shutdown() error   { return nil }

func (e *HTML) SupportedMimeTypes() []string { return []string{mimeutil.HTML} }
func (e *HTML) Priority() int                { return 0 }

func (e *HTML) CanHandle(path, mime string) bool { return mime == mimeutil.HTML }

func (e *HTML) ExtractBytes(ctx context.Context, data []byte, _ string, _ model.ExtractionConfig) (model.ExtractionResult, error) {
	pandocResult, err := subprocess.ConvertViaPandoc(ctx, data, "html")
	if err != nil {
		return model.ExtractionResult{}, err
	}
	result := model.NewExtractionResult(pandocResult.Markdown, mimeutil.Markdown)
	applyPandocMetadata(&result, pandocResult.Metadata)
	return result, nil
}

func (e *HTML) ExtractFile(ctx context.Context, path, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	return registry.DefaultExtractFile(ctx, e, path, mime, cfg)
}

func applyPandocMetadata(result *model.ExtractionResult, meta map[string]any) {
	if title, ok := meta["title"].(string); ok {
		result.Metadata.Title = title
	}
	if summary, ok := meta["summary"].(string); ok {
		result.Metadata.Description = summary
	}
	if date, ok := meta["created_at"].(string); ok {
		result.Metadata.Date = date
	}
	if authors, ok := meta["authors"].(string); ok && authors != "" {
		result.Metadata.Authors = []string{authors}
	}
	for k, v := range meta {
		switch k {
		case "title", "summary", "created_at", "authors":
			continue
		}
		if s, ok := v.(string); ok {
			result.Metadata.SetAdditional(k, s)
		}
	}
}
