// Package kreuzberg is the library's public surface: construct an Engine
// once per process and call its extraction methods. Everything under
// internal/ is wiring; this file is the only place that assembles the
// registries, cache, dispatcher, and worker pool into a single usable
// value for an external consumer.
package kreuzberg

import (
	"context"

	"github.com/kreuzberg-go/kreuzberg/internal/cachefs"
	"github.com/kreuzberg-go/kreuzberg/internal/dispatch"
	"github.com/kreuzberg-go/kreuzberg/internal/extractors"
	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/ocr"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
	"github.com/kreuzberg-go/kreuzberg/internal/syncapi"
)

// Re-exported so callers need only import this one package for the common
// path; the internal/model types remain the source of truth.
type (
	ExtractionConfig = model.ExtractionConfig
	ExtractionResult = model.ExtractionResult
)

// DefaultConfig returns model.DefaultConfig(), re-exported for convenience.
func DefaultConfig() ExtractionConfig { return model.DefaultConfig() }

// Engine is the assembled extraction engine: registries plus the
// process-wide worker pool, fronted by the async dispatcher and its
// blocking sibling.
type Engine struct {
	Extractors     *registry.ExtractorRegistry
	OcrBackends    *registry.OcrRegistry
	PostProcessors *registry.PostProcessorRegistry
	Validators     *registry.ValidatorRegistry
	Cache          *cachefs.Cache
	OCRCache       *cachefs.Cache

	dispatcher *dispatch.Dispatcher
	sync       *syncapi.Engine
}

// Option customizes New's engine construction.
type Option func(*engineOptions)

type engineOptions struct {
	cacheRoot string
}

// WithCacheRoot overrides the cache root directory (default cachefs.DefaultRoot).
func WithCacheRoot(root string) Option {
	return func(o *engineOptions) { o.cacheRoot = root }
}

// New assembles an Engine: a content cache and a disjoint OCR cache rooted
// under the chosen cache directory, four freshly constructed plugin
// registries private to this Engine (not the registry.GlobalExtractors et
// al. singletons), the built-in extractors registered into the extractor
// registry, the tesseract backend registered into the OCR backend
// registry, and a dispatcher/sync façade over them.
//
// Post-processors and validators are not pre-registered: none ship with
// this module (spec's format-specific/validation plugins are external
// collaborators), so Engine.PostProcessors and Engine.Validators start
// empty. Callers register their own via the same registry.Register calls
// the built-in extractors use.
func New(opts ...Option) (*Engine, error) {
	cfg := engineOptions{cacheRoot: cachefs.DefaultRoot}
	for _, opt := range opts {
		opt(&cfg)
	}

	cache, err := cachefs.New(cachefs.ContentCacheDir(cfg.cacheRoot))
	if err != nil {
		return nil, err
	}
	ocrCache, err := cachefs.New(cachefs.OcrCacheDir(cfg.cacheRoot))
	if err != nil {
		return nil, err
	}

	extractorReg := registry.NewExtractorRegistry()
	if err := extractors.RegisterBuiltins(extractorReg, ocrCache); err != nil {
		return nil, err
	}
	ocrBackendReg := registry.NewOcrRegistry()
	if err := ocrBackendReg.Register(ocr.NewTesseractBackend(ocrCache)); err != nil {
		return nil, err
	}
	postProcessorReg := registry.NewPostProcessorRegistry()
	validatorReg := registry.NewValidatorRegistry()

	d := dispatch.New(extractorReg, postProcessorReg, validatorReg)

	e := &Engine{
		Extractors:     extractorReg,
		OcrBackends:    ocrBackendReg,
		PostProcessors: postProcessorReg,
		Validators:     validatorReg,
		Cache:          cache,
		OCRCache:       ocrCache,
		dispatcher:     d,
	}
	e.sync = syncapi.New(d)
	return e, nil
}

// ExtractFile extracts a file at path asynchronously; mimeOverride may be
// "" to defer to MIME detection.
func (e *Engine) ExtractFile(ctx context.Context, path, mimeOverride string, cfg ExtractionConfig) (ExtractionResult, error) {
	return e.dispatcher.ExtractFile(ctx, path, mimeOverride, cfg)
}

// ExtractBytes extracts in-memory content asynchronously; mime must be a
// valid MIME type (spec §4.3 step 2 requires an explicit mime for
// ExtractBytes, unlike ExtractFile which may defer to detection).
func (e *Engine) ExtractBytes(ctx context.Context, data []byte, mime string, cfg ExtractionConfig) (ExtractionResult, error) {
	return e.dispatcher.ExtractBytes(ctx, data, mime, cfg)
}

// ExtractFileSync blocks on the shared process-lifetime worker pool (C10).
func (e *Engine) ExtractFileSync(ctx context.Context, path, mimeOverride string, cfg ExtractionConfig) (ExtractionResult, error) {
	return e.sync.ExtractFile(ctx, path, mimeOverride, cfg)
}

// ExtractBytesSync blocks on the shared process-lifetime worker pool (C10).
func (e *Engine) ExtractBytesSync(ctx context.Context, data []byte, mime string, cfg ExtractionConfig) (ExtractionResult, error) {
	return e.sync.ExtractBytes(ctx, data, mime, cfg)
}

// BatchExtractFiles runs the bounded-concurrency batch orchestrator (C9)
// over paths, blocking until every item completes or an I/O error aborts
// the whole batch.
func (e *Engine) BatchExtractFiles(ctx context.Context, paths []string, cfg ExtractionConfig) ([]ExtractionResult, error) {
	return e.sync.BatchExtractFiles(ctx, paths, cfg)
}

// BatchExtractBytes is BatchExtractFiles' in-memory counterpart.
func (e *Engine) BatchExtractBytes(ctx context.Context, contents [][]byte, mimes []string, cfg ExtractionConfig) ([]ExtractionResult, error) {
	return e.sync.BatchExtractBytes(ctx, contents, mimes, cfg)
}

// BatchExtractImages runs the OCR processor's dedicated data-parallel batch
// executor (spec §4.5) directly over image file paths, bypassing extractor
// dispatch and post-processing. Use this when every path is already known
// to be an image and only raw OCR output is wanted; BatchExtractFiles is
// the general entry point that also handles non-image formats.
func (e *Engine) BatchExtractImages(ctx context.Context, paths []string, cfg model.OCRConfig) ([]ocr.BatchItemResult, error) {
	backend, ok := e.OcrBackends.Get("tesseract")
	if !ok {
		return nil, kerrors.Newf(kerrors.Internal, "kreuzberg.batch_extract_images", "no tesseract backend registered")
	}
	tess, ok := backend.(*ocr.TesseractBackend)
	if !ok {
		return nil, kerrors.Newf(kerrors.Internal, "kreuzberg.batch_extract_images", "registered backend is not a *ocr.TesseractBackend")
	}
	return tess.ProcessFilesBatch(ctx, paths, cfg), nil
}
