// Package syncapi exposes blocking entry points over the asynchronous core
// (C10): each call acquires a slot on the shared process-lifetime worker
// pool, runs the same dispatcher/pipeline/batch machinery the rest of the
// engine uses, and blocks until it completes. Go has no async/await split
// to bridge — the "async core" already runs on goroutines, so this package
// is just the worker-pool-gated façade spec §4.8 describes.
package syncapi

import (
	"context"

	"github.com/kreuzberg-go/kreuzberg/internal/batch"
	"github.com/kreuzberg-go/kreuzberg/internal/dispatch"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/workerpool"
)

// Engine bundles a dispatcher with the worker pool it blocks on.
type Engine struct {
	Dispatcher *dispatch.Dispatcher
	Pool       *workerpool.Pool
}

// New constructs an Engine backed by the process-wide worker pool singleton.
func New(d *dispatch.Dispatcher) *Engine {
	return &Engine{Dispatcher: d, Pool: workerpool.Global()}
}

// ExtractFile blocks until the file is fully extracted and post-processed.
func (e *Engine) ExtractFile(ctx context.Context, path, mimeOverride string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	if err := e.Pool.Acquire(ctx); err != nil {
		return model.ExtractionResult{}, err
	}
	defer e.Pool.Release()
	return e.Dispatcher.ExtractFile(ctx, path, mimeOverride, cfg)
}

// ExtractBytes blocks until the in-memory content is fully extracted and
// post-processed.
func (e *Engine) ExtractBytes(ctx context.Context, data []byte, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	if err := e.Pool.Acquire(ctx); err != nil {
		return model.ExtractionResult{}, err
	}
	defer e.Pool.Release()
	return e.Dispatcher.ExtractBytes(ctx, data, mime, cfg)
}

// BatchExtractFiles blocks until every file in paths has been processed
// (spec §4.7/§4.8 combined: the batch orchestrator itself manages its own
// internal concurrency, so the worker pool here only gates the batch call
// as a whole, not each item).
func (e *Engine) BatchExtractFiles(ctx context.Context, paths []string, cfg model.ExtractionConfig) ([]model.ExtractionResult, error) {
	if err := e.Pool.Acquire(ctx); err != nil {
		return nil, err
	}
	defer e.Pool.Release()
	return batch.ExtractFiles(ctx, e.Dispatcher, paths, cfg)
}

// BatchExtractBytes blocks until every byte-content item has been processed.
func (e *Engine) BatchExtractBytes(ctx context.Context, contents [][]byte, mimes []string, cfg model.ExtractionConfig) ([]model.ExtractionResult, error) {
	if err := e.Pool.Acquire(ctx); err != nil {
		return nil, err
	}
	defer e.Pool.Release()
	return batch.ExtractBytesBatch(ctx, e.Dispatcher, contents, mimes, cfg)
}
