// Package batch implements the batch orchestrator (C9): bounded-concurrency
// fan-out over the dispatcher's single-item entry points, with per-task
// error handling that distinguishes system (I/O) failures from recoverable
// per-item failures.
package batch

import (
	"context"
	"fmt"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Extractor is the subset of *dispatch.Dispatcher the batch orchestrator
// needs, named as an interface so tests can supply a fake without
// constructing a full dispatcher.
type Extractor interface {
	ExtractFile(ctx context.Context, path, mimeOverride string, cfg model.ExtractionConfig) (model.ExtractionResult, error)
	ExtractBytes(ctx context.Context, data []byte, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error)
}

// ExtractFiles implements spec §4.7's batch_extract_file: one task per
// path, bounded by a semaphore sized to cfg.ResolvedConcurrency(), input
// order preserved.
func ExtractFiles(ctx context.Context, e Extractor, paths []string, cfg model.ExtractionConfig) ([]model.ExtractionResult, error) {
	return runBatch(ctx, cfg, len(paths), func(ctx context.Context, i int) (model.ExtractionResult, error) {
		return e.ExtractFile(ctx, paths[i], "", cfg)
	})
}

// ExtractBytesBatch implements spec §4.7's batch_extract_bytes.
func ExtractBytesBatch(ctx context.Context, e Extractor, contents [][]byte, mimes []string, cfg model.ExtractionConfig) ([]model.ExtractionResult, error) {
	return runBatch(ctx, cfg, len(contents), func(ctx context.Context, i int) (model.ExtractionResult, error) {
		return e.ExtractBytes(ctx, contents[i], mimes[i], cfg)
	})
}

// runBatch fans a task out across n indices: a semaphore bounds concurrency
// to ResolvedConcurrency() permits, and an errgroup collects the first
// aborting error (I/O, panic, or context cancellation) while letting
// every other per-item failure degrade to a placeholder result instead of
// aborting (spec §4.7).
func runBatch(ctx context.Context, cfg model.ExtractionConfig, n int, task func(context.Context, int) (model.ExtractionResult, error)) ([]model.ExtractionResult, error) {
	if n == 0 {
		return nil, nil
	}

	sem := semaphore.NewWeighted(int64(cfg.ResolvedConcurrency()))
	group, groupCtx := errgroup.WithContext(ctx)
	results := make([]model.ExtractionResult, n)

	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			if err := sem.Acquire(groupCtx, 1); err != nil {
				return kerrors.New(kerrors.Internal, "batch.run", err)
			}
			defer sem.Release(1)

			result, err := runTaskSafely(groupCtx, i, task)
			if err != nil {
				// runTaskSafely reports a recovered panic as an Internal
				// error with op "batch.task"; like I/O, it aborts the batch.
				panicked := false
				if ke, ok := err.(*kerrors.Error); ok && ke.Op == "batch.task" {
					panicked = true
				}
				if kerrors.KindOf(err) == kerrors.Io || panicked {
					return err
				}
				results[i] = placeholderResult(err)
				return nil
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runTaskSafely(ctx context.Context, i int, task func(context.Context, int) (model.ExtractionResult, error)) (result model.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = kerrors.Newf(kerrors.Internal, "batch.task", "panic in task %d: %v", i, r)
		}
	}()
	return task(ctx, i)
}

func placeholderResult(taskErr error) model.ExtractionResult {
	result := model.NewExtractionResult(fmt.Sprintf("Error: %s", taskErr.Error()), "text/plain")
	result.Metadata.SetAdditional("error", model.ErrorMetadata{
		Kind:    kerrors.KindOf(taskErr).ContractName(),
		Message: taskErr.Error(),
	})
	return result
}
