package ocr

import (
	"context"
	"os"
	"runtime"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchItemResult is one entry of a batch OCR run: exactly one of Result
// or Err is set (spec §4.5).
type BatchItemResult struct {
	Path    string
	Success bool
	Result  model.ExtractionResult
	Err     error
}

// ProcessFilesBatch fans out ProcessImage across available cores with a
// data-parallel executor (spec §4.5, §9: OCR recognition is CPU-bound and
// blocking, so it uses a dedicated executor rather than the cooperative
// scheduler). Input order is preserved; one file's failure never aborts
// the others.
func (p *Processor) ProcessFilesBatch(ctx context.Context, paths []string, cfg model.OCRConfig) []BatchItemResult {
	results := make([]BatchItemResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		i, path := i, path
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					results[i] = BatchItemResult{Path: path, Success: false,
						Err: kerrors.Newf(kerrors.Internal, "ocr.process_files_batch", "panic: %v", r)}
				}
			}()
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				results[i] = BatchItemResult{Path: path, Success: false,
					Err: kerrors.New(kerrors.Io, "ocr.process_files_batch", readErr)}
				return nil
			}
			result, procErr := p.ProcessImage(groupCtx, data, cfg)
			if procErr != nil {
				results[i] = BatchItemResult{Path: path, Success: false, Err: procErr}
				return nil
			}
			results[i] = BatchItemResult{Path: path, Success: true, Result: result}
			return nil
		})
	}
	_ = group.Wait() // per-item errors are captured in results, never propagated
	return results
}
