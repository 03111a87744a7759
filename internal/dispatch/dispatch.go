// Package dispatch implements the extractor dispatcher (C7): the single
// entry point that resolves a MIME type, pre-converts legacy Office
// formats, looks up a DocumentExtractor, and runs the post-processing
// pipeline over its result.
package dispatch

import (
	"context"
	"os"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/mimeutil"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/pipeline"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
	"github.com/kreuzberg-go/kreuzberg/internal/subprocess"
)

// Dispatcher wires together the collaborators named in spec §4.3: a MIME
// detector, the extractor registry, and the pipeline's post-processor/
// validator registries.
type Dispatcher struct {
	Extractors     *registry.ExtractorRegistry
	PostProcessors *registry.PostProcessorRegistry
	Validators     *registry.ValidatorRegistry
	Detector       *mimeutil.Detector
}

// New constructs a Dispatcher whose Detector is a fresh
// mimeutil.Detector.
func New(extractors *registry.ExtractorRegistry, postProcessors *registry.PostProcessorRegistry, validators *registry.ValidatorRegistry) *Dispatcher {
	return &Dispatcher{
		Extractors:     extractors,
		PostProcessors: postProcessors,
		Validators:     validators,
		Detector:       mimeutil.NewDetector(),
	}
}

// ExtractFile implements spec §4.3's extract_file algorithm.
func (d *Dispatcher) ExtractFile(ctx context.Context, path, mimeOverride string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	if _, err := os.Stat(path); err != nil {
		return model.ExtractionResult{}, kerrors.New(kerrors.Validation, "dispatch.extract_file", err)
	}

	mime, err := d.resolveMimeForPath(path, mimeOverride)
	if err != nil {
		return model.ExtractionResult{}, err
	}

	if mimeutil.IsLegacyOffice(mime) {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.ExtractionResult{}, kerrors.New(kerrors.Io, "dispatch.extract_file", err)
		}
		return d.extractLegacyOffice(ctx, data, mime, cfg)
	}

	extractor, err := d.Extractors.Lookup(mime)
	if err != nil {
		return model.ExtractionResult{}, err
	}

	result, err := extractor.ExtractFile(ctx, path, mime, cfg)
	if err != nil {
		return model.ExtractionResult{}, err
	}
	if err := pipeline.Run(pipeline.Registries{PostProcessors: d.PostProcessors, Validators: d.Validators}, &result, cfg); err != nil {
		return model.ExtractionResult{}, err
	}
	return result, nil
}

// ExtractBytes implements spec §4.3's extract_bytes algorithm: analogous to
// ExtractFile but without a file-existence check, and mime must be
// explicitly supplied.
func (d *Dispatcher) ExtractBytes(ctx context.Context, data []byte, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	if err := mimeutil.ValidateMime(mime); err != nil {
		return model.ExtractionResult{}, err
	}

	if mimeutil.IsLegacyOffice(mime) {
		return d.extractLegacyOffice(ctx, data, mime, cfg)
	}

	extractor, err := d.Extractors.Lookup(mime)
	if err != nil {
		return model.ExtractionResult{}, err
	}

	result, err := extractor.ExtractBytes(ctx, data, mime, cfg)
	if err != nil {
		return model.ExtractionResult{}, err
	}
	if err := pipeline.Run(pipeline.Registries{PostProcessors: d.PostProcessors, Validators: d.Validators}, &result, cfg); err != nil {
		return model.ExtractionResult{}, err
	}
	return result, nil
}

// resolveMimeForPath validates an explicit override, or else sniffs the
// file's MIME via the detector (spec §4.3 step 2).
func (d *Dispatcher) resolveMimeForPath(path, mimeOverride string) (string, error) {
	if mimeOverride != "" {
		if err := mimeutil.ValidateMime(mimeOverride); err != nil {
			return "", err
		}
		return mimeOverride, nil
	}
	return d.Detector.DetectPath(path)
}

// extractLegacyOffice pre-converts legacy Word/PowerPoint bytes to modern
// DOCX/PPTX via LibreOffice, recurses on the converted bytes, then stamps
// the conversion record and restores the original MIME on the result
// (spec §4.3 step 3).
func (d *Dispatcher) extractLegacyOffice(ctx context.Context, data []byte, originalMime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	targetMime := mimeutil.LegacyConversionTarget(originalMime)
	sourceExt, targetExt := legacyExtensions(originalMime)

	converted, err := subprocess.ConvertLegacyOffice(ctx, data, sourceExt, targetExt)
	if err != nil {
		return model.ExtractionResult{}, err
	}

	result, err := d.ExtractBytes(ctx, converted, targetMime, cfg)
	if err != nil {
		return model.ExtractionResult{}, err
	}

	result.Metadata.SetAdditional("libreoffice_conversion", map[string]string{
		"from": originalMime,
		"to":   targetMime,
	})
	result.MimeType = originalMime
	return result, nil
}

func legacyExtensions(legacyMime string) (sourceExt, targetExt string) {
	if legacyMime == mimeutil.LegacyWord {
		return ".doc", ".docx"
	}
	return ".ppt", ".pptx"
}
