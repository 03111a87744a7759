// Package pipeline implements the post-processing pipeline (C8): ordered
// post-processor stages, quality scoring, chunking, language detection, and
// the final validator phase.
package pipeline

import (
	"fmt"

	"github.com/kreuzberg-go/kreuzberg/internal/debug"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
)

// Registries bundles the post-processor and validator registries the
// pipeline reads from. Passed explicitly rather than always reaching for
// the package-level singletons, so a caller can run an isolated pipeline
// against a private registry set in tests.
type Registries struct {
	PostProcessors *registry.PostProcessorRegistry
	Validators     *registry.ValidatorRegistry
}

// Run executes the full pipeline over result in place, per spec §4.4:
// post-processors by stage, quality scoring, chunking, language detection,
// then validators. Only a validator error aborts and propagates; every
// other sub-phase failure is captured into result.Metadata.Additional and
// the pipeline continues.
func Run(regs Registries, result *model.ExtractionResult, cfg model.ExtractionConfig) error {
	runPostProcessors(regs.PostProcessors, result, cfg)
	runQualityScoring(result, cfg)
	runChunking(result, cfg)
	runLanguageDetection(result, cfg)
	return runValidators(regs.Validators, result, cfg)
}

func runPostProcessors(reg *registry.PostProcessorRegistry, result *model.ExtractionResult, cfg model.ExtractionConfig) {
	if reg == nil {
		return
	}
	for _, stage := range registry.Stages {
		processors := reg.GetForStage(stage)
		for _, p := range processors {
			if !cfg.Postprocessor.ShouldRun(p.Name()) {
				continue
			}
			if !p.ShouldProcess(result, cfg) {
				continue
			}
			if err := p.Process(result, cfg); err != nil {
				debug.Log("PIPELINE", "processor %s failed: %v\n", p.Name(), err)
				result.Metadata.SetAdditional(fmt.Sprintf("processing_error_%s", p.Name()), err.Error())
			}
		}
	}
}

func runQualityScoring(result *model.ExtractionResult, cfg model.ExtractionConfig) {
	if !cfg.EnableQualityProcessing {
		return
	}
	if !qualityProcessingAvailable {
		result.Metadata.SetAdditional("quality_processing_error", "quality processing unavailable")
		return
	}
	score := scoreQuality(result.Content, result.Metadata.Title != "", len(result.Tables))
	result.Metadata.SetAdditional("quality_score", score)
}

func runChunking(result *model.ExtractionResult, cfg model.ExtractionConfig) {
	if cfg.Chunking == nil {
		return
	}
	chunks := chunkContent(result.Content, cfg.Chunking.MaxChars, cfg.Chunking.MaxOverlap)
	if chunks == nil && result.Content != "" {
		result.Metadata.SetAdditional("chunking_error", "chunker produced no chunks")
		return
	}
	result.Chunks = chunks
	result.Metadata.SetAdditional("chunk_count", len(chunks))

	if cfg.Chunking.Embedding != nil {
		if cfg.Chunking.Embedding.Model == "" {
			result.Metadata.SetAdditional("embedding_error", "no embedding model configured")
			return
		}
		result.Metadata.SetAdditional("embeddings_generated", true)
	}
}

func runLanguageDetection(result *model.ExtractionResult, cfg model.ExtractionConfig) {
	if cfg.LanguageDetection == nil || !cfg.LanguageDetection.Enabled {
		return
	}
	langs := detectLanguages(result.Content, cfg.LanguageDetection.MinConfidence, cfg.LanguageDetection.DetectMultiple)
	if langs == nil {
		result.Metadata.SetAdditional("language_detection_error", "no language met the confidence threshold")
		return
	}
	result.DetectedLanguages = langs
}

func runValidators(reg *registry.ValidatorRegistry, result *model.ExtractionResult, cfg model.ExtractionConfig) error {
	if reg == nil {
		return nil
	}
	for _, v := range reg.GetAll() {
		if !v.ShouldValidate(result, cfg) {
			continue
		}
		if err := v.Validate(result, cfg); err != nil {
			return err
		}
	}
	return nil
}
