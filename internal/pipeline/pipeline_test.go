package pipeline

import (
	"errors"
	"testing"

	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	name       string
	stage      registry.Stage
	shouldFail bool
}

func (p *fakeProcessor) Name() string             { return p.name }
func (p *fakeProcessor) Version() string          { return "1.0.0" }
func (p *fakeProcessor) Initialize() error        { return nil }
func (p *fakeProcessor) Shutdown() error          { return nil }
func (p *fakeProcessor) ProcessingStage() registry.Stage { return p.stage }
func (p *fakeProcessor) ShouldProcess(*model.ExtractionResult, model.ExtractionConfig) bool {
	return true
}
func (p *fakeProcessor) Process(result *model.ExtractionResult, _ model.ExtractionConfig) error {
	if p.shouldFail {
		return errors.New("boom")
	}
	result.Metadata.SetAdditional("touched_by_"+p.name, true)
	return nil
}

type fakeValidator struct {
	name       string
	shouldFail bool
}

func (v *fakeValidator) Name() string      { return v.name }
func (v *fakeValidator) Version() string   { return "1.0.0" }
func (v *fakeValidator) Initialize() error { return nil }
func (v *fakeValidator) Shutdown() error   { return nil }
func (v *fakeValidator) Priority() int     { return 0 }
func (v *fakeValidator) ShouldValidate(*model.ExtractionResult, model.ExtractionConfig) bool {
	return true
}
func (v *fakeValidator) Validate(*model.ExtractionResult, model.ExtractionConfig) error {
	if v.shouldFail {
		return errors.New("invalid result")
	}
	return nil
}

func TestRunPostProcessorCapturesErrorAndContinues(t *testing.T) {
	reg := registry.NewPostProcessorRegistry()
	require.NoError(t, reg.Register(&fakeProcessor{name: "fails", stage: registry.Early, shouldFail: true}, 10))
	require.NoError(t, reg.Register(&fakeProcessor{name: "succeeds", stage: registry.Early}, 5))

	result := model.NewExtractionResult("hello", "text/plain")
	cfg := model.ExtractionConfig{Postprocessor: &model.PostprocessorConfig{Enabled: true}}

	err := Run(Registries{PostProcessors: reg}, &result, cfg)
	require.NoError(t, err)

	_, hasErr := result.Metadata.GetAdditional("processing_error_fails")
	assert.True(t, hasErr)
	touched, _ := result.Metadata.GetAdditional("touched_by_succeeds")
	assert.Equal(t, true, touched)
}

func TestRunValidatorErrorAborts(t *testing.T) {
	vregs := registry.NewValidatorRegistry()
	require.NoError(t, vregs.Register(&fakeValidator{name: "v1", shouldFail: true}))

	result := model.NewExtractionResult("hello", "text/plain")
	err := Run(Registries{Validators: vregs}, &result, model.ExtractionConfig{})
	assert.Error(t, err)
}

func TestRunQualityScoring(t *testing.T) {
	result := model.NewExtractionResult("some reasonably long content for scoring purposes", "text/plain")
	cfg := model.ExtractionConfig{EnableQualityProcessing: true}
	require.NoError(t, Run(Registries{}, &result, cfg))
	score, ok := result.Metadata.GetAdditional("quality_score")
	require.True(t, ok)
	assert.Greater(t, score.(float64), 0.0)
}

func TestRunChunking(t *testing.T) {
	content := ""
	for i := 0; i < 50; i++ {
		content += "word "
	}
	result := model.NewExtractionResult(content, "text/plain")
	cfg := model.ExtractionConfig{Chunking: &model.ChunkingConfig{MaxChars: 20, MaxOverlap: 5}}
	require.NoError(t, Run(Registries{}, &result, cfg))
	assert.NotEmpty(t, result.Chunks)
	count, _ := result.Metadata.GetAdditional("chunk_count")
	assert.Equal(t, len(result.Chunks), count)
}

func TestRunChunkingWithMissingEmbeddingModel(t *testing.T) {
	result := model.NewExtractionResult("some content here", "text/plain")
	cfg := model.ExtractionConfig{Chunking: &model.ChunkingConfig{MaxChars: 10, Embedding: &model.EmbeddingConfig{}}}
	require.NoError(t, Run(Registries{}, &result, cfg))
	_, hasErr := result.Metadata.GetAdditional("embedding_error")
	assert.True(t, hasErr)
}

func TestRunLanguageDetectionSingle(t *testing.T) {
	result := model.NewExtractionResult("the quick brown fox and the lazy dog in the park for the win", "text/plain")
	cfg := model.ExtractionConfig{LanguageDetection: &model.LanguageDetectionConfig{Enabled: true, MinConfidence: 0.1}}
	require.NoError(t, Run(Registries{}, &result, cfg))
	assert.Contains(t, result.DetectedLanguages, "eng")
}

func TestRunLanguageDetectionNoMatchRecordsError(t *testing.T) {
	result := model.NewExtractionResult("xyzzy plugh zork", "text/plain")
	cfg := model.ExtractionConfig{LanguageDetection: &model.LanguageDetectionConfig{Enabled: true, MinConfidence: 0.9}}
	require.NoError(t, Run(Registries{}, &result, cfg))
	_, hasErr := result.Metadata.GetAdditional("language_detection_error")
	assert.True(t, hasErr)
}

func TestChunkContentOverlap(t *testing.T) {
	chunks := chunkContent("abcdefghij", 4, 2)
	require.NotEmpty(t, chunks)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestDetectLanguagesMultiple(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog in the sun for the day" +
		" le chat et le chien sont dans la maison de la famille et des amis"
	langs := detectLanguages(text, 0.05, true)
	assert.NotEmpty(t, langs)
}
