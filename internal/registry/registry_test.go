package registry

import (
	"context"
	"testing"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	name      string
	mimes     []string
	priority  int
	shutdowns int
}

func (f *fakeExtractor) Name() string              { return f.name }
func (f *fakeExtractor) Version() string            { return "1.0.0" }
func (f *fakeExtractor) Initialize() error          { return nil }
func (f *fakeExtractor) Shutdown() error            { f.shutdowns++; return nil }
func (f *fakeExtractor) SupportedMimeTypes() []string { return f.mimes }
func (f *fakeExtractor) Priority() int              { return f.priority }
func (f *fakeExtractor) CanHandle(path, mime string) bool { return true }
func (f *fakeExtractor) ExtractBytes(ctx context.Context, data []byte, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	return model.NewExtractionResult(f.name, mime), nil
}
func (f *fakeExtractor) ExtractFile(ctx context.Context, path, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	return DefaultExtractFile(ctx, f, path, mime, cfg)
}

func TestExtractorLookupPrefersHigherPriority(t *testing.T) {
	r := NewExtractorRegistry()
	require.NoError(t, r.Register(&fakeExtractor{name: "low", mimes: []string{"text/plain"}, priority: 10}))
	require.NoError(t, r.Register(&fakeExtractor{name: "high", mimes: []string{"text/plain"}, priority: 90}))

	found, err := r.Lookup("text/plain")
	require.NoError(t, err)
	assert.Equal(t, "high", found.Name())
}

func TestExtractorLookupFallsBackToPrefixPattern(t *testing.T) {
	r := NewExtractorRegistry()
	require.NoError(t, r.Register(&fakeExtractor{name: "generic-text", mimes: []string{"text/*"}, priority: 20}))

	found, err := r.Lookup("text/x-whatever")
	require.NoError(t, err)
	assert.Equal(t, "generic-text", found.Name())
}

func TestExtractorLookupUnsupported(t *testing.T) {
	r := NewExtractorRegistry()
	_, err := r.Lookup("application/x-nonexistent")
	require.Error(t, err)
	assert.Equal(t, kerrors.UnsupportedFormat, kerrors.KindOf(err))
}

func TestValidateNameRejectsEmptyAndWhitespace(t *testing.T) {
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("has space"))
	assert.NoError(t, ValidateName("valid-name"))
}

type fakeProcessor struct {
	name  string
	stage Stage
}

func (f *fakeProcessor) Name() string     { return f.name }
func (f *fakeProcessor) Version() string   { return "1.0.0" }
func (f *fakeProcessor) Initialize() error { return nil }
func (f *fakeProcessor) Shutdown() error   { return nil }
func (f *fakeProcessor) ProcessingStage() Stage { return f.stage }
func (f *fakeProcessor) ShouldProcess(r *model.ExtractionResult, cfg model.ExtractionConfig) bool {
	return true
}
func (f *fakeProcessor) Process(r *model.ExtractionResult, cfg model.ExtractionConfig) error {
	r.Content += "[" + f.name + "]"
	return nil
}

func TestPostProcessorFIFOWithinEqualPriority(t *testing.T) {
	r := NewPostProcessorRegistry()
	require.NoError(t, r.Register(&fakeProcessor{name: "p1", stage: Early}, 50))
	require.NoError(t, r.Register(&fakeProcessor{name: "p2", stage: Early}, 50))

	list := r.GetForStage(Early)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].Name())
	assert.Equal(t, "p2", list[1].Name())
}

func TestPostProcessorDescendingPriority(t *testing.T) {
	r := NewPostProcessorRegistry()
	require.NoError(t, r.Register(&fakeProcessor{name: "low", stage: Early}, 10))
	require.NoError(t, r.Register(&fakeProcessor{name: "high", stage: Early}, 90))

	list := r.GetForStage(Early)
	require.Len(t, list, 2)
	assert.Equal(t, "high", list[0].Name())
}

func TestPostProcessorSnapshotUnaffectedByLateRegistration(t *testing.T) {
	r := NewPostProcessorRegistry()
	require.NoError(t, r.Register(&fakeProcessor{name: "p1", stage: Early}, 50))

	snapshot := r.GetForStage(Early)
	require.NoError(t, r.Register(&fakeProcessor{name: "p2", stage: Early}, 100))

	assert.Len(t, snapshot, 1)
	assert.Len(t, r.GetForStage(Early), 2)
}

type fakeValidator struct {
	name     string
	priority int
	err      error
}

func (f *fakeValidator) Name() string     { return f.name }
func (f *fakeValidator) Version() string   { return "1.0.0" }
func (f *fakeValidator) Initialize() error { return nil }
func (f *fakeValidator) Shutdown() error   { return nil }
func (f *fakeValidator) Priority() int     { return f.priority }
func (f *fakeValidator) ShouldValidate(r *model.ExtractionResult, cfg model.ExtractionConfig) bool {
	return true
}
func (f *fakeValidator) Validate(r *model.ExtractionResult, cfg model.ExtractionConfig) error {
	return f.err
}

func TestValidatorRegistryDescendingPriority(t *testing.T) {
	r := NewValidatorRegistry()
	require.NoError(t, r.Register(&fakeValidator{name: "low", priority: 1}))
	require.NoError(t, r.Register(&fakeValidator{name: "high", priority: 100}))

	all := r.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "high", all[0].Name())
}

func TestExtractorRegistryRemoveCallsShutdownOnce(t *testing.T) {
	r := NewExtractorRegistry()
	e := &fakeExtractor{name: "x", mimes: []string{"a/b", "a/c"}, priority: 1}
	require.NoError(t, r.Register(e))
	require.NoError(t, r.Remove("x"))
	assert.Equal(t, 1, e.shutdowns)
	_, err := r.Lookup("a/b")
	require.Error(t, err)
}
