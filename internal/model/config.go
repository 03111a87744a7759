package model

import "runtime"

// ExtractionConfig is immutable during a single extraction (spec §3).
type ExtractionConfig struct {
	Postprocessor           *PostprocessorConfig
	EnableQualityProcessing bool
	Chunking                *ChunkingConfig
	LanguageDetection       *LanguageDetectionConfig
	Keywords                *KeywordsConfig
	MaxConcurrentExtractions int
	OCR                     *OCRConfig
}

// DefaultConfig returns a zero-value-safe config with
// MaxConcurrentExtractions defaulted to cpu_count x 2, per spec §3.
func DefaultConfig() ExtractionConfig {
	return ExtractionConfig{MaxConcurrentExtractions: runtime.NumCPU() * 2}
}

// ResolvedConcurrency returns MaxConcurrentExtractions, defaulting to
// cpu_count x 2 when unset or non-positive.
func (c ExtractionConfig) ResolvedConcurrency() int {
	if c.MaxConcurrentExtractions > 0 {
		return c.MaxConcurrentExtractions
	}
	return runtime.NumCPU() * 2
}

// PostprocessorConfig filters which registered post-processors run.
type PostprocessorConfig struct {
	Enabled            bool
	EnabledProcessors  map[string]struct{} // whitelist; nil means "no whitelist"
	DisabledProcessors map[string]struct{} // blacklist; nil means "no blacklist"
}

// ShouldRun decides whether a processor named `name` should execute, given
// the whitelist/blacklist precedence rule of spec §3: whitelist takes
// precedence over blacklist; an empty (non-nil) whitelist disables all.
func (c *PostprocessorConfig) ShouldRun(name string) bool {
	if c == nil {
		return true
	}
	if !c.Enabled {
		return false
	}
	if c.EnabledProcessors != nil {
		_, ok := c.EnabledProcessors[name]
		return ok
	}
	if c.DisabledProcessors != nil {
		_, ok := c.DisabledProcessors[name]
		return !ok
	}
	return true
}

// ChunkingConfig configures the text chunker and optional embedding pass.
type ChunkingConfig struct {
	MaxChars   int
	MaxOverlap int
	Embedding  *EmbeddingConfig
	Preset     string
}

// EmbeddingConfig selects the embedding model/backend for chunk vectors.
// Embedding model wiring itself is out of CORE scope (spec §1); this is
// only the configuration shape the chunking stage checks for presence.
type EmbeddingConfig struct {
	Model string
}

// LanguageDetectionConfig configures the language-detection stage.
type LanguageDetectionConfig struct {
	Enabled        bool
	MinConfidence  float64 // in [0,1]
	DetectMultiple bool
}

// KeywordsConfig selects a keyword-extraction algorithm. The algorithms
// themselves are out of CORE scope (spec §1); only the selection record is
// part of the pipeline's config contract.
type KeywordsConfig struct {
	Algorithm string
	TopN      int
}

// OCROutputFormat enumerates the Tesseract output shapes spec §3 names.
type OCROutputFormat string

const (
	OCROutputText     OCROutputFormat = "text"
	OCROutputMarkdown OCROutputFormat = "markdown"
	OCROutputHOCR     OCROutputFormat = "hocr"
	OCROutputTSV      OCROutputFormat = "tsv"
)

// OCRConfig configures the OCR processor (spec §3, §4.5).
type OCRConfig struct {
	Language             string
	PSM                  int
	OutputFormat         OCROutputFormat
	EnableTableDetection bool
	UseCache             bool

	TableMinConfidence     float64
	TableColumnThreshold   int
	TableRowThresholdRatio float64

	// Tesseract tuning flags, passed through to the tesseract invocation.
	TesseditCharWhitelist string
	TesseditCharBlacklist string
	TextordSpaceSizeIsVariable bool
}
