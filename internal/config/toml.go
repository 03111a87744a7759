package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// tomlConfig mirrors model.ExtractionConfig with struct tags go-toml/v2 can
// decode into directly; the exported loader converts it to the real shape.
type tomlConfig struct {
	MaxConcurrentExtractions int                   `toml:"max_concurrent_extractions"`
	EnableQualityProcessing  bool                  `toml:"enable_quality_processing"`
	Postprocessor            *tomlPostprocessor    `toml:"postprocessor"`
	Chunking                 *tomlChunking         `toml:"chunking"`
	LanguageDetection        *tomlLanguageDetect   `toml:"language_detection"`
	Keywords                 *tomlKeywords         `toml:"keywords"`
	OCR                      *tomlOCR              `toml:"ocr"`
}

type tomlPostprocessor struct {
	Enabled            bool     `toml:"enabled"`
	EnabledProcessors  []string `toml:"enabled_processors"`
	DisabledProcessors []string `toml:"disabled_processors"`
}

type tomlChunking struct {
	MaxChars   int            `toml:"max_chars"`
	MaxOverlap int            `toml:"max_overlap"`
	Preset     string         `toml:"preset"`
	Embedding  *tomlEmbedding `toml:"embedding"`
}

type tomlEmbedding struct {
	Model string `toml:"model"`
}

type tomlLanguageDetect struct {
	Enabled        bool    `toml:"enabled"`
	MinConfidence  float64 `toml:"min_confidence"`
	DetectMultiple bool    `toml:"detect_multiple"`
}

type tomlKeywords struct {
	Algorithm string `toml:"algorithm"`
	TopN      int    `toml:"top_n"`
}

type tomlOCR struct {
	Language                   string  `toml:"language"`
	PSM                        int     `toml:"psm"`
	OutputFormat               string  `toml:"output_format"`
	EnableTableDetection       bool    `toml:"enable_table_detection"`
	UseCache                   bool    `toml:"use_cache"`
	TableMinConfidence         float64 `toml:"table_min_confidence"`
	TableColumnThreshold       int     `toml:"table_column_threshold"`
	TableRowThresholdRatio     float64 `toml:"table_row_threshold_ratio"`
	TesseditCharWhitelist      string  `toml:"tessedit_char_whitelist"`
	TesseditCharBlacklist      string  `toml:"tessedit_char_blacklist"`
	TextordSpaceSizeIsVariable bool    `toml:"textord_space_size_is_variable"`
}

// LoadTOML parses TOML-formatted config bytes into an ExtractionConfig,
// starting from model.DefaultConfig() and overlaying whatever top-level
// tables are present.
func LoadTOML(content []byte) (model.ExtractionConfig, error) {
	cfg := model.DefaultConfig()

	var tc tomlConfig
	if err := toml.Unmarshal(content, &tc); err != nil {
		return model.ExtractionConfig{}, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if tc.MaxConcurrentExtractions > 0 {
		cfg.MaxConcurrentExtractions = tc.MaxConcurrentExtractions
	}
	cfg.EnableQualityProcessing = tc.EnableQualityProcessing

	if tc.Postprocessor != nil {
		cfg.Postprocessor = &model.PostprocessorConfig{
			Enabled:            tc.Postprocessor.Enabled,
			EnabledProcessors:  toSet(tc.Postprocessor.EnabledProcessors),
			DisabledProcessors: toSet(tc.Postprocessor.DisabledProcessors),
		}
	}

	if tc.Chunking != nil {
		c := &model.ChunkingConfig{
			MaxChars:   tc.Chunking.MaxChars,
			MaxOverlap: tc.Chunking.MaxOverlap,
			Preset:     tc.Chunking.Preset,
		}
		if tc.Chunking.Embedding != nil {
			c.Embedding = &model.EmbeddingConfig{Model: tc.Chunking.Embedding.Model}
		}
		cfg.Chunking = c
	}

	if tc.LanguageDetection != nil {
		cfg.LanguageDetection = &model.LanguageDetectionConfig{
			Enabled:        tc.LanguageDetection.Enabled,
			MinConfidence:  tc.LanguageDetection.MinConfidence,
			DetectMultiple: tc.LanguageDetection.DetectMultiple,
		}
	}

	if tc.Keywords != nil {
		cfg.Keywords = &model.KeywordsConfig{
			Algorithm: tc.Keywords.Algorithm,
			TopN:      tc.Keywords.TopN,
		}
	}

	if tc.OCR != nil {
		cfg.OCR = &model.OCRConfig{
			Language:                   tc.OCR.Language,
			PSM:                        tc.OCR.PSM,
			OutputFormat:               model.OCROutputFormat(tc.OCR.OutputFormat),
			EnableTableDetection:       tc.OCR.EnableTableDetection,
			UseCache:                   tc.OCR.UseCache,
			TableMinConfidence:         tc.OCR.TableMinConfidence,
			TableColumnThreshold:       tc.OCR.TableColumnThreshold,
			TableRowThresholdRatio:     tc.OCR.TableRowThresholdRatio,
			TesseditCharWhitelist:      tc.OCR.TesseditCharWhitelist,
			TesseditCharBlacklist:      tc.OCR.TesseditCharBlacklist,
			TextordSpaceSizeIsVariable: tc.OCR.TextordSpaceSizeIsVariable,
		}
		if o := cfg.OCR; o.OutputFormat == "" {
			o.OutputFormat = model.OCROutputText
		}
	}

	return cfg, nil
}
