// Package ocr implements the cache-backed, single-pass OCR processor (C5):
// deterministic caching over image bytes, and batch parallelism over
// multiple images.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"
	"time"

	"github.com/kreuzberg-go/kreuzberg/internal/cachefs"
	"github.com/kreuzberg-go/kreuzberg/internal/debug"
	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
	"github.com/kreuzberg-go/kreuzberg/internal/subprocess"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// TesseractTimeout bounds a single tesseract invocation.
const TesseractTimeout = 60 * time.Second

// Processor runs OCR over image bytes with cache-backed deduplication.
type Processor struct {
	Cache          *cachefs.Cache
	TessdataDir    string // explicit override; "" defers to resolution order
}

// NewProcessor constructs a Processor backed by cache as given; kreuzberg.New
// passes one rooted at the OCR cache subdirectory (disjoint from the
// content cache, per spec §5). A nil cache disables OCR caching.
func NewProcessor(cache *cachefs.Cache) *Processor {
	return &Processor{Cache: cache}
}

// ProcessImage runs the full pipeline described in spec §4.5: validate
// config, hash image+config, consult cache, decode, recognize, format,
// optionally detect tables, strip control characters, populate metadata,
// and write through to cache.
func (p *Processor) ProcessImage(ctx context.Context, imageBytes []byte, cfg model.OCRConfig) (model.ExtractionResult, error) {
	if err := ValidateConfig(cfg, p.TessdataDir); err != nil {
		return model.ExtractionResult{}, err
	}

	key := cacheKey(imageBytes, cfg)
	debug.Log("OCR", "cache key %s for %d image bytes\n", key, len(imageBytes))

	if cfg.UseCache && p.Cache != nil {
		if cached, ok := p.Cache.Get(key, ""); ok {
			var result model.ExtractionResult
			if err := decodeCachedResult(cached, &result); err == nil {
				return result, nil
			}
		}
	}

	width, height, err := decodeImageDimensions(imageBytes)
	if err != nil {
		return model.ExtractionResult{}, kerrors.New(kerrors.Ocr, "ocr.process_image", err)
	}

	in, err := subprocess.NewTempFile("", "kreuzberg-ocr-*.png", imageBytes)
	if err != nil {
		return model.ExtractionResult{}, err
	}
	defer in.Close()

	args := tesseractArgs(in.Path, cfg)
	res, err := subprocess.Run(ctx, TesseractTimeout, "tesseract", args...)
	if err != nil {
		return model.ExtractionResult{}, kerrors.New(kerrors.Ocr, "ocr.process_image", err)
	}

	content := formatOutput(string(res.Stdout), cfg.OutputFormat)
	content = stripControlChars(content)

	result := model.NewExtractionResult(content, "text/plain")
	result.Metadata.SetAdditional("ocr_language", cfg.Language)
	result.Metadata.SetAdditional("ocr_psm", cfg.PSM)
	result.Metadata.SetAdditional("ocr_output_format", string(cfg.OutputFormat))
	result.Metadata.SetAdditional("ocr_source_format", detectedFormat(imageBytes))
	result.Metadata.SetAdditional("ocr_image_width", width)
	result.Metadata.SetAdditional("ocr_image_height", height)

	if cfg.EnableTableDetection || cfg.OutputFormat == model.OCROutputTSV {
		if table, ok := reconstructTableFromTSV(string(res.Stdout), cfg); ok {
			result.Tables = append(result.Tables, table)
		}
	}
	result.Metadata.SetAdditional("ocr_table_count", len(result.Tables))

	if cfg.UseCache && p.Cache != nil {
		if encoded, err := encodeCachedResult(result); err == nil {
			_ = p.Cache.Set(key, encoded, "")
		}
	}
	return result, nil
}

func tesseractArgs(imagePath string, cfg model.OCRConfig) []string {
	args := []string{imagePath, "stdout"}
	if cfg.Language != "" {
		args = append(args, "-l", cfg.Language)
	}
	if cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(cfg.PSM))
	}
	switch cfg.OutputFormat {
	case model.OCROutputTSV:
		args = append(args, "tsv")
	case model.OCROutputHOCR:
		args = append(args, "hocr")
	}
	if cfg.TesseditCharWhitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+cfg.TesseditCharWhitelist)
	}
	if cfg.TesseditCharBlacklist != "" {
		args = append(args, "-c", "tessedit_char_blacklist="+cfg.TesseditCharBlacklist)
	}
	if cfg.TextordSpaceSizeIsVariable {
		args = append(args, "-c", "textord_space_size_is_variable=1")
	}
	return args
}

// formatOutput re-expresses raw tesseract stdout per the requested output
// format. Plain text and raw hOCR pass through unchanged; Markdown is a
// light projection over hOCR/text and TSV is left for the table
// reconstruction step to parse.
func formatOutput(raw string, format model.OCROutputFormat) string {
	switch format {
	case model.OCROutputMarkdown:
		return strings.TrimSpace(raw)
	default:
		return raw
	}
}

func stripControlChars(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || r >= 0x20 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func decodeImageDimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		return cfg.Width, cfg.Height, nil
	}
	if bmpCfg, bmpErr := bmp.DecodeConfig(bytes.NewReader(data)); bmpErr == nil {
		return bmpCfg.Width, bmpCfg.Height, nil
	}
	if tiffCfg, tiffErr := tiff.DecodeConfig(bytes.NewReader(data)); tiffErr == nil {
		return tiffCfg.Width, tiffCfg.Height, nil
	}
	return 0, 0, fmt.Errorf("unrecognized image format: %w", err)
}

func detectedFormat(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		return format
	}
	if _, err := bmp.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "bmp"
	}
	if _, err := tiff.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "tiff"
	}
	return "unknown"
}
