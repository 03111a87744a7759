package ocr

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// hashImage computes the fast 64-bit hash of raw image bytes (spec §4.5
// step 2).
func hashImage(imageBytes []byte) uint64 {
	return xxhash.Sum64(imageBytes)
}

// hashConfig computes a hash covering only the operational fields of an
// OCRConfig (spec §3 "Config hash covers the operational fields listed
// above; changing any invalidates"), so cosmetic config fields never
// spuriously invalidate the OCR cache.
func hashConfig(cfg model.OCRConfig) uint64 {
	var b []byte
	b = append(b, cfg.Language...)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(cfg.PSM), 10)
	b = append(b, '|')
	b = append(b, string(cfg.OutputFormat)...)
	b = append(b, '|')
	b = strconv.AppendBool(b, cfg.EnableTableDetection)
	b = append(b, '|')
	b = strconv.AppendFloat(b, cfg.TableMinConfidence, 'g', -1, 64)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(cfg.TableColumnThreshold), 10)
	b = append(b, '|')
	b = strconv.AppendFloat(b, cfg.TableRowThresholdRatio, 'g', -1, 64)
	b = append(b, '|')
	b = append(b, cfg.TesseditCharWhitelist...)
	b = append(b, '|')
	b = append(b, cfg.TesseditCharBlacklist...)
	b = append(b, '|')
	b = strconv.AppendBool(b, cfg.TextordSpaceSizeIsVariable)
	return xxhash.Sum64(b)
}

// cacheKey combines the image hash and config hash per spec §3: "Key =
// hex(hash(image bytes) xor hash(config shape))".
func cacheKey(imageBytes []byte, cfg model.OCRConfig) string {
	combined := hashImage(imageBytes) ^ hashConfig(cfg)
	return fmt.Sprintf("%032x", combined)
}
