// Package config loads model.ExtractionConfig from a KDL file (the primary
// format, following the conventional ".kreuzberg.kdl" project config) or a
// TOML file (an alternate format for callers who prefer it). CLI-flag
// overrides are applied on top by the caller (cmd/kreuzberg), not here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// DefaultKDLFilename is the conventional config filename kreuzberg looks
// for in a project root.
const DefaultKDLFilename = ".kreuzberg.kdl"

// DefaultTOMLFilename is the alternate config filename.
const DefaultTOMLFilename = ".kreuzberg.toml"

// Load reads configPath and parses it as KDL or TOML based on its
// extension (".toml" selects the TOML loader; anything else is parsed as
// KDL). A missing file is not an error: it returns model.DefaultConfig().
func Load(configPath string) (model.ExtractionConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultConfig(), nil
		}
		return model.ExtractionConfig{}, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		return LoadTOML(data)
	}
	return LoadKDL(data)
}

// LoadKDL parses KDL-formatted config bytes into an ExtractionConfig,
// starting from model.DefaultConfig() and overlaying whatever sections
// are present.
func LoadKDL(content []byte) (model.ExtractionConfig, error) {
	cfg := model.DefaultConfig()

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return model.ExtractionConfig{}, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "max_concurrent_extractions":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxConcurrentExtractions = v
			}
		case "enable_quality_processing":
			if b, ok := firstBoolArg(n); ok {
				cfg.EnableQualityProcessing = b
			}
		case "postprocessor":
			cfg.Postprocessor = parsePostprocessor(n)
		case "chunking":
			cfg.Chunking = parseChunking(n)
		case "language_detection":
			cfg.LanguageDetection = parseLanguageDetection(n)
		case "keywords":
			cfg.Keywords = parseKeywords(n)
		case "ocr":
			cfg.OCR = parseOCR(n)
		}
	}

	return cfg, nil
}

func parsePostprocessor(n *document.Node) *model.PostprocessorConfig {
	pp := &model.PostprocessorConfig{Enabled: true}
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "enabled":
			if b, ok := firstBoolArg(cn); ok {
				pp.Enabled = b
			}
		case "enabled_processors":
			pp.EnabledProcessors = toSet(collectStringArgs(cn))
		case "disabled_processors":
			pp.DisabledProcessors = toSet(collectStringArgs(cn))
		}
	}
	return pp
}

func parseChunking(n *document.Node) *model.ChunkingConfig {
	c := &model.ChunkingConfig{}
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_chars":
			if v, ok := firstIntArg(cn); ok {
				c.MaxChars = v
			}
		case "max_overlap":
			if v, ok := firstIntArg(cn); ok {
				c.MaxOverlap = v
			}
		case "preset":
			if s, ok := firstStringArg(cn); ok {
				c.Preset = s
			}
		case "embedding":
			emb := &model.EmbeddingConfig{}
			for _, en := range cn.Children {
				if nodeName(en) == "model" {
					if s, ok := firstStringArg(en); ok {
						emb.Model = s
					}
				}
			}
			c.Embedding = emb
		}
	}
	return c
}

func parseLanguageDetection(n *document.Node) *model.LanguageDetectionConfig {
	l := &model.LanguageDetectionConfig{Enabled: true}
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "enabled":
			if b, ok := firstBoolArg(cn); ok {
				l.Enabled = b
			}
		case "min_confidence":
			if v, ok := firstFloatArg(cn); ok {
				l.MinConfidence = v
			}
		case "detect_multiple":
			if b, ok := firstBoolArg(cn); ok {
				l.DetectMultiple = b
			}
		}
	}
	return l
}

func parseKeywords(n *document.Node) *model.KeywordsConfig {
	k := &model.KeywordsConfig{}
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "algorithm":
			if s, ok := firstStringArg(cn); ok {
				k.Algorithm = s
			}
		case "top_n":
			if v, ok := firstIntArg(cn); ok {
				k.TopN = v
			}
		}
	}
	return k
}

func parseOCR(n *document.Node) *model.OCRConfig {
	o := &model.OCRConfig{OutputFormat: model.OCROutputText}
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "language":
			if s, ok := firstStringArg(cn); ok {
				o.Language = s
			}
		case "psm":
			if v, ok := firstIntArg(cn); ok {
				o.PSM = v
			}
		case "output_format":
			if s, ok := firstStringArg(cn); ok {
				o.OutputFormat = model.OCROutputFormat(s)
			}
		case "enable_table_detection":
			if b, ok := firstBoolArg(cn); ok {
				o.EnableTableDetection = b
			}
		case "use_cache":
			if b, ok := firstBoolArg(cn); ok {
				o.UseCache = b
			}
		case "table_min_confidence":
			if v, ok := firstFloatArg(cn); ok {
				o.TableMinConfidence = v
			}
		case "table_column_threshold":
			if v, ok := firstIntArg(cn); ok {
				o.TableColumnThreshold = v
			}
		case "table_row_threshold_ratio":
			if v, ok := firstFloatArg(cn); ok {
				o.TableRowThresholdRatio = v
			}
		case "tessedit_char_whitelist":
			if s, ok := firstStringArg(cn); ok {
				o.TesseditCharWhitelist = s
			}
		case "tessedit_char_blacklist":
			if s, ok := firstStringArg(cn); ok {
				o.TesseditCharBlacklist = s
			}
		case "textord_space_size_is_variable":
			if b, ok := firstBoolArg(cn); ok {
				o.TextordSpaceSizeIsVariable = b
			}
		}
	}
	return o
}

func toSet(items []string) map[string]struct{} {
	if items == nil {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

// firstNumericArg returns the node's first argument as a float64 if it is
// an int64 or float64, widening ints so firstIntArg/firstFloatArg share one
// conversion path.
func firstNumericArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func firstIntArg(n *document.Node) (int, bool) {
	v, ok := firstNumericArg(n)
	return int(v), ok
}

func firstFloatArg(n *document.Node) (float64, bool) {
	return firstNumericArg(n)
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// FindProjectConfig looks for DefaultKDLFilename, then DefaultTOMLFilename,
// inside projectRoot. It returns "" if neither exists.
func FindProjectConfig(projectRoot string) string {
	kdlPath := filepath.Join(projectRoot, DefaultKDLFilename)
	if _, err := os.Stat(kdlPath); err == nil {
		return kdlPath
	}
	tomlPath := filepath.Join(projectRoot, DefaultTOMLFilename)
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	return ""
}
