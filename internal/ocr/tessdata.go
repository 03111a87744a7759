package ocr

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// fallbackTessdataPaths lists fixed fallback locations scanned when
// TESSDATA_PREFIX is unset, per spec §4.5 step 1 and §6.
func fallbackTessdataPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/opt/homebrew/share/tessdata",
			"/usr/local/share/tessdata",
			"/usr/local/Cellar/tesseract/tessdata",
		}
	case "windows":
		return []string{
			`C:\Program Files\Tesseract-OCR\tessdata`,
			`C:\Program Files (x86)\Tesseract-OCR\tessdata`,
		}
	default:
		return []string{
			"/usr/share/tesseract-ocr/5/tessdata",
			"/usr/share/tesseract-ocr/4.00/tessdata",
			"/usr/share/tessdata",
			"/usr/local/share/tessdata",
		}
	}
}

// ResolveTessdataDir resolves the tessdata directory in order: an explicit
// override (from OCRConfig-adjacent configuration), then TESSDATA_PREFIX,
// then the fixed fallback list for the current OS (spec §4.5 step 1).
func ResolveTessdataDir(explicit string) (string, error) {
	candidates := make([]string, 0, 2+len(fallbackTessdataPaths()))
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	if prefix := os.Getenv("TESSDATA_PREFIX"); prefix != "" {
		candidates = append(candidates, prefix)
	}
	candidates = append(candidates, fallbackTessdataPaths()...)

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", kerrors.Newf(kerrors.MissingDependency, "ocr.resolve_tessdata_dir",
		"no tessdata directory found among %d candidates", len(candidates))
}

// ValidateConfig checks that cfg names a language and that the language's
// trained-data file exists under the resolved tessdata directory (spec
// §4.5 step 1).
func ValidateConfig(cfg model.OCRConfig, explicitTessdataDir string) error {
	if cfg.Language == "" {
		return kerrors.Newf(kerrors.Validation, "ocr.validate_config", "language must not be empty")
	}
	dir, err := ResolveTessdataDir(explicitTessdataDir)
	if err != nil {
		return err
	}
	for _, lang := range splitLanguages(cfg.Language) {
		path := filepath.Join(dir, lang+".traineddata")
		if _, err := os.Stat(path); err != nil {
			return kerrors.Newf(kerrors.MissingDependency, "ocr.validate_config",
				"language file not found: %s", path)
		}
	}
	return nil
}

func splitLanguages(lang string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(lang); i++ {
		if i == len(lang) || lang[i] == '+' {
			if i > start {
				out = append(out, lang[start:i])
			}
			start = i + 1
		}
	}
	return out
}
