// Package mimeutil implements the MIME detector interface (C3): producing
// a canonical MIME type from a file path. Detection itself is delegated to
// github.com/gabriel-vasile/mimetype; this package only adds the
// legacy-Office exact-match fast path and the dispatcher-facing validation
// helper named in spec §6.
package mimeutil

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
)

// Canonical MIME constants for legacy Office formats, recognized by exact
// match before dispatch (spec §6).
const (
	LegacyWord       = "application/msword"
	LegacyPowerPoint = "application/vnd.ms-powerpoint"
	DOCX             = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	PPTX             = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	Markdown         = "text/markdown"
	PlainText        = "text/plain"
	HTML             = "text/html"
)

// IsLegacyOffice reports whether mime is a legacy Word or PowerPoint MIME
// that requires pre-conversion (spec §4.3 step 3).
func IsLegacyOffice(mime string) bool {
	return mime == LegacyWord || mime == LegacyPowerPoint
}

// LegacyConversionTarget returns the MIME a legacy format is converted to.
func LegacyConversionTarget(legacyMime string) string {
	switch legacyMime {
	case LegacyWord:
		return DOCX
	case LegacyPowerPoint:
		return PPTX
	default:
		return legacyMime
	}
}

// Detector produces a canonical MIME from a file path (spec §4.3 step 2's
// detection path; ExtractBytes requires an explicit mime, so no byte-buffer
// detection method is exposed here).
type Detector struct{}

// NewDetector constructs a Detector.
func NewDetector() *Detector { return &Detector{} }

// DetectPath sniffs the MIME of the file at path, by content first and
// falling back to the extension (mimetype.DetectFile already does both).
func (d *Detector) DetectPath(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", kerrors.New(kerrors.Io, "mimeutil.detect_path", err)
	}
	return canonicalizeMime(mt.String()), nil
}

// canonicalizeMime strips any MIME parameters (mimetype reports text
// formats as e.g. "text/plain; charset=utf-8") so detection results match
// the bare MIME types the extractor registry is keyed on.
func canonicalizeMime(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

// ValidateMime checks that an explicitly-supplied MIME override is
// syntactically plausible (non-empty, contains a "/"), per spec §4.3 step 2.
func ValidateMime(mime string) error {
	if mime == "" {
		return kerrors.Newf(kerrors.Validation, "mimeutil.validate_mime", "mime type must not be empty")
	}
	if !strings.Contains(mime, "/") {
		return kerrors.Newf(kerrors.Validation, "mimeutil.validate_mime", "malformed mime type: %q", mime)
	}
	return nil
}
