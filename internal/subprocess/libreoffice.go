package subprocess

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
)

// LibreOfficeTimeout bounds a single LibreOffice headless conversion.
const LibreOfficeTimeout = 120 * time.Second

// ConvertLegacyOffice shells out to `soffice --headless --convert-to
// <ext>` to turn legacy .doc/.ppt bytes into modern .docx/.pptx bytes, per
// spec §4.3 step 3 / §4.6.
func ConvertLegacyOffice(ctx context.Context, data []byte, sourceExt, targetExt string) ([]byte, error) {
	inFile, err := NewTempFile("", "kreuzberg-legacy-*"+sourceExt, data)
	if err != nil {
		return nil, err
	}
	defer inFile.Close()

	outDir, err := os.MkdirTemp("", "kreuzberg-libreoffice-out-*")
	if err != nil {
		return nil, kerrors.New(kerrors.Io, "libreoffice.convert", err)
	}
	defer os.RemoveAll(outDir)

	_, err = Run(ctx, LibreOfficeTimeout, "soffice",
		"--headless", "--convert-to", targetExt[1:], "--outdir", outDir, inFile.Path)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(inFile.Path)
	outPath := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))]+targetExt)
	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, kerrors.New(kerrors.Io, "libreoffice.convert", err)
	}
	return out, nil
}
