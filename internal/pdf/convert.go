// Package pdf converts matched raster receipts into single-page PDF
// documents so every invoice file spec names a document-format file.
package pdf

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// ConvertResult counts per-file outcomes of one conversion pass.
type ConvertResult struct {
	Converted     int
	PassedThrough int
	Failed        int
}

// ConvertAll converts every assigned receipt in place, updating the map
// entries with the resulting PDF path. A file that is already a PDF passes
// through untouched. A file that cannot be converted is counted and skipped;
// its record falls back to the generated file spec downstream.
func ConvertAll(assignments map[int]core.ImageRef) ConvertResult {
	var res ConvertResult
	for idx, ref := range assignments {
		if strings.EqualFold(filepath.Ext(ref.LocalPath), ".pdf") {
			ref.PDFPath = ref.LocalPath
			assignments[idx] = ref
			res.PassedThrough++
			continue
		}
		out, err := Convert(ref.LocalPath)
		if err != nil {
			slog.Warn("Receipt conversion failed", "file", ref.LocalPath, "error", err)
			res.Failed++
			continue
		}
		ref.PDFPath = out
		assignments[idx] = ref
		res.Converted++
	}
	slog.Info("Conversion pass complete",
		"converted", res.Converted,
		"passed_through", res.PassedThrough,
		"failed", res.Failed)
	return res
}

// Convert imports a single raster image into a one-page PDF next to the
// source file, returning the PDF path.
func Convert(imagePath string) (string, error) {
	out := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".pdf"
	if err := api.ImportImagesFile([]string{imagePath}, out, nil, nil); err != nil {
		return "", fmt.Errorf("import %s: %w", imagePath, err)
	}
	return out, nil
}
