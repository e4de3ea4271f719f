package invoice

import (
	"path/filepath"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/codec"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// BuildOptions carries the business constants applied to every record.
// They come from configuration, not literals; see config.Load.
type BuildOptions struct {
	PayerCode         string
	VendorAccount     string
	FallbackGLCode    string
	DueDateOffsetDays int
}

// BuildRecords maps the filtered transactions to invoice records, in order,
// with dense 1-based sequence numbers. images is keyed by the transaction's
// original batch index and may be nil when no image pass has run yet; every
// record still gets a non-empty file spec via the deterministic fallback.
func BuildRecords(filtered []core.SourceTransaction, images map[int]core.ImageRef, opts BuildOptions) []core.InvoiceRecord {
	records := make([]core.InvoiceRecord, 0, len(filtered))
	for i, tx := range filtered {
		seq := i + 1
		rec := core.InvoiceRecord{
			Sequence:      seq,
			PayerCode:     opts.PayerCode,
			VendorAccount: opts.VendorAccount,
			InvoiceAmount: *tx.Amount,
			GLAmount1:     *tx.Amount,
			HashInput:     codec.HashInput(tx),
			InvoiceNumber: codec.InvoiceNumber(codec.CompositeKey(tx)),
			InvoiceDate:   codec.FormatDateMMDDYY(tx.RawDate),
			DueDate:       codec.DueDateMMDDYY(tx.RawDate, opts.DueDateOffsetDays),
			Description:   codec.Description(tx.VendorName, tx.Purpose),
			GLAccountBA:   glOrDefault(tx.GLCodeBA, opts.FallbackGLCode),
			GLAccountBB:   glOrDefault(tx.GLCodeBB, ""),
			GLAccountBC:   glOrDefault(tx.GLCodeBC, ""),
			ImageFileSpec: fileSpec(tx, seq, images),
		}
		records = append(records, rec)
	}
	return records
}

// fileSpec resolves the image file spec: converted PDF first, then the
// matched local file, then the generated fallback name.
func fileSpec(tx core.SourceTransaction, seq int, images map[int]core.ImageRef) string {
	if ref, ok := images[tx.Index]; ok {
		if ref.PDFPath != "" {
			return filepath.Base(ref.PDFPath)
		}
		if ref.LocalPath != "" {
			return filepath.Base(ref.LocalPath)
		}
	}
	return codec.FallbackPDFName(seq, tx.RawDate, tx.VendorName)
}

func glOrDefault(code *string, fallback string) string {
	if code != nil && *code != "" {
		return *code
	}
	return fallback
}
