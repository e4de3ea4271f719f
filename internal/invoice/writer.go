package invoice

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// Header is the MDS column set in upload order. The leading "Unnamed: 0"
// sequence column is what the downstream importer expects; do not rename it.
var Header = []string{
	"Unnamed: 0",
	"Company Code",
	"Vendor Account",
	"Invoice Amount",
	"GL Amount 1",
	"Invoice Number CRC32 Hash Input String",
	"Invoice Number",
	"Invoice Date MMDDYY",
	"Due Date MMDDYY",
	"Invoice Description",
	"GL Account BA",
	"GL Account BB",
	"GL Account BC",
	"Image File Spec",
}

// WriteFile serializes the batch to path. The whole file is staged next to
// the destination and renamed into place, so a failed write never leaves a
// torn output behind.
func WriteFile(path string, records []core.InvoiceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(row(rec)); err != nil {
			tmp.Close()
			return fmt.Errorf("write record %d: %w", rec.Sequence, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}

	slog.Info("Invoice batch written", "file", path, "records", len(records))
	return nil
}

func row(r core.InvoiceRecord) []string {
	return []string{
		strconv.Itoa(r.Sequence),
		r.PayerCode,
		r.VendorAccount,
		r.InvoiceAmount.String(),
		r.GLAmount1.String(),
		r.HashInput,
		r.InvoiceNumber,
		r.InvoiceDate,
		r.DueDate,
		r.Description,
		r.GLAccountBA,
		r.GLAccountBB,
		r.GLAccountBC,
		r.ImageFileSpec,
	}
}
