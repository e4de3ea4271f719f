// Package amex loads NEO1/Amex CSV exports into source transactions.
package amex

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// Column headers as they appear in the NEO1 export.
const (
	ColAmount   = "Billing Total Gross Amount"
	ColDate     = "Transaction Date"
	ColVendor   = "Vendor Name"
	ColPurpose  = "Description 1 (what the user types - typically purpose of expense)"
	ColGLBA     = "Field 1 value code"
	ColGLBB     = "Field 2 value code"
	ColGLBC     = "Field 3 value code"
	ColRefID    = "Transaction Ref. ID"
	ColImageURL = "Image URL"
)

var requiredColumns = []string{
	ColAmount, ColDate, ColVendor, ColPurpose, ColGLBA, ColGLBB, ColGLBC,
}

// LoadError is the fatal failure mode of the loader: the file cannot be read
// or the export is missing required columns.
type LoadError struct {
	Path    string
	Missing []string
	Err     error
}

func (e *LoadError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("load %s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadFile reads the export at path and returns one SourceTransaction per
// data row, in file order. Missing required columns abort the load; bad
// amount cells degrade to a nil amount so the positive filter drops them.
func LoadFile(path string) ([]core.SourceTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	txs, err := Load(f)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	slog.Info("Loaded transactions", "file", path, "count", len(txs))
	return txs, nil
}

// Load parses an export from r. Exposed separately so tests and callers with
// non-file sources can reuse the column handling.
func Load(r io.Reader) ([]core.SourceTransaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadError{Missing: missing}
	}

	var txs []core.SourceTransaction
	index := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Err: fmt.Errorf("read row %d: %w", index, err)}
		}

		tx := core.SourceTransaction{
			Index:      index,
			RawAmount:  cell(rec, cols, ColAmount),
			RawDate:    cell(rec, cols, ColDate),
			VendorName: optional(rec, cols, ColVendor),
			Purpose:    optional(rec, cols, ColPurpose),
			GLCodeBA:   optional(rec, cols, ColGLBA),
			GLCodeBB:   optional(rec, cols, ColGLBB),
			GLCodeBC:   optional(rec, cols, ColGLBC),
			RefID:      optional(rec, cols, ColRefID),
			ImageURL:   optional(rec, cols, ColImageURL),
		}
		if tx.RawAmount != "" {
			if m, err := core.ParseMoney(tx.RawAmount); err == nil {
				tx.Amount = &m
			} else {
				slog.Warn("Unparseable amount, row will be filtered out",
					"row", index, "amount", tx.RawAmount)
			}
		}

		txs = append(txs, tx)
		index++
	}
	return txs, nil
}

// cell returns the trimmed raw value of a column, or "" when the row is
// short or the column is absent.
func cell(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// optional maps empty cells to nil, giving every call site the same
// missing-field policy.
func optional(rec []string, cols map[string]int, name string) *string {
	v := cell(rec, cols, name)
	if v == "" {
		return nil
	}
	return &v
}
