package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNoTransaction = errors.New("no transactions to process")
)

type (
	// SourceTransaction is one row of the card-provider export.
	// Optional columns load as nil pointers; empty cells count as missing.
	// Index is the row's position within the loaded batch and never changes,
	// even after filtering.
	SourceTransaction struct {
		Index      int
		Amount     *Money
		RawAmount  string // amount exactly as exported, used in derived keys
		RawDate    string // transaction date exactly as exported
		VendorName *string
		Purpose    *string
		GLCodeBA   *string
		GLCodeBB   *string
		GLCodeBC   *string
		RefID      *string
		ImageURL   *string
	}

	// InvoiceRecord is one row of the MDS upload file.
	InvoiceRecord struct {
		Sequence      int
		PayerCode     string
		VendorAccount string
		InvoiceAmount Money
		GLAmount1     Money
		HashInput     string
		InvoiceNumber string
		InvoiceDate   string // MM/DD/YY
		DueDate       string // MM/DD/YY
		Description   string
		GLAccountBA   string
		GLAccountBB   string
		GLAccountBC   string
		ImageFileSpec string // filename only, never empty
	}

	// ImageCandidate is a file sitting in the holding (download) area.
	ImageCandidate struct {
		Name    string
		Path    string
		ModTime time.Time
	}

	// ImageRef carries the resolved paths for a matched transaction.
	// LocalPath is set by the matcher, PDFPath by the conversion step.
	ImageRef struct {
		LocalPath string
		PDFPath   string
	}
)

// HasImageURL reports whether the row carries a non-empty image URL.
func (t SourceTransaction) HasImageURL() bool {
	return t.ImageURL != nil && *t.ImageURL != ""
}

// RefOrIndex returns the stable transaction identifier when present,
// otherwise the positional index as a string.
func (t SourceTransaction) RefOrIndex() string {
	if t.RefID != nil && *t.RefID != "" {
		return *t.RefID
	}
	return strconv.Itoa(t.Index)
}

// SyntheticID returns the ref id when present, otherwise "txn_{index}".
// Used to build image filenames for rows without a stable identifier.
func (t SourceTransaction) SyntheticID() string {
	if t.RefID != nil && *t.RefID != "" {
		return *t.RefID
	}
	return fmt.Sprintf("txn_%d", t.Index)
}

// Validate checks the invariants every built invoice record must hold.
func (r InvoiceRecord) Validate() error {
	if r.Sequence < 1 {
		return errors.New("sequence must be 1-based")
	}
	if r.InvoiceAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if r.InvoiceAmount != r.GLAmount1 {
		return errors.New("invoice amount and GL amount 1 must match")
	}
	if r.ImageFileSpec == "" {
		return errors.New("empty image file spec")
	}
	return nil
}
