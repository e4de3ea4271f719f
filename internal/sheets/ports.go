// Package sheets defines the outbound port for publishing a finished
// invoice batch to a review surface the finance team can read.
package sheets

import (
	"context"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// InvoiceExporter receives the records of one completed run.
type InvoiceExporter interface {
	ExportBatch(ctx context.Context, runID string, records []core.InvoiceRecord) error
}
