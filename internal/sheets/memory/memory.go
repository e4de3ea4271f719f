// Package memory is an in-memory InvoiceExporter for tests and for runs
// where no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
	ports "github.com/AptsNY/NEO1-MDS-Converter/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	batches map[string][]core.InvoiceRecord
}

var _ ports.InvoiceExporter = (*Store)(nil)

func New() *Store {
	return &Store{batches: make(map[string][]core.InvoiceRecord)}
}

// ExportBatch stores a copy of the batch keyed by run ID. A re-export of the
// same run replaces the previous copy.
func (s *Store) ExportBatch(_ context.Context, runID string, records []core.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[runID] = append([]core.InvoiceRecord(nil), records...)
	return nil
}

// Batch returns the stored records for a run, or nil.
func (s *Store) Batch(runID string) []core.InvoiceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.InvoiceRecord(nil), s.batches[runID]...)
}
