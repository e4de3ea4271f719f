package memory

import (
	"context"
	"testing"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

func TestStore_ExportBatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	records := []core.InvoiceRecord{
		{Sequence: 1, InvoiceNumber: "9A8B7C6D", InvoiceAmount: core.Money{Cents: 4500}},
		{Sequence: 2, InvoiceNumber: "11223344", InvoiceAmount: core.Money{Cents: 700}},
	}
	if err := s.ExportBatch(ctx, "run-1", records); err != nil {
		t.Fatalf("ExportBatch() error = %v", err)
	}

	got := s.Batch("run-1")
	if len(got) != 2 {
		t.Fatalf("Batch() returned %d records, want 2", len(got))
	}
	if got[0].InvoiceNumber != "9A8B7C6D" {
		t.Errorf("record 1 = %+v", got[0])
	}

	// Mutating the caller's slice must not touch the stored copy.
	records[0].InvoiceNumber = "FFFFFFFF"
	if s.Batch("run-1")[0].InvoiceNumber != "9A8B7C6D" {
		t.Error("stored batch shares memory with the caller's slice")
	}

	if got := s.Batch("missing"); len(got) != 0 {
		t.Errorf("Batch() for unknown run returned %d records", len(got))
	}
}

func TestStore_ReExportReplaces(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.ExportBatch(ctx, "run-1", []core.InvoiceRecord{{Sequence: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := s.ExportBatch(ctx, "run-1", []core.InvoiceRecord{{Sequence: 1}, {Sequence: 2}}); err != nil {
		t.Fatal(err)
	}
	if got := s.Batch("run-1"); len(got) != 2 {
		t.Errorf("re-export kept %d records, want 2", len(got))
	}
}
