package manifest

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

func strPtr(s string) *string { return &s }

func sampleTxs() []core.SourceTransaction {
	return []core.SourceTransaction{
		{
			Index:      0,
			RawAmount:  "45.00",
			RawDate:    "2025-01-10",
			VendorName: strPtr("Acme Corp"),
			Purpose:    strPtr("Client lunch"),
			RefID:      strPtr("TXN12345678"),
			ImageURL:   strPtr("https://img.example.com/receipts/receipt_9a.png"),
		},
		{Index: 1, RawAmount: "7.00", RawDate: "2025-01-11"},
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteManifest(dir, sampleTxs())
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "https://img.example.com/receipts/receipt_9a.png") {
		t.Error("manifest missing the image URL")
	}
	if !strings.Contains(text, "Acme Corp | Client lunch") {
		t.Error("manifest missing the description")
	}
	if !strings.Contains(text, "0000_TXN12345_receipt_9a.png") {
		t.Error("manifest missing the suggested filename")
	}
	if strings.Count(text, "url:") != 1 {
		t.Errorf("manifest lists %d urls, want 1 (rows without a URL are skipped)",
			strings.Count(text, "url:"))
	}
}

func TestWriteLauncher(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteLauncher(dir, sampleTxs(), 2*time.Second)
	if err != nil {
		t.Fatalf("WriteLauncher() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat launcher: %v", err)
	}
	if info.Mode()&0100 == 0 {
		t.Error("launcher is not executable")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read launcher: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "https://img.example.com/receipts/receipt_9a.png") {
		t.Error("launcher missing the image URL")
	}
	if !strings.Contains(text, "sleep 2") && !strings.Contains(text, "timeout /t 2") {
		t.Error("launcher missing the pacing delay")
	}
}
