package images

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

func strPtr(s string) *string { return &s }

func writeFileAt(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
	return path
}

func TestListRecent(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	writeFileAt(t, dir, "fresh.png", now.Add(-5*time.Minute))
	writeFileAt(t, dir, "older.jpg", now.Add(-10*time.Minute))
	writeFileAt(t, dir, "stale.png", now.Add(-2*time.Hour))
	writeFileAt(t, dir, "notes.txt", now.Add(-1*time.Minute))
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := ListRecent(dir, 30*time.Minute, now)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRecent() returned %d candidates, want 2", len(got))
	}
	if got[0].Name != "older.jpg" || got[1].Name != "fresh.png" {
		t.Errorf("candidates not oldest first: %q, %q", got[0].Name, got[1].Name)
	}
}

func TestListRecent_MissingDir(t *testing.T) {
	_, err := ListRecent(filepath.Join(t.TempDir(), "nope"), time.Minute, time.Now())
	if err == nil {
		t.Fatal("ListRecent() on missing dir should fail")
	}
}

func TestMatch(t *testing.T) {
	holding := t.TempDir()
	work := filepath.Join(t.TempDir(), "images")
	now := time.Now()

	writeFileAt(t, holding, "receipt_9a.png", now)
	writeFileAt(t, holding, "unrelated.pdf", now)

	txs := []core.SourceTransaction{
		{Index: 0, RefID: strPtr("TXN12345678"), ImageURL: strPtr("https://img.example.com/receipts/receipt_9a.png")},
		{Index: 1}, // no image URL, skipped
		{Index: 2, ImageURL: strPtr("https://img.example.com/receipts/missing.png")},
	}

	candidates, err := ListRecent(holding, 30*time.Minute, now)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Match(txs, candidates, work)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	ref, ok := res.Assignments[0]
	if !ok {
		t.Fatal("transaction 0 not matched")
	}
	want := filepath.Join(work, "0000_TXN12345_receipt_9a.png")
	if ref.LocalPath != want {
		t.Errorf("relocated path = %q, want %q", ref.LocalPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("relocated file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(holding, "receipt_9a.png")); !os.IsNotExist(err) {
		t.Error("matched candidate still present in holding area")
	}

	if len(res.Unmatched) != 1 || res.Unmatched[0].Index != 2 {
		t.Errorf("unmatched = %+v, want transaction 2 only", res.Unmatched)
	}
	if len(res.Leftovers) != 1 || res.Leftovers[0].Name != "unrelated.pdf" {
		t.Errorf("leftovers = %+v, want unrelated.pdf only", res.Leftovers)
	}
	if s := res.Suggestions[2]; s != "unrelated.pdf" {
		t.Errorf("suggestion for transaction 2 = %q", s)
	}
}

func TestMatch_FirstCandidateWinsAndLeavesTheRest(t *testing.T) {
	holding := t.TempDir()
	work := filepath.Join(t.TempDir(), "images")
	now := time.Now()

	// Both names contain "receipt_9a", so both satisfy the substring match;
	// only the first in pool order may be taken per transaction.
	writeFileAt(t, holding, "receipt_9a.png", now.Add(-2*time.Minute))
	writeFileAt(t, holding, "receipt_9a_copy.png", now.Add(-1*time.Minute))

	txs := []core.SourceTransaction{
		{Index: 0, ImageURL: strPtr("https://cdn.example.com/receipt_9a")},
		{Index: 1, ImageURL: strPtr("https://cdn.example.com/receipt_9a")},
	}

	candidates, err := ListRecent(holding, 30*time.Minute, now)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Match(txs, candidates, work)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	if len(res.Assignments) != 2 {
		t.Fatalf("matched %d transactions, want 2", len(res.Assignments))
	}
	first := filepath.Base(res.Assignments[0].LocalPath)
	second := filepath.Base(res.Assignments[1].LocalPath)
	if first == second {
		t.Errorf("both transactions resolved to %q", first)
	}
	if first != "0000_txn_0_receipt_9a" {
		t.Errorf("first assignment = %q, want the older candidate renamed", first)
	}
	if len(res.Leftovers) != 0 {
		t.Errorf("%d leftovers, want 0", len(res.Leftovers))
	}
}

func TestMatch_CaseInsensitive(t *testing.T) {
	holding := t.TempDir()
	work := filepath.Join(t.TempDir(), "images")
	now := time.Now()

	writeFileAt(t, holding, "RECEIPT_9A.PNG", now)

	txs := []core.SourceTransaction{
		{Index: 0, ImageURL: strPtr("https://cdn.example.com/receipt_9a.png")},
	}
	candidates, err := ListRecent(holding, 30*time.Minute, now)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Match(txs, candidates, work)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(res.Assignments) != 1 {
		t.Error("case-insensitive match failed")
	}
}

func TestVerify_Idempotent(t *testing.T) {
	work := t.TempDir()
	now := time.Now()

	writeFileAt(t, work, "0000_TXN12345_receipt_9a.png", now)

	txs := []core.SourceTransaction{
		{Index: 0, RefID: strPtr("TXN12345678"), ImageURL: strPtr("https://cdn.example.com/receipt_9a.png")},
		{Index: 1, ImageURL: strPtr("https://cdn.example.com/other.png")},
		{Index: 2}, // no image URL
	}

	first := Verify(txs, work)
	second := Verify(txs, work)

	if len(first.Found) != 1 || len(first.Missing) != 1 {
		t.Fatalf("found/missing = %d/%d, want 1/1", len(first.Found), len(first.Missing))
	}
	if len(first.Found) != len(second.Found) || len(first.Missing) != len(second.Missing) {
		t.Error("verification is not idempotent")
	}
	if first.Missing[0].Index != 1 {
		t.Errorf("missing transaction = %d, want 1", first.Missing[0].Index)
	}
}
