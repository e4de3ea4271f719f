package codec

import (
	"strings"
	"testing"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

func strPtr(s string) *string { return &s }

func TestInvoiceNumber_Deterministic(t *testing.T) {
	key := "TXN12345678_2025-01-10_45.00"
	first := InvoiceNumber(key)
	second := InvoiceNumber(key)

	if first != second {
		t.Errorf("InvoiceNumber not deterministic: %q vs %q", first, second)
	}
	if len(first) != 8 {
		t.Errorf("InvoiceNumber length = %d, want 8", len(first))
	}
	if first != strings.ToUpper(first) {
		t.Errorf("InvoiceNumber %q is not uppercase", first)
	}
	for _, r := range first {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			t.Errorf("InvoiceNumber %q contains non-hex rune %q", first, r)
		}
	}

	if other := InvoiceNumber("TXN12345678_2025-01-10_45.01"); other == first {
		t.Errorf("different keys produced identical invoice numbers %q", first)
	}
}

func TestHashInput(t *testing.T) {
	tests := []struct {
		name string
		tx   core.SourceTransaction
		want string
	}{
		{
			name: "ref id truncated to 10",
			tx:   core.SourceTransaction{Index: 0, RefID: strPtr("TXN12345678"), RawDate: "2025-01-10"},
			want: "TXN1234567,2025-01-10",
		},
		{
			name: "short ref id kept whole",
			tx:   core.SourceTransaction{Index: 4, RefID: strPtr("AB12"), RawDate: "2025-01-10"},
			want: "AB12,2025-01-10",
		},
		{
			name: "index fallback",
			tx:   core.SourceTransaction{Index: 7, RawDate: "2025-03-02"},
			want: "7,2025-03-02",
		},
		{
			name: "multibyte ref id truncated on rune boundary",
			tx:   core.SourceTransaction{Index: 0, RefID: strPtr("RÉFÉRENCE-2025"), RawDate: "2025-01-10"},
			want: "RÉFÉRENCE-,2025-01-10",
		},
		{
			name: "us date normalized to iso",
			tx:   core.SourceTransaction{Index: 2, RawDate: "01/10/2025"},
			want: "2,2025-01-10",
		},
		{
			name: "unparseable date carried through",
			tx:   core.SourceTransaction{Index: 1, RawDate: "not-a-date"},
			want: "1,not-a-date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HashInput(tt.tx); got != tt.want {
				t.Errorf("HashInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDateMMDDYY(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025-01-10", "01/10/25"},
		{"01/10/2025", "01/10/25"},
		{"2025-12-31 00:00:00", "12/31/25"},
		{"garbage", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatDateMMDDYY(tt.input); got != tt.want {
			t.Errorf("FormatDateMMDDYY(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDueDateMMDDYY(t *testing.T) {
	if got := DueDateMMDDYY("2025-01-10", 8); got != "01/18/25" {
		t.Errorf("DueDateMMDDYY() = %q, want 01/18/25", got)
	}
	// Offset crossing a month boundary.
	if got := DueDateMMDDYY("2025-01-28", 8); got != "02/05/25" {
		t.Errorf("DueDateMMDDYY() = %q, want 02/05/25", got)
	}
	if got := DueDateMMDDYY("garbage", 8); got != "" {
		t.Errorf("DueDateMMDDYY() on bad date = %q, want empty", got)
	}
}

func TestCleanForFilename(t *testing.T) {
	long := strings.Repeat("a", 60)
	tests := []struct {
		name  string
		input *string
		want  string
	}{
		{name: "spaces become underscores", input: strPtr("Acme Corp"), want: "Acme_Corp"},
		{name: "specials stripped", input: strPtr("Joe's Diner & Grill!"), want: "Joes_Diner_Grill"},
		{name: "hyphens kept", input: strPtr("7-Eleven"), want: "7-Eleven"},
		{name: "runs collapse", input: strPtr("a   b\tc"), want: "a_b_c"},
		{name: "truncated to 50", input: &long, want: strings.Repeat("a", 50)},
		{name: "nil is unknown", input: nil, want: "unknown"},
		{name: "empty is unknown", input: strPtr(""), want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanForFilename(tt.input); got != tt.want {
				t.Errorf("CleanForFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		vendor, purpose *string
		want            string
	}{
		{strPtr("Acme Corp"), strPtr("Client lunch"), "Acme Corp | Client lunch"},
		{nil, strPtr("Client lunch"), "Unknown Vendor | Client lunch"},
		{strPtr("Acme Corp"), nil, "Acme Corp | Expense"},
		{nil, nil, "Unknown Vendor | Expense"},
	}
	for _, tt := range tests {
		if got := Description(tt.vendor, tt.purpose); got != tt.want {
			t.Errorf("Description() = %q, want %q", got, tt.want)
		}
	}
}

func TestFallbackPDFName(t *testing.T) {
	got := FallbackPDFName(1, "2025-01-10", strPtr("Acme Corp"))
	want := "0001-2025-01_amex_expense_-_Acme_Corp.pdf"
	if got != want {
		t.Errorf("FallbackPDFName() = %q, want %q", got, want)
	}

	// Bad dates degrade to the fixed default period.
	got = FallbackPDFName(12, "garbage", nil)
	want = "0012-2025-01_amex_expense_-_unknown.pdf"
	if got != want {
		t.Errorf("FallbackPDFName() = %q, want %q", got, want)
	}
}

func TestExpectedImageName(t *testing.T) {
	tests := []struct {
		name string
		tx   core.SourceTransaction
		want string
	}{
		{
			name: "ref id trimmed to 8",
			tx: core.SourceTransaction{
				Index:    0,
				RefID:    strPtr("TXN12345678"),
				ImageURL: strPtr("https://neo1.com/receipts/abc/receipt_9a.png"),
			},
			want: "0000_TXN12345_receipt_9a.png",
		},
		{
			name: "synthesized id without ref",
			tx: core.SourceTransaction{
				Index:    7,
				ImageURL: strPtr("https://neo1.com/r/inv.pdf"),
			},
			want: "0007_txn_7_inv.pdf",
		},
		{
			name: "pathless url falls back",
			tx: core.SourceTransaction{
				Index:    2,
				RefID:    strPtr("AB"),
				ImageURL: strPtr("https://neo1.com/"),
			},
			want: "0002_AB_receipt.png",
		},
		{
			name: "multibyte ref id trimmed on rune boundary",
			tx: core.SourceTransaction{
				Index:    3,
				RefID:    strPtr("ÀÉÎÕÜÇÑØ-extra"),
				ImageURL: strPtr("https://neo1.com/r/inv.pdf"),
			},
			want: "0003_ÀÉÎÕÜÇÑØ_inv.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpectedImageName(tt.tx); got != tt.want {
				t.Errorf("ExpectedImageName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOriginalFilenameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://neo1.com/receipts/abc/receipt_9a.png", "receipt_9a.png"},
		{"https://neo1.com/receipts/scan.pdf?sig=xyz", "scan.pdf"},
		{"https://neo1.com/", "receipt.png"},
	}
	for _, tt := range tests {
		if got := OriginalFilenameFromURL(tt.url); got != tt.want {
			t.Errorf("OriginalFilenameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
