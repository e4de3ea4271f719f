// Package codec derives the invoice identifiers, dates and filenames the MDS
// upload format requires from a single source transaction. All functions are
// pure; date parse failures degrade to empty or default values instead of
// propagating, so a bad cell never aborts a batch.
package codec

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// Date layouts seen in NEO1 exports, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
}

var (
	filenameStrip   = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	defaultFilename = "receipt.png"
)

// InvoiceNumber hashes the composite key and returns the first 8 hex digits,
// uppercased. Deterministic; uniqueness is probabilistic and accepted as such
// by the downstream system.
func InvoiceNumber(compositeKey string) string {
	sum := md5.Sum([]byte(compositeKey))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}

// CompositeKey builds the hashing input for InvoiceNumber from the raw
// exported values, so re-running the batch over the same file always yields
// the same invoice numbers.
func CompositeKey(t core.SourceTransaction) string {
	return fmt.Sprintf("%s_%s_%s", t.RefOrIndex(), t.RawDate, t.RawAmount)
}

// HashInput returns the CRC32 hash-input string the MDS upload verifies:
// "{ref id truncated to 10 chars | row index},{ISO date}". When the date
// cannot be parsed the raw value is carried through unchanged.
func HashInput(t core.SourceTransaction) string {
	base := strconv.Itoa(t.Index)
	if t.RefID != nil && *t.RefID != "" {
		base = truncateRunes(*t.RefID, 10)
	}
	iso := t.RawDate
	if d, err := parseDate(t.RawDate); err == nil {
		iso = d.Format("2006-01-02")
	}
	return base + "," + iso
}

// FormatDateMMDDYY renders a raw date as MM/DD/YY. Unparseable input yields
// an empty string; downstream sees a blank field.
func FormatDateMMDDYY(raw string) string {
	d, err := parseDate(raw)
	if err != nil {
		return ""
	}
	return d.Format("01/02/06")
}

// DueDateMMDDYY renders the transaction date plus offsetDays as MM/DD/YY,
// with the same empty-string-on-failure policy as FormatDateMMDDYY.
func DueDateMMDDYY(raw string, offsetDays int) string {
	d, err := parseDate(raw)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, offsetDays).Format("01/02/06")
}

// CleanForFilename strips everything except word characters, spaces and
// hyphens, collapses whitespace runs to single underscores and truncates to
// 50 characters. Missing input yields "unknown".
func CleanForFilename(text *string) string {
	if text == nil || *text == "" {
		return "unknown"
	}
	cleaned := filenameStrip.ReplaceAllString(*text, "")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, "_")
	return truncateRunes(cleaned, 50)
}

// Description builds the "{vendor} | {purpose}" invoice description with
// defaults for missing fields.
func Description(vendor, purpose *string) string {
	v := "Unknown Vendor"
	if vendor != nil && *vendor != "" {
		v = *vendor
	}
	p := "Expense"
	if purpose != nil && *purpose != "" {
		p = *purpose
	}
	return v + " | " + p
}

// FallbackPDFName generates the deterministic file spec used when no receipt
// was matched, so every record always names some document. An unparseable
// date degrades to year 2025, month 01.
func FallbackPDFName(seq int, rawDate string, vendor *string) string {
	year, month := "2025", "01"
	if d, err := parseDate(rawDate); err == nil {
		year = d.Format("2006")
		month = d.Format("01")
	}
	return fmt.Sprintf("%04d-%s-%s_amex_expense_-_%s.pdf", seq, year, month, CleanForFilename(vendor))
}

// ExpectedImageName is the filename a downloaded receipt is renamed to once
// matched: "{index:04d}_{first 8 of id}_{original filename}".
func ExpectedImageName(t core.SourceTransaction) string {
	id := truncateRunes(t.SyntheticID(), 8)
	original := defaultFilename
	if t.ImageURL != nil {
		original = OriginalFilenameFromURL(*t.ImageURL)
	}
	return fmt.Sprintf("%04d_%s_%s", t.Index, id, original)
}

// OriginalFilenameFromURL extracts the last path segment of a receipt URL.
// Pathless URLs default to "receipt.png".
func OriginalFilenameFromURL(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if last == "" {
		return defaultFilename
	}
	return last
}

// truncateRunes shortens s to at most n runes, never splitting a multibyte
// character.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
