// Package invoice turns filtered source transactions into MDS invoice
// records and serializes them.
package invoice

import (
	"log/slog"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// FilterResult reports what the positive-amount filter kept and removed.
// The removed slice exists for operator visibility only; nothing branches
// on it.
type FilterResult struct {
	Kept    []core.SourceTransaction
	Removed []core.SourceTransaction
}

// FilterPositive keeps rows whose amount is present and strictly positive,
// preserving input order. Credits and amount-less rows are removed.
func FilterPositive(txs []core.SourceTransaction) FilterResult {
	res := FilterResult{
		Kept:    make([]core.SourceTransaction, 0, len(txs)),
		Removed: make([]core.SourceTransaction, 0),
	}
	for _, tx := range txs {
		if tx.Amount != nil && tx.Amount.Positive() {
			res.Kept = append(res.Kept, tx)
		} else {
			res.Removed = append(res.Removed, tx)
		}
	}
	slog.Info("Filtered transactions",
		"original", len(txs),
		"kept", len(res.Kept),
		"removed", len(res.Removed))
	return res
}
