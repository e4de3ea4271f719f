package images

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/codec"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// MatchResult is the outcome of one matching pass. Assignments is keyed by
// the transaction's original batch index. Suggestions pairs an unmatched
// transaction index with the closest leftover filename; it is a hint for the
// operator and never turns into an assignment.
type MatchResult struct {
	Assignments map[int]core.ImageRef
	Unmatched   []core.SourceTransaction
	Leftovers   []core.ImageCandidate
	Suggestions map[int]string
}

// Match pairs candidate files with the transactions expecting images, in
// transaction order, first hit wins. A matched candidate is moved into
// workDir under its expected name and leaves the pool immediately, so it can
// never be assigned twice. Transactions without an image URL are skipped
// entirely.
func Match(txs []core.SourceTransaction, candidates []core.ImageCandidate, workDir string) (MatchResult, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return MatchResult{}, fmt.Errorf("create working image area: %w", err)
	}

	res := MatchResult{
		Assignments: make(map[int]core.ImageRef),
		Suggestions: make(map[int]string),
	}
	pool := append([]core.ImageCandidate(nil), candidates...)

	for _, tx := range txs {
		if !tx.HasImageURL() {
			continue
		}
		original := codec.OriginalFilenameFromURL(*tx.ImageURL)
		hit := findCandidate(pool, original)
		if hit < 0 {
			res.Unmatched = append(res.Unmatched, tx)
			continue
		}

		candidate := pool[hit]
		dst := filepath.Join(workDir, codec.ExpectedImageName(tx))
		if err := moveFile(candidate.Path, dst); err != nil {
			return res, fmt.Errorf("relocate %s: %w", candidate.Name, err)
		}
		res.Assignments[tx.Index] = core.ImageRef{LocalPath: dst}
		pool = append(pool[:hit], pool[hit+1:]...)

		slog.Info("Matched receipt",
			"transaction", tx.SyntheticID(),
			"candidate", candidate.Name,
			"renamed", dst)
	}

	res.Leftovers = pool
	suggestLeftovers(&res)

	slog.Info("Matching pass complete",
		"matched", len(res.Assignments),
		"unmatched", len(res.Unmatched),
		"leftovers", len(res.Leftovers))
	return res, nil
}

// findCandidate returns the index of the first pool entry whose name
// contains original, case-insensitively, or -1. Containment covers the
// exact-suffix case (a browser download keeping the URL's filename).
func findCandidate(pool []core.ImageCandidate, original string) int {
	needle := strings.ToLower(original)
	for i, c := range pool {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return i
		}
	}
	return -1
}

// suggestLeftovers records the leftover filename closest to each unmatched
// transaction's expected original name, for manual reconciliation.
func suggestLeftovers(res *MatchResult) {
	for _, tx := range res.Unmatched {
		original := codec.OriginalFilenameFromURL(*tx.ImageURL)
		best, bestDist := "", -1
		for _, c := range res.Leftovers {
			d := levenshtein.ComputeDistance(strings.ToLower(original), strings.ToLower(c.Name))
			if bestDist < 0 || d < bestDist {
				best, bestDist = c.Name, d
			}
		}
		if best != "" {
			res.Suggestions[tx.Index] = best
		}
	}
}
