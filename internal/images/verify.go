package images

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/codec"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

// VerifyResult summarizes an existence check over the working image area.
type VerifyResult struct {
	Found   map[int]core.ImageRef
	Missing []core.SourceTransaction
}

// Verify checks, for every transaction expecting an image, that the
// deterministically expected filename exists in workDir. No scanning and no
// matching happens here; running it twice without filesystem changes yields
// identical results.
func Verify(txs []core.SourceTransaction, workDir string) VerifyResult {
	res := VerifyResult{Found: make(map[int]core.ImageRef)}
	for _, tx := range txs {
		if !tx.HasImageURL() {
			continue
		}
		path := filepath.Join(workDir, codec.ExpectedImageName(tx))
		if _, err := os.Stat(path); err == nil {
			res.Found[tx.Index] = core.ImageRef{LocalPath: path}
		} else {
			res.Missing = append(res.Missing, tx)
		}
	}
	slog.Info("Verified working image area",
		"dir", workDir,
		"found", len(res.Found),
		"missing", len(res.Missing))
	return res
}
