// Package images finds freshly downloaded receipt files, pairs them with the
// transactions expecting them and moves them into the working image area.
package images

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

var candidateExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".pdf":  {},
}

// ListRecent returns the receipt-shaped files in dir modified within window
// before now, oldest first. Subdirectories are not descended into; a missing
// dir is an error because it means the holding area was never set up.
func ListRecent(dir string, window time.Duration, now time.Time) ([]core.ImageCandidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan holding area %s: %w", dir, err)
	}

	cutoff := now.Add(-window)
	candidates := make([]core.ImageCandidate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := candidateExtensions[ext]; !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("Skipping unreadable candidate", "file", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().Before(cutoff) {
			continue
		}
		candidates = append(candidates, core.ImageCandidate{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ModTime.Before(candidates[j].ModTime)
	})

	slog.Info("Scanned holding area", "dir", dir, "candidates", len(candidates), "window", window)
	return candidates, nil
}

// moveFile renames src to dst, falling back to copy and delete when the two
// live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	in.Close()
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}
