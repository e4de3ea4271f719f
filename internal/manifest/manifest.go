// Package manifest generates the side files for the manual receipt download
// step: a human-readable URL list and a launcher script that opens every
// receipt URL in the default browser with a short pacing delay.
package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/codec"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

const (
	ManifestName = "receipt_image_urls.txt"
	launcherUnix = "open_receipt_urls.sh"
	launcherWin  = "open_receipt_urls.bat"
)

// LauncherName returns the platform-appropriate launcher filename.
func LauncherName() string {
	if runtime.GOOS == "windows" {
		return launcherWin
	}
	return launcherUnix
}

// WriteManifest writes the URL list for the operator: one block per
// transaction carrying an image URL, with the suggested filename the matcher
// will look for after download.
func WriteManifest(dir string, txs []core.SourceTransaction) (string, error) {
	var b strings.Builder
	b.WriteString("Receipt image URLs\n")
	b.WriteString("Download each receipt, then rerun the collect step.\n\n")

	count := 0
	for _, tx := range txs {
		if !tx.HasImageURL() {
			continue
		}
		count++
		fmt.Fprintf(&b, "[%d] %s\n", count, codec.Description(tx.VendorName, tx.Purpose))
		fmt.Fprintf(&b, "    amount: %s  date: %s\n", tx.RawAmount, tx.RawDate)
		fmt.Fprintf(&b, "    url: %s\n", *tx.ImageURL)
		fmt.Fprintf(&b, "    save as: %s\n\n", codec.ExpectedImageName(tx))
	}

	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	slog.Info("Wrote receipt manifest", "file", path, "urls", count)
	return path, nil
}

// WriteLauncher writes a script that opens each URL in sequence, pausing
// between opens so the browser does not drop tabs.
func WriteLauncher(dir string, txs []core.SourceTransaction, delay time.Duration) (string, error) {
	urls := make([]string, 0, len(txs))
	for _, tx := range txs {
		if tx.HasImageURL() {
			urls = append(urls, *tx.ImageURL)
		}
	}

	var b strings.Builder
	if runtime.GOOS == "windows" {
		b.WriteString("@echo off\r\n")
		for _, u := range urls {
			fmt.Fprintf(&b, "start \"\" \"%s\"\r\n", u)
			fmt.Fprintf(&b, "timeout /t %d /nobreak >nul\r\n", int(delay.Seconds()))
		}
	} else {
		b.WriteString("#!/bin/sh\n")
		for _, u := range urls {
			fmt.Fprintf(&b, "%s %q\n", opener(), u)
			fmt.Fprintf(&b, "sleep %d\n", int(delay.Seconds()))
		}
	}

	path := filepath.Join(dir, LauncherName())
	if err := os.WriteFile(path, []byte(b.String()), 0755); err != nil {
		return "", fmt.Errorf("write launcher: %w", err)
	}
	slog.Info("Wrote browser launcher", "file", path, "urls", len(urls), "delay", delay)
	return path, nil
}

// Run executes the launcher script, bounded by timeout. The launcher is a
// convenience only; a timeout or failure never affects the batch itself.
func Run(ctx context.Context, path string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/c", path)
	} else {
		cmd = exec.CommandContext(ctx, "sh", path)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run launcher %s: %w", path, err)
	}
	return nil
}

func opener() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}
