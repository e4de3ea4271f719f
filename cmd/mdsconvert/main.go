package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/amqp"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/cli"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/pipeline"
	gsheet "github.com/AptsNY/NEO1-MDS-Converter/internal/sheets/google"
)

func main() {
	mode := flag.String("mode", "", "run mode: process, collect, verify (default: interactive menu)")
	input := flag.String("input", "", "path to the card export CSV (default: first CSV in the input directory)")
	flag.Parse()

	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	ledger := cli.InitLedger(logger, cfg.LedgerDBPath)
	defer ledger.Close()

	opts := []pipeline.Option{pipeline.WithLedger(ledger)}

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		opts = append(opts, pipeline.WithEvents(client))
	}

	if cfg.SheetsEnabled() {
		exporter, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize spreadsheet export", "error", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithExporter(exporter))
	}

	p := pipeline.New(cfg, opts...)
	ctx := context.Background()

	// Collect and verify resume the last recorded run when no -input is
	// given; only a fresh process pass needs a CSV found on disk.
	inputPath := *input
	if inputPath == "" && (*mode == "" || *mode == "process") {
		var err error
		inputPath, err = findInput(cfg.InputDir)
		if err != nil {
			logger.Error("No input file found", "dir", cfg.InputDir, "error", err)
			os.Exit(1)
		}
	}

	if *mode != "" {
		if err := runMode(ctx, p, *mode, inputPath); err != nil {
			logger.Error("Run failed", "mode", *mode, "error", err)
			os.Exit(1)
		}
		return
	}

	menu(ctx, p, inputPath)
}

// findInput picks the first CSV in dir, alphabetically, so a fresh export
// dropped into the input directory is picked up without flags.
func findInput(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var csvs []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			csvs = append(csvs, e.Name())
		}
	}
	if len(csvs) == 0 {
		return "", fmt.Errorf("no CSV files in %s", dir)
	}
	sort.Strings(csvs)
	return filepath.Join(dir, csvs[0]), nil
}

func runMode(ctx context.Context, p *pipeline.Pipeline, mode, inputPath string) error {
	switch mode {
	case "process":
		res, err := p.Process(ctx, inputPath)
		if err != nil {
			return err
		}
		printResult(res)
		fmt.Println("Download the receipts from the manifest, then run with -mode collect.")
		return nil
	case "collect":
		res, err := p.Collect(ctx, inputPath)
		if err != nil {
			return err
		}
		printResult(res)
		printLeftovers(res)
		return nil
	case "verify":
		vr, err := p.Verify(ctx, inputPath)
		if err != nil {
			return err
		}
		fmt.Printf("Verified run %s: %d found, %d missing\n", vr.RunID, len(vr.Found), len(vr.Missing))
		for _, tx := range vr.Missing {
			fmt.Printf("  missing receipt for %s\n", tx.SyntheticID())
		}
		for _, m := range vr.Recorded {
			fmt.Printf("  recorded: tx %d (%s) -> %s\n", m.TxIndex, m.RefID, m.FileName)
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func menu(ctx context.Context, p *pipeline.Pipeline, inputPath string) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println()
		fmt.Println("NEO1 to MDS converter")
		fmt.Printf("input: %s\n", inputPath)
		fmt.Println("  1) Process export and generate download manifest")
		fmt.Println("  2) Collect downloaded receipts and rebuild batch")
		fmt.Println("  3) Verify receipt files")
		fmt.Println("  4) Quit")
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		var mode string
		switch strings.TrimSpace(line) {
		case "1":
			mode = "process"
		case "2":
			mode = "collect"
		case "3":
			mode = "verify"
		case "4", "q", "quit":
			return
		default:
			fmt.Println("Choose 1-4.")
			continue
		}
		if err := runMode(ctx, p, mode, inputPath); err != nil {
			slog.Error("Run failed", "mode", mode, "error", err)
		}
	}
}

func printResult(res pipeline.Result) {
	fmt.Printf("Run %s: wrote %s\n", res.RunID, res.OutputPath)
	fmt.Printf("  loaded %d, kept %d, removed %d, matched %d, unmatched %d\n",
		res.Counts.Loaded, res.Counts.Kept, res.Counts.Removed,
		res.Counts.Matched, res.Counts.Unmatched)
}

func printLeftovers(res pipeline.Result) {
	for _, tx := range res.Unmatched {
		if s, ok := res.Suggestions[tx.Index]; ok {
			fmt.Printf("  unmatched: %s (closest leftover: %s)\n", tx.SyntheticID(), s)
			continue
		}
		fmt.Printf("  unmatched: %s\n", tx.SyntheticID())
	}
	for _, c := range res.Leftovers {
		fmt.Printf("  leftover file: %s\n", c.Name)
	}
}
