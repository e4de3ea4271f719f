// Package pipeline orchestrates one batch run: load, filter, match, build,
// persist, plus the optional ledger, event and spreadsheet side effects.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/amex"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/amqp"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/config"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/images"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/invoice"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/manifest"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/pdf"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/sheets"
	"github.com/AptsNY/NEO1-MDS-Converter/internal/storage"
)

const OutputFileName = "invoice_batch.csv"

// EventPublisher announces completed batches. Nil disables publishing.
type EventPublisher interface {
	PublishBatchCompleted(ctx context.Context, msg *amqp.BatchCompletedMessage) error
}

type Pipeline struct {
	cfg      *config.Config
	ledger   *storage.Ledger
	events   EventPublisher
	exporter sheets.InvoiceExporter
	now      func() time.Time
}

// Option configures optional collaborators.
type Option func(*Pipeline)

func WithLedger(l *storage.Ledger) Option          { return func(p *Pipeline) { p.ledger = l } }
func WithEvents(e EventPublisher) Option           { return func(p *Pipeline) { p.events = e } }
func WithExporter(e sheets.InvoiceExporter) Option { return func(p *Pipeline) { p.exporter = e } }
func WithClock(now func() time.Time) Option        { return func(p *Pipeline) { p.now = now } }

func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes one run. Suggestions pairs an unmatched transaction's
// batch index with the leftover filename closest to its expected receipt
// name, for the operator to reconcile by hand.
type Result struct {
	RunID       string
	OutputPath  string
	Counts      storage.RunCounts
	Records     []core.InvoiceRecord
	Unmatched   []core.SourceTransaction
	Leftovers   []core.ImageCandidate
	Suggestions map[int]string
}

// VerifyReport is the outcome of a verification pass plus the assignments
// the ledger recorded for the run being verified.
type VerifyReport struct {
	images.VerifyResult
	RunID    string
	Recorded []storage.Match
}

// Process runs the first pass over an export: filter, build with fallback
// file specs only, write the batch, and generate the download side files.
// The operator then downloads receipts and runs Collect.
func (p *Pipeline) Process(ctx context.Context, inputPath string) (Result, error) {
	runID := uuid.NewString()
	txs, err := amex.LoadFile(inputPath)
	if err != nil {
		return Result{}, err
	}
	if len(txs) == 0 {
		return Result{}, core.ErrNoTransaction
	}

	filtered := invoice.FilterPositive(txs)
	records := invoice.BuildRecords(filtered.Kept, nil, p.buildOptions())

	outputPath := filepath.Join(p.cfg.OutputDir, OutputFileName)
	if err := invoice.WriteFile(outputPath, records); err != nil {
		return Result{}, err
	}

	// Manifest and launcher are independent of each other and of the batch.
	g := new(errgroup.Group)
	g.Go(func() error {
		_, err := manifest.WriteManifest(p.cfg.OutputDir, filtered.Kept)
		return err
	})
	var launcherPath string
	g.Go(func() error {
		var err error
		launcherPath, err = manifest.WriteLauncher(p.cfg.OutputDir, filtered.Kept, p.cfg.LauncherDelay)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if p.cfg.AutoLaunch {
		if err := manifest.Run(ctx, launcherPath, p.cfg.LauncherTimeout); err != nil {
			slog.Warn("Browser launcher failed", "error", err)
		}
	}

	res := Result{
		RunID:      runID,
		OutputPath: outputPath,
		Records:    records,
		Counts: storage.RunCounts{
			Loaded:  len(txs),
			Kept:    len(filtered.Kept),
			Removed: len(filtered.Removed),
		},
	}
	if err := p.recordRun(ctx, res, inputPath, false, nil, nil); err != nil {
		return res, err
	}
	p.notify(ctx, res, inputPath)
	return res, nil
}

// Collect runs after the manual download step: match fresh files from the
// holding area, convert them to PDF, rebuild the batch with real file specs,
// and notify downstream systems. The run to collect for comes from the
// ledger when one is recorded; inputPath overrides the recorded input file.
func (p *Pipeline) Collect(ctx context.Context, inputPath string) (Result, error) {
	runID, inputPath, resumed, err := p.resolveRun(ctx, inputPath)
	if err != nil {
		return Result{}, err
	}
	txs, err := amex.LoadFile(inputPath)
	if err != nil {
		return Result{}, err
	}
	if len(txs) == 0 {
		return Result{}, core.ErrNoTransaction
	}

	filtered := invoice.FilterPositive(txs)

	candidates, err := images.ListRecent(p.cfg.DownloadDir, p.cfg.RecencyWindow, p.now())
	if err != nil {
		return Result{}, err
	}
	match, err := images.Match(filtered.Kept, candidates, p.cfg.ImageDir)
	if err != nil {
		return Result{}, err
	}
	pdf.ConvertAll(match.Assignments)

	records := invoice.BuildRecords(filtered.Kept, match.Assignments, p.buildOptions())
	outputPath := filepath.Join(p.cfg.OutputDir, OutputFileName)
	if err := invoice.WriteFile(outputPath, records); err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:       runID,
		OutputPath:  outputPath,
		Records:     records,
		Unmatched:   match.Unmatched,
		Leftovers:   match.Leftovers,
		Suggestions: match.Suggestions,
		Counts: storage.RunCounts{
			Loaded:    len(txs),
			Kept:      len(filtered.Kept),
			Removed:   len(filtered.Removed),
			Matched:   len(match.Assignments),
			Unmatched: len(match.Unmatched),
		},
	}
	if err := p.recordRun(ctx, res, inputPath, resumed, filtered.Kept, match.Assignments); err != nil {
		return res, err
	}
	p.notify(ctx, res, inputPath)
	return res, nil
}

// Verify checks that every expected receipt file exists in the working image
// area, without scanning or matching anything. Like Collect, it targets the
// run the ledger recorded unless an input path is given explicitly.
func (p *Pipeline) Verify(ctx context.Context, inputPath string) (VerifyReport, error) {
	runID, inputPath, resumed, err := p.resolveRun(ctx, inputPath)
	if err != nil {
		return VerifyReport{}, err
	}
	txs, err := amex.LoadFile(inputPath)
	if err != nil {
		return VerifyReport{}, err
	}
	filtered := invoice.FilterPositive(txs)

	report := VerifyReport{
		VerifyResult: images.Verify(filtered.Kept, p.cfg.ImageDir),
		RunID:        runID,
	}
	if p.ledger != nil && resumed {
		report.Recorded, err = p.ledger.MatchesForRun(ctx, runID)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// resolveRun picks the run an invocation targets: the ledger's latest run
// when one exists, otherwise a fresh run over the given input. An explicit
// input path always wins over the recorded one.
func (p *Pipeline) resolveRun(ctx context.Context, inputPath string) (string, string, bool, error) {
	if p.ledger != nil {
		run, err := p.ledger.LatestRun(ctx)
		switch {
		case err == nil:
			if inputPath == "" {
				inputPath = run.InputPath
			}
			return run.ID, inputPath, true, nil
		case !errors.Is(err, storage.ErrNoRuns):
			return "", "", false, err
		}
	}
	if inputPath == "" {
		return "", "", false, errors.New("no input file given and no recorded run to resume")
	}
	return uuid.NewString(), inputPath, false, nil
}

func (p *Pipeline) buildOptions() invoice.BuildOptions {
	return invoice.BuildOptions{
		PayerCode:         p.cfg.PayerCode,
		VendorAccount:     p.cfg.VendorAccount,
		FallbackGLCode:    p.cfg.FallbackGLCode,
		DueDateOffsetDays: p.cfg.DueDateOffsetDays,
	}
}

func (p *Pipeline) recordRun(ctx context.Context, res Result, inputPath string, resumed bool, txs []core.SourceTransaction, assignments map[int]core.ImageRef) error {
	if p.ledger == nil {
		return nil
	}
	if !resumed {
		if err := p.ledger.CreateRun(ctx, res.RunID, inputPath); err != nil {
			return err
		}
	}
	if err := p.ledger.FinishRun(ctx, res.RunID, res.OutputPath, res.Counts); err != nil {
		return err
	}
	if resumed {
		if err := p.ledger.ClearMatches(ctx, res.RunID); err != nil {
			return err
		}
	}

	refByIndex := make(map[int]string, len(txs))
	for _, tx := range txs {
		if tx.RefID != nil {
			refByIndex[tx.Index] = *tx.RefID
		}
	}
	for idx, ref := range assignments {
		name := ref.PDFPath
		if name == "" {
			name = ref.LocalPath
		}
		m := storage.Match{
			RunID:    res.RunID,
			TxIndex:  idx,
			RefID:    refByIndex[idx],
			FileName: filepath.Base(name),
		}
		if err := p.ledger.RecordMatch(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// notify runs the optional side effects. They are best effort: the batch is
// already on disk, so a failure here is logged and never fails the run.
func (p *Pipeline) notify(ctx context.Context, res Result, inputPath string) {
	var total int64
	for _, rec := range res.Records {
		total += rec.InvoiceAmount.Cents
	}

	if p.events != nil {
		msg := amqp.NewBatchCompletedMessage(res.RunID, inputPath, res.OutputPath, len(res.Records), total)
		if err := p.events.PublishBatchCompleted(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Batch event publish failed", "run_id", res.RunID, "error", err)
		}
	}
	if p.exporter != nil {
		if err := p.exporter.ExportBatch(ctx, res.RunID, res.Records); err != nil {
			slog.WarnContext(ctx, "Batch export failed", "run_id", res.RunID, "error", err)
		}
	}
}
