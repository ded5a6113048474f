package processor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
	"github.com/joseph-ayodele/receipts-collator/internal/export"
	"github.com/joseph-ayodele/receipts-collator/internal/extract"
	"github.com/joseph-ayodele/receipts-collator/internal/ingest"
	"github.com/joseph-ayodele/receipts-collator/internal/metrics"
	"github.com/joseph-ayodele/receipts-collator/internal/receipt"
)

// ParseConfig holds concurrency and output settings for the parse stage.
type ParseConfig struct {
	Workers         int           // default 4
	DocumentTimeout time.Duration // 0 = no per-document limit
	OutputDir       string
}

type ParseStage struct {
	Logger  *slog.Logger
	Cfg     ParseConfig
	Text    extract.TextExtractor
	Records extract.RecordExtractor
	Metrics *metrics.Recorder
}

func NewParseStage(logger *slog.Logger, cfg ParseConfig, text extract.TextExtractor, records extract.RecordExtractor, m *metrics.Recorder) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &ParseStage{Logger: logger, Cfg: cfg, Text: text, Records: records, Metrics: m}
}

// DocumentResult is the outcome for one receipt. A failed document carries
// Err and no records.
type DocumentResult struct {
	Receipt  ingest.ScannedReceipt
	Records  []entity.ItemRecord
	Pages    int
	Method   string
	Warnings []string
	Duration time.Duration
	Err      error
}

// ParseReport collects document results in input order.
type ParseReport struct {
	Documents []DocumentResult
	Stores    []constants.Store // stores with at least one scanned receipt
}

// Records returns the records of every successful document for store, in
// document order.
func (r *ParseReport) Records(store constants.Store) []entity.ItemRecord {
	var out []entity.ItemRecord
	for _, d := range r.Documents {
		if d.Err == nil && d.Receipt.Store == store {
			out = append(out, d.Records...)
		}
	}
	return out
}

func (r *ParseReport) Failed() int {
	n := 0
	for _, d := range r.Documents {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// Run extracts and assembles every receipt with at most Cfg.Workers documents
// in flight. One document's failure never affects another's result; only
// cancellation of ctx fails the run.
func (p *ParseStage) Run(ctx context.Context, receipts []ingest.ScannedReceipt) (*ParseReport, error) {
	start := time.Now()
	results := make([]DocumentResult, len(receipts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Cfg.Workers)
	for i, rc := range receipts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.parseDocument(gctx, rc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &ParseReport{Documents: results}
	seen := make(map[constants.Store]bool)
	for _, rc := range receipts {
		seen[rc.Store] = true
	}
	for _, s := range constants.AllStores() {
		if seen[s] {
			report.Stores = append(report.Stores, s)
		}
	}

	p.Logger.Info("parse.ok",
		"documents", len(receipts),
		"failed", report.Failed(),
		"workers", p.Cfg.Workers,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

func (p *ParseStage) parseDocument(ctx context.Context, rc ingest.ScannedReceipt) DocumentResult {
	start := time.Now()
	res := DocumentResult{Receipt: rc}
	logger := p.Logger.With("path", rc.Path, "store", string(rc.Store))

	ctx, span := tracer.Start(ctx, "parse.document")
	span.SetAttributes(attribute.String("receipt.store", string(rc.Store)), attribute.String("receipt.file", filepath.Base(rc.Path)))
	defer span.End()

	if p.Cfg.DocumentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Cfg.DocumentTimeout)
		defer cancel()
	}

	text, err := p.Text.Extract(ctx, rc.Path)
	res.Pages = text.PageCount
	res.Method = text.Method
	res.Warnings = text.Warnings
	if err == nil {
		res.Records, err = p.Records.ExtractRecords(receipt.Document{Path: rc.Path, Store: rc.Store, Lines: text.Lines()})
	}
	res.Duration = time.Since(start)

	if err != nil {
		if common.ErrorCode(err) == "" {
			err = common.ExtractionError(rc.Path, err)
		}
		res.Err = err
		res.Records = nil
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		logger.Error("parse.document.failed", "error", err, "elapsed_ms", res.Duration.Milliseconds())
		p.Metrics.Document(string(rc.Store), "failed", 0, res.Duration)
		return res
	}

	span.SetAttributes(attribute.Int("receipt.items", len(res.Records)), attribute.String("receipt.method", res.Method))
	logger.Info("parse.document.ok",
		"file", filepath.Base(rc.Path),
		"pages", res.Pages,
		"method", res.Method,
		"items", len(res.Records),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	p.Metrics.Document(string(rc.Store), "ok", len(res.Records), res.Duration)
	return res
}

// WriteIntermediates writes one intermediate CSV per store that had receipts,
// returning the paths keyed by store.
func (p *ParseStage) WriteIntermediates(report *ParseReport) (map[constants.Store]string, error) {
	if p.Cfg.OutputDir == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "output directory is required", common.ErrInvalidInput)
	}
	paths := make(map[constants.Store]string, len(report.Stores))
	for _, s := range report.Stores {
		path := filepath.Join(p.Cfg.OutputDir, constants.IntermediateFile(s))
		records := report.Records(s)
		if err := export.WriteIntermediateFile(path, records); err != nil {
			return paths, fmt.Errorf("%s: %w", s, err)
		}
		p.Logger.Info("parse.intermediate.written", "store", string(s), "path", path, "records", len(records))
		paths[s] = path
	}
	return paths, nil
}
