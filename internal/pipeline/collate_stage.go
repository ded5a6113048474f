package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/collate"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/export"
	"github.com/joseph-ayodele/receipts-collator/internal/metrics"
)

// CollateConfig holds output and tuning settings for the collate stage.
type CollateConfig struct {
	OutputDir       string
	MedianThreshold float64
	WriteXLSX       bool
	Currency        string
}

type CollateStage struct {
	Logger  *slog.Logger
	Cfg     CollateConfig
	Lookup  collate.PriceLookup // optional
	Metrics *metrics.Recorder
}

func NewCollateStage(logger *slog.Logger, cfg CollateConfig, lookup collate.PriceLookup, m *metrics.Recorder) *CollateStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollateStage{Logger: logger, Cfg: cfg, Lookup: lookup, Metrics: m}
}

// StoreOutcome is one store's collate branch.
type StoreOutcome struct {
	Store       constants.Store
	InputPath   string
	CSVPath     string
	XLSXPath    string
	Result      *collate.Result
	SkippedRows []export.RowError
	Err         error
}

type CollateReport struct {
	Outcomes []StoreOutcome
}

// Err joins the errors of every failed branch.
func (r *CollateReport) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Store, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Run collates each store's intermediate file independently. A missing or
// unreadable input aborts only that store's branch. Cancellation of ctx stops
// the run.
func (c *CollateStage) Run(ctx context.Context, stores []constants.Store) (*CollateReport, error) {
	report := &CollateReport{}
	for _, s := range stores {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		sctx, span := tracer.Start(ctx, "collate.store")
		span.SetAttributes(attribute.String("receipt.store", string(s)))
		out := c.runStore(sctx, s)
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, "collate failed")
		} else {
			span.SetAttributes(attribute.Int("collate.rows", len(out.Result.Rows)))
		}
		span.End()
		if errors.Is(out.Err, context.Canceled) || errors.Is(out.Err, context.DeadlineExceeded) {
			return report, out.Err
		}
		report.Outcomes = append(report.Outcomes, out)
	}
	return report, nil
}

func (c *CollateStage) runStore(ctx context.Context, store constants.Store) StoreOutcome {
	start := time.Now()
	ctx = common.WithStore(ctx, store)
	logger := common.LoggerFor(ctx, c.Logger)
	out := StoreOutcome{
		Store:     store,
		InputPath: filepath.Join(c.Cfg.OutputDir, constants.IntermediateFile(store)),
	}

	records, rowErrs, err := export.ReadIntermediateFile(out.InputPath, store)
	if err != nil {
		logger.Error("collate.input.failed", "path", out.InputPath, "error", err)
		out.Err = err
		return out
	}
	out.SkippedRows = rowErrs
	for _, re := range rowErrs {
		logger.Warn("collate.input.row_skipped", "path", out.InputPath, "row", re.Row, "error", re.Err)
	}

	opts := []collate.Option{
		collate.WithThreshold(c.Cfg.MedianThreshold),
		collate.WithLogger(c.Logger),
	}
	if c.Lookup != nil && store.HasItemCodes() {
		opts = append(opts, collate.WithLookup(c.Lookup))
	}
	res, err := collate.New(store, opts...).Collate(ctx, records)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res

	out.CSVPath = filepath.Join(c.Cfg.OutputDir, constants.CollatedFile(store))
	if err := export.WriteCollatedFile(out.CSVPath, res.Rows); err != nil {
		logger.Error("collate.output.failed", "path", out.CSVPath, "error", err)
		out.Err = err
		return out
	}
	if c.Cfg.WriteXLSX {
		out.XLSXPath = filepath.Join(c.Cfg.OutputDir, constants.CollatedXLSXFile(store))
		if err := export.WriteCollatedXLSX(out.XLSXPath, store, res.Rows, c.Cfg.Currency, c.Logger); err != nil {
			logger.Error("collate.output.failed", "path", out.XLSXPath, "error", err)
			out.Err = err
			return out
		}
	}

	c.Metrics.Lookups(string(store), res.Lookups.Found, res.Lookups.Missed)
	c.Metrics.Collated(string(store), len(res.Rows), res.TotalCost().InexactFloat64())
	logger.Info("collate.store.ok",
		"input", out.InputPath,
		"output", out.CSVPath,
		"rows", len(res.Rows),
		"skipped_rows", len(rowErrs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}
