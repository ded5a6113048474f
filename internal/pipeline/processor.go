package processor

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/ingest"
)

var tracer = otel.Tracer("github.com/joseph-ayodele/receipts-collator/internal/pipeline")

// Processor coordinates scan, parse (text extract then assemble) and collate.
type Processor struct {
	Logger  *slog.Logger
	Scanner ingest.Scanner
	Parse   *ParseStage
	Collate *CollateStage
}

func NewProcessor(logger *slog.Logger, scanner ingest.Scanner, parse *ParseStage, collate *CollateStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Scanner: scanner, Parse: parse, Collate: collate}
}

// ParseSummary is what the parse step reports back to the caller.
type ParseSummary struct {
	RunID        string
	Stats        ingest.DirStats
	Report       *ParseReport
	Intermediate map[constants.Store]string
}

// ParseDirectory scans root, parses every receipt and writes the
// intermediate CSVs. Only stores passed in stores are kept; nil keeps all.
func (p *Processor) ParseDirectory(ctx context.Context, root string, stores []constants.Store) (*ParseSummary, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		ctx, runID = common.NewRun(ctx)
	}
	logger := common.LoggerFor(ctx, p.Logger)

	ctx, span := tracer.Start(ctx, "processor.parse")
	span.SetAttributes(attribute.String("run.id", runID), attribute.String("run.root", root))
	defer span.End()

	receipts, _, stats, err := p.Scanner.ScanDirectory(ctx, root)
	if err != nil {
		logger.Error("processor.scan.failed", "root", root, "error", err)
		return nil, err
	}
	if len(stores) > 0 {
		var kept []ingest.ScannedReceipt
		for _, s := range stores {
			kept = append(kept, ingest.ForStore(receipts, s)...)
		}
		receipts = kept
	}

	report, err := p.Parse.Run(ctx, receipts)
	if err != nil {
		logger.Error("processor.parse.failed", "error", err)
		return nil, err
	}
	paths, err := p.Parse.WriteIntermediates(report)
	if err != nil {
		logger.Error("processor.write.failed", "error", err)
		return nil, err
	}

	logger.Info("processor.parse.ok",
		"receipts", len(receipts),
		"failed", report.Failed(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &ParseSummary{RunID: runID, Stats: stats, Report: report, Intermediate: paths}, nil
}

// Run is parse followed by collate for the stores that had receipts.
func (p *Processor) Run(ctx context.Context, root string, stores []constants.Store) (*ParseSummary, *CollateReport, error) {
	ctx, _ = common.NewRun(ctx)
	summary, err := p.ParseDirectory(ctx, root, stores)
	if err != nil {
		return nil, nil, err
	}
	report, err := p.Collate.Run(ctx, summary.Report.Stores)
	if err != nil {
		return summary, report, err
	}
	return summary, report, nil
}
