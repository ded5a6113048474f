package main

import (
	"context"
	"time"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/extract"
	"github.com/joseph-ayodele/receipts-collator/internal/ingest"
	"github.com/joseph-ayodele/receipts-collator/internal/lookup"
	"github.com/joseph-ayodele/receipts-collator/internal/metrics"
	"github.com/joseph-ayodele/receipts-collator/internal/pdftext"
	processor "github.com/joseph-ayodele/receipts-collator/internal/pipeline"
	"github.com/joseph-ayodele/receipts-collator/internal/repository"
)

func (a *app) parseStage(rec *metrics.Recorder) (*processor.ParseStage, error) {
	cfg := a.cfg

	// Setup extraction
	text := pdftext.FromConfig(cfg.Extract, a.logger)
	headerExtra := make(map[constants.Store][]string)
	for _, s := range constants.AllStores() {
		headerExtra[s] = cfg.HeaderExtra(s)
	}
	records, err := extract.NewAssemblerAdapter(headerExtra, a.logger)
	if err != nil {
		return nil, err
	}

	return processor.NewParseStage(a.logger, processor.ParseConfig{
		Workers:         cfg.Extract.Workers,
		DocumentTimeout: cfg.Extract.DocumentTimeout,
		OutputDir:       cfg.Paths.OutputDir,
	}, text, records, rec), nil
}

// collateStage wires the optional price lookup. The returned func releases the
// hint cache database and is never nil.
func (a *app) collateStage(ctx context.Context, rec *metrics.Recorder) (*processor.CollateStage, func(), error) {
	cfg := a.cfg
	lk, closeFn, err := a.openLookup(ctx)
	if err != nil {
		return nil, closeFn, err
	}

	stage := processor.NewCollateStage(a.logger, processor.CollateConfig{
		OutputDir:       cfg.Paths.OutputDir,
		MedianThreshold: cfg.Collate.MedianThreshold,
		WriteXLSX:       cfg.Collate.WriteXLSX,
		Currency:        cfg.Collate.Currency,
	}, nil, rec)
	if lk != nil {
		stage.Lookup = lk
	}
	return stage, closeFn, nil
}

// openLookup builds the lookup chain. The hint cache is only opened for remote
// lookups; when it cannot be opened the run continues uncached.
func (a *app) openLookup(ctx context.Context) (*lookup.Lookup, func(), error) {
	cfg := a.cfg
	closeFn := func() {}

	var store lookup.HintStore
	if cfg.Lookup.Enabled && cfg.Cache.DSN != "" {
		db, err := repository.Open(ctx, repository.Config{
			DSN:         cfg.Cache.DSN,
			MaxConns:    4,
			DialTimeout: 5 * time.Second,
		}, a.logger)
		if err == nil {
			err = db.HealthCheck(ctx, 5*time.Second)
			if err != nil {
				db.Close()
			}
		}
		if err != nil {
			a.logger.Warn("lookup.cache.unavailable", "error", err)
		} else {
			repo := repository.NewHintRepository(db, a.logger)
			if err := repo.Migrate(ctx); err != nil {
				a.logger.Warn("lookup.cache.unavailable", "error", err)
				db.Close()
			} else {
				store = repo
				closeFn = db.Close
			}
		}
	}

	lk, err := lookup.Build(cfg.Lookup, cfg.Cache.TTL, store, a.logger)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return lk, closeFn, nil
}

func (a *app) newProcessor(ctx context.Context, rec *metrics.Recorder) (*processor.Processor, func(), error) {
	parse, err := a.parseStage(rec)
	if err != nil {
		return nil, func() {}, err
	}
	collate, closeFn, err := a.collateStage(ctx, rec)
	if err != nil {
		return nil, closeFn, err
	}
	scanner := ingest.NewFSScanner(a.cfg.Prefixes(), a.cfg.Paths.SkipHidden, a.logger)
	return processor.NewProcessor(a.logger, scanner, parse, collate), closeFn, nil
}

// flushMetrics writes the textfile when one is configured. Failures are logged
// and never fail the command.
func (a *app) flushMetrics(rec *metrics.Recorder) {
	path := a.cfg.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := rec.Finish(path, time.Now()); err != nil {
		a.logger.Warn("metrics.write.failed", "path", path, "error", err)
		return
	}
	a.logger.Debug("metrics.write.ok", "path", path)
}
