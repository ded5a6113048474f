package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-collator/internal/ingest"
	"github.com/joseph-ayodele/receipts-collator/internal/metrics"
	processor "github.com/joseph-ayodele/receipts-collator/internal/pipeline"
)

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [receipts-dir]",
		Short: "Extract line items from receipt PDFs into <store>_items.csv",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := a.stores()
			if err != nil {
				return err
			}
			rec := metrics.NewRecorder()
			defer a.flushMetrics(rec)

			parse, err := a.parseStage(rec)
			if err != nil {
				return err
			}
			scanner := ingest.NewFSScanner(a.cfg.Prefixes(), a.cfg.Paths.SkipHidden, a.logger)
			p := processor.NewProcessor(a.logger, scanner, parse, nil)

			summary, err := p.ParseDirectory(cmd.Context(), a.receiptsDir(args), stores)
			if err != nil {
				return err
			}
			printParseSummary(a.stdout, summary)
			return nil
		},
	}
	addStoreFlag(cmd, a)
	cmd.Flags().IntVar(&a.workers, "workers", 0, "documents extracted in parallel (overrides EXTRACT_WORKERS)")
	return cmd
}
