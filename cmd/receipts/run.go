package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-collator/internal/metrics"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [receipts-dir]",
		Short: "Parse receipt PDFs then collate every store that had receipts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := a.stores()
			if err != nil {
				return err
			}
			rec := metrics.NewRecorder()
			defer a.flushMetrics(rec)

			p, closeFn, err := a.newProcessor(cmd.Context(), rec)
			defer closeFn()
			if err != nil {
				return err
			}

			summary, report, err := p.Run(cmd.Context(), a.receiptsDir(args), stores)
			if summary != nil {
				printParseSummary(a.stdout, summary)
			}
			if report != nil {
				printCollateSummary(a.stdout, report, a.cfg.Collate.Currency)
			}
			if err != nil {
				return err
			}
			return report.Err()
		},
	}
	addStoreFlag(cmd, a)
	addLookupFlags(cmd, a)
	cmd.Flags().IntVar(&a.workers, "workers", 0, "documents extracted in parallel (overrides EXTRACT_WORKERS)")
	return cmd
}
