package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-collator/internal/metrics"
)

func newCollateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collate",
		Short: "Collate <store>_items.csv into <store>_collated.csv",
		Long: `collate reads each store's intermediate CSV from the output directory,
groups items by code and name, estimates quantities and writes the collated
CSV sorted by total cost. A store whose intermediate file is missing is
reported and skipped; the others still run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stores, err := a.stores()
			if err != nil {
				return err
			}
			rec := metrics.NewRecorder()
			defer a.flushMetrics(rec)

			stage, closeFn, err := a.collateStage(cmd.Context(), rec)
			defer closeFn()
			if err != nil {
				return err
			}

			report, err := stage.Run(cmd.Context(), stores)
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
	return cmd
}
