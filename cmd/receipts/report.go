package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-collator/internal/export"
	"github.com/joseph-ayodele/receipts-collator/internal/transactions"
)

const defaultReportFile = "transactions_report.xlsx"

func newReportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "report <transactions.csv>",
		Short: "Build an XLSX sales report from a point-of-sale transactions export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = filepath.Join(a.cfg.Paths.OutputDir, defaultReportFile)
			}
			txs, rowErrs, err := transactions.ReadTransactionsFile(args[0])
			if err != nil {
				return err
			}
			for _, re := range rowErrs {
				a.logger.Warn("report.row_skipped", "path", args[0], "row", re.Row, "error", re.Err)
			}

			rep := transactions.Build(txs)
			if err := transactions.WriteWorkbook(out, rep, a.logger); err != nil {
				return err
			}
			printReportSummary(a, rep, len(rowErrs), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "report path (default <output-dir>/"+defaultReportFile+")")
	return cmd
}

func printReportSummary(a *app, rep transactions.Report, skipped int, path string) {
	w, cur := a.stdout, a.cfg.Collate.Currency
	s := rep.Summary

	heading.Fprintf(w, "Transactions %s\n", formatSpan(rep))
	fmt.Fprintf(w, "  %s, gross %s, fees %s, net %s\n",
		plural(s.Transactions, "transaction"),
		export.Display(s.GrossSales, cur), export.Display(s.Fees, cur), export.Display(s.NetTotal, cur))
	fmt.Fprintf(w, "  average %s, average fee %s, margin %s%%, fee impact %s%%\n",
		export.Display(s.AvgTransaction, cur), export.Display(s.AvgFee, cur),
		s.AvgMarginPct.StringFixed(2), s.FeeImpactPct.StringFixed(2))
	if skipped > 0 {
		warn.Fprintf(w, "  skipped %s\n", plural(skipped, "invalid row"))
	}

	fmt.Fprintf(w, "  Top items by gross\n")
	for i, it := range rep.TopItems(topN) {
		fmt.Fprintf(w, "  %2d. %-40s %12s\n", i+1, truncateName(it.Item, 40), export.Display(it.GrossSales, cur))
	}
	fmt.Fprintf(w, "  Top items by count\n")
	for i, it := range rep.TopItemsByCount(topN) {
		fmt.Fprintf(w, "  %2d. %-40s %5d\n", i+1, truncateName(it.Item, 40), it.Transactions)
	}
	ok.Fprintf(w, "  -> %s\n", path)
}

func formatSpan(rep transactions.Report) string {
	if rep.Summary.From.IsZero() {
		return "(none)"
	}
	return rep.Summary.From.Format("2006-01-02") + " to " + rep.Summary.To.Format("2006-01-02")
}
