package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/joseph-ayodele/receipts-collator/internal/entity"
	"github.com/joseph-ayodele/receipts-collator/internal/export"
	processor "github.com/joseph-ayodele/receipts-collator/internal/pipeline"
)

const topN = 10

var (
	heading = color.New(color.Bold, color.FgCyan)
	warn    = color.New(color.FgYellow)
	fail    = color.New(color.FgRed, color.Bold)
	ok      = color.New(color.FgGreen)
)

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func printParseSummary(w io.Writer, s *processor.ParseSummary) {
	heading.Fprintf(w, "Parse run %s\n", s.RunID)
	fmt.Fprintf(w, "  scanned %d, matched %d, duplicates %d, skipped %d\n",
		s.Stats.Scanned, s.Stats.Matched, s.Stats.Deduplicated, s.Stats.Skipped)
	for _, d := range s.Report.Documents {
		if d.Err != nil {
			fail.Fprintf(w, "  FAIL ")
			fmt.Fprintf(w, "%s: %v\n", d.Receipt.Path, d.Err)
		}
	}
	for _, st := range s.Report.Stores {
		fmt.Fprintf(w, "  %-10s %s -> %s\n", st.DisplayName(), plural(len(s.Report.Records(st)), "record"), s.Intermediate[st])
	}
}

// printCollateSummary shows each store's top items by cost and by quantity,
// followed by totals.
func printCollateSummary(w io.Writer, r *processor.CollateReport, currency string) {
	for _, o := range r.Outcomes {
		fmt.Fprintln(w)
		heading.Fprintf(w, "%s\n", o.Store.DisplayName())
		if o.Err != nil {
			fail.Fprintf(w, "  %v\n", o.Err)
			continue
		}
		if n := len(o.SkippedRows); n > 0 {
			warn.Fprintf(w, "  skipped %s in %s\n", plural(n, "invalid row"), o.InputPath)
		}
		res := o.Result
		if len(res.Rows) == 0 {
			fmt.Fprintln(w, "  no items")
			continue
		}

		fmt.Fprintf(w, "  Top %d by total cost\n", min(topN, len(res.Rows)))
		printRows(w, res.Rows[:min(topN, len(res.Rows))], currency)

		byQty := make([]entity.CollatedRow, len(res.Rows))
		copy(byQty, res.Rows)
		sort.SliceStable(byQty, func(i, j int) bool { return byQty[i].Quantity > byQty[j].Quantity })
		fmt.Fprintf(w, "  Top %d by quantity\n", min(topN, len(byQty)))
		printRows(w, byQty[:min(topN, len(byQty))], currency)

		fmt.Fprintf(w, "  %s, %s, ", plural(len(res.Rows), "item"), plural(res.TotalQuantity(), "unit"))
		ok.Fprintf(w, "%s\n", export.Display(res.TotalCost(), currency))
		if res.Lookups.Attempted > 0 {
			fmt.Fprintf(w, "  lookups: %d found, %d missed\n", res.Lookups.Found, res.Lookups.Missed)
		}
		for _, nd := range res.NearDuplicates {
			warn.Fprintf(w, "  possible duplicate: %q ~ %q\n", nd.A, nd.B)
		}
		fmt.Fprintf(w, "  -> %s\n", strings.Join(outputs(o), ", "))
	}
}

func printRows(w io.Writer, rows []entity.CollatedRow, currency string) {
	for i, row := range rows {
		fmt.Fprintf(w, "  %2d. %-40s %5d %12s\n", i+1, truncateName(row.Item, 40), row.Quantity, export.Display(row.TotalCost, currency))
	}
}

func outputs(o processor.StoreOutcome) []string {
	out := []string{o.CSVPath}
	if o.XLSXPath != "" {
		out = append(out, o.XLSXPath)
	}
	return out
}
