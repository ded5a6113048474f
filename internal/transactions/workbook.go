package transactions

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetDaily    = "Daily"
	SheetHourly   = "Hourly"
	SheetItems    = "Items"
	SheetPayments = "Payments"

	topItemsInChart = 10
)

func money2(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

type sheetWriter struct {
	f      *excelize.File
	sheet  string
	header int
	err    error
}

func (w *sheetWriter) row(n int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *sheetWriter) headerRow(values ...any) {
	w.row(1, values...)
	if w.err == nil && w.header != 0 {
		last, _ := excelize.CoordinatesToCellName(len(values), 1)
		w.err = w.f.SetCellStyle(w.sheet, "A1", last, w.header)
	}
}

// series builds a chart series over rows 2..n+1 of one sheet.
func series(sheet, nameCell, catCol, valCol string, n int) excelize.ChartSeries {
	return excelize.ChartSeries{
		Name:       fmt.Sprintf("'%s'!$%s$1", sheet, nameCell),
		Categories: fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, catCol, catCol, n+1),
		Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, valCol, valCol, n+1),
	}
}

func title(s string) []excelize.RichTextRun { return []excelize.RichTextRun{{Text: s}} }

// Workbook renders the report with one sheet per aggregate and native charts
// for fees over time, gross vs net per day, top items and payment methods.
func Workbook(rep Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, s := range []string{SheetDaily, SheetHourly, SheetItems, SheetPayments} {
		if _, err := f.NewSheet(s); err != nil {
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	sum := rep.Summary
	w0 := &sheetWriter{f: f, sheet: SheetSummary, header: bold}
	w0.headerRow("Metric", "Value")
	rows := [][]any{
		{"Date Range", formatRange(sum.From, sum.To)},
		{"Total Transactions", sum.Transactions},
		{"Total Gross Sales", money2(sum.GrossSales)},
		{"Total Fees", money2(sum.Fees)},
		{"Total Net Revenue", money2(sum.NetTotal)},
		{"Average Transaction Value", money2(sum.AvgTransaction)},
		{"Average Fee per Transaction", money2(sum.AvgFee)},
		{"Average Profit Margin (%)", money2(sum.AvgMarginPct)},
		{"Fee Impact (% of gross)", money2(sum.FeeImpactPct)},
	}
	for i, r := range rows {
		w0.row(i+2, r...)
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 30)
	_ = f.SetColWidth(SheetSummary, "B", "B", 26)

	w1 := &sheetWriter{f: f, sheet: SheetDaily, header: bold}
	w1.headerRow("Date", "Gross Sales", "Net Total", "Fees", "Transactions", "Avg Margin (%)")
	for i, d := range rep.Daily {
		w1.row(i+2, d.Date.Format(time.DateOnly), money2(d.GrossSales), money2(d.NetTotal), money2(d.Fees), d.Transactions, money2(d.AvgMarginPct))
	}
	_ = f.SetColWidth(SheetDaily, "A", "F", 14)

	w2 := &sheetWriter{f: f, sheet: SheetHourly, header: bold}
	w2.headerRow("Hour", "Gross Sales", "Transactions")
	for i, h := range rep.Hourly {
		w2.row(i+2, h.Hour, money2(h.GrossSales), h.Transactions)
	}

	w3 := &sheetWriter{f: f, sheet: SheetItems, header: bold}
	w3.headerRow("Item", "Gross Sales", "Net Total", "Transactions")
	for i, it := range rep.Items {
		w3.row(i+2, it.Item, money2(it.GrossSales), money2(it.NetTotal), it.Transactions)
	}
	_ = f.SetColWidth(SheetItems, "A", "A", 40)

	w4 := &sheetWriter{f: f, sheet: SheetPayments, header: bold}
	w4.headerRow("Payment Method", "Gross Sales", "Transactions")
	for i, p := range rep.Payments {
		w4.row(i+2, p.Method, money2(p.GrossSales), p.Transactions)
	}
	for _, sw := range []*sheetWriter{w0, w1, w2, w3, w4} {
		if sw.err != nil {
			return nil, fmt.Errorf("%s sheet: %w", sw.sheet, sw.err)
		}
	}

	if err := addCharts(f, rep); err != nil {
		return nil, err
	}
	return f, nil
}

func addCharts(f *excelize.File, rep Report) error {
	dim := excelize.ChartDimension{Width: 720, Height: 360}
	legend := excelize.ChartLegend{Position: "bottom"}

	if n := len(rep.Daily); n > 0 {
		if err := f.AddChart(SheetDaily, "H2", &excelize.Chart{
			Type:      excelize.Line,
			Series:    []excelize.ChartSeries{series(SheetDaily, "D", "A", "D", n)},
			Title:     title("Transaction Fees Over Time"),
			Legend:    excelize.ChartLegend{Position: "none"},
			Dimension: dim,
		}); err != nil {
			return fmt.Errorf("fees chart: %w", err)
		}
		if err := f.AddChart(SheetDaily, "H22", &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{
				series(SheetDaily, "B", "A", "B", n),
				series(SheetDaily, "C", "A", "C", n),
			},
			Title:     title("Gross Sales vs Net Total (Daily)"),
			Legend:    legend,
			Dimension: dim,
		}); err != nil {
			return fmt.Errorf("gross vs net chart: %w", err)
		}
	}

	if n := min(len(rep.Items), topItemsInChart); n > 0 {
		if err := f.AddChart(SheetItems, "G2", &excelize.Chart{
			Type:      excelize.Bar,
			Series:    []excelize.ChartSeries{series(SheetItems, "B", "A", "B", n)},
			Title:     title(fmt.Sprintf("Top %d Items by Gross Sales", n)),
			Legend:    excelize.ChartLegend{Position: "none"},
			Dimension: dim,
		}); err != nil {
			return fmt.Errorf("items chart: %w", err)
		}
	}

	if err := f.AddChart(SheetHourly, "E2", &excelize.Chart{
		Type:      excelize.Col,
		Series:    []excelize.ChartSeries{series(SheetHourly, "B", "A", "B", len(rep.Hourly))},
		Title:     title("Sales by Hour of Day"),
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: dim,
	}); err != nil {
		return fmt.Errorf("hourly chart: %w", err)
	}

	if n := len(rep.Payments); n > 0 {
		if err := f.AddChart(SheetPayments, "E2", &excelize.Chart{
			Type:      excelize.Pie,
			Series:    []excelize.ChartSeries{series(SheetPayments, "B", "A", "B", n)},
			Title:     title("Sales Distribution by Payment Method"),
			Legend:    legend,
			PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
			Dimension: excelize.ChartDimension{Width: 480, Height: 360},
		}); err != nil {
			return fmt.Errorf("payments chart: %w", err)
		}
	}
	return nil
}

func formatRange(from, to time.Time) string {
	if from.IsZero() {
		return ""
	}
	return from.Format(time.DateOnly) + " to " + to.Format(time.DateOnly)
}

// WriteWorkbook renders rep to path.
func WriteWorkbook(path string, rep Report, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	f, err := Workbook(rep)
	if err != nil {
		return fmt.Errorf("xlsx build: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	logger.Info("report.xlsx.ok",
		"path", path,
		"transactions", rep.Summary.Transactions,
		"items", len(rep.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
