package export

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

const collatedSheet = "Collated"

// Cents converts a two-place decimal amount into minor units.
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// Display formats an amount with the currency's symbol and separators.
func Display(d decimal.Decimal, currency string) string {
	return money.New(Cents(d), currency).Display()
}

// CollatedWorkbook builds the collated report as a workbook with a totals row.
func CollatedWorkbook(store constants.Store, rows []entity.CollatedRow, currency string) (*excelize.File, error) {
	if currency == "" {
		currency = money.USD
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", collatedSheet); err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   store.DisplayName() + " collated items",
		Created: time.Now().UTC().Format(time.RFC3339),
	})

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}

	headers := []any{"Item", "Quantity", "Total Cost", "Display"}
	if err := f.SetSheetRow(collatedSheet, "A1", &headers); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(collatedSheet, "A1", "D1", headerStyle)

	total := decimal.Zero
	qty := 0
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{r.Item, r.Quantity, r.TotalCost.Round(2).InexactFloat64(), Display(r.TotalCost, currency)}
		if err := f.SetSheetRow(collatedSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		total = total.Add(r.TotalCost)
		qty += r.Quantity
	}

	last := len(rows) + 2
	totals := []any{"Total", qty, total.Round(2).InexactFloat64(), Display(total, currency)}
	totalCell, _ := excelize.CoordinatesToCellName(1, last)
	if err := f.SetSheetRow(collatedSheet, totalCell, &totals); err != nil {
		return nil, err
	}
	lastTotal, _ := excelize.CoordinatesToCellName(4, last)
	_ = f.SetCellStyle(collatedSheet, totalCell, lastTotal, headerStyle)

	amountTop, _ := excelize.CoordinatesToCellName(3, 2)
	amountBottom, _ := excelize.CoordinatesToCellName(3, last)
	_ = f.SetCellStyle(collatedSheet, amountTop, amountBottom, amountStyle)

	_ = f.SetColWidth(collatedSheet, "A", "A", 48)
	_ = f.SetColWidth(collatedSheet, "B", "B", 10)
	_ = f.SetColWidth(collatedSheet, "C", "D", 14)
	_ = f.SetPanes(collatedSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return f, nil
}

// WriteCollatedXLSX writes the collated workbook to path.
func WriteCollatedXLSX(path string, store constants.Store, rows []entity.CollatedRow, currency string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	f, err := CollatedWorkbook(store, rows, currency)
	if err != nil {
		return fmt.Errorf("xlsx build: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := writeFile(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	}); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	logger.Info("export.xlsx.ok", "path", path, "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
