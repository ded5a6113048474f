package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// IntermediateRow is one parsed line item as written between the parse and
// collate steps.
type IntermediateRow struct {
	ItemCode   string `csv:"item_code"`
	Item       string `csv:"item"`
	UnitNumber int    `csv:"unit_number"`
	Date       string `csv:"date"`
	Cost       string `csv:"cost"`
}

// CollatedCSVRow is one line of the collated report.
type CollatedCSVRow struct {
	Item      string `csv:"item"`
	Quantity  int    `csv:"quantity"`
	TotalCost string `csv:"total_cost"`
}

// RowError describes an intermediate row that failed validation. Row is
// 1-based and counts the header.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func toIntermediate(r entity.ItemRecord) IntermediateRow {
	return IntermediateRow{
		ItemCode:   r.ItemCode,
		Item:       r.ItemName,
		UnitNumber: r.Quantity,
		Date:       r.DateString(),
		Cost:       r.TotalPrice.StringFixed(2),
	}
}

func (row IntermediateRow) validate() error {
	return common.NewValidator().
		Field("item", row.Item, common.Required).
		Field("unit_number", row.UnitNumber, common.PositiveInt).
		Field("date", strings.TrimSpace(row.Date), common.DateOrEmpty).
		Field("cost", row.Cost, common.MoneyAmount).
		Err()
}

func (row IntermediateRow) record(store constants.Store) (entity.ItemRecord, error) {
	if err := row.validate(); err != nil {
		return entity.ItemRecord{}, err
	}
	total, err := decimal.NewFromString(strings.TrimSpace(row.Cost))
	if err != nil {
		return entity.ItemRecord{}, fmt.Errorf("%w: cost %q", common.ErrInvalidInput, row.Cost)
	}
	rec := entity.NewItemRecord(store, strings.TrimSpace(row.ItemCode), strings.TrimSpace(row.Item), row.UnitNumber, total)
	if d := strings.TrimSpace(row.Date); d != "" {
		t, _ := time.Parse(time.DateOnly, d)
		rec.ReceiptDate = &t
	}
	return rec, nil
}

// WriteIntermediate writes records with the intermediate header.
func WriteIntermediate(w io.Writer, records []entity.ItemRecord) error {
	rows := make([]*IntermediateRow, 0, len(records))
	for _, r := range records {
		row := toIntermediate(r)
		rows = append(rows, &row)
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write intermediate csv: %w", err)
	}
	return nil
}

// ReadIntermediate parses intermediate rows back into records for store.
// Rows that fail validation are returned separately and left out of records.
func ReadIntermediate(r io.Reader, store constants.Store) ([]entity.ItemRecord, []RowError, error) {
	var rows []*IntermediateRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read intermediate csv: %w", err)
	}

	records := make([]entity.ItemRecord, 0, len(rows))
	var rowErrs []RowError
	for i, row := range rows {
		rec, err := row.record(store)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 2, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, rowErrs, nil
}

// WriteCollated writes rows with the collated header, in the given order.
func WriteCollated(w io.Writer, rows []entity.CollatedRow) error {
	out := make([]*CollatedCSVRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, &CollatedCSVRow{Item: r.Item, Quantity: r.Quantity, TotalCost: r.TotalCost.StringFixed(2)})
	}
	if err := gocsv.Marshal(&out, w); err != nil {
		return fmt.Errorf("write collated csv: %w", err)
	}
	return nil
}

// ReadCollated parses a collated report.
func ReadCollated(r io.Reader) ([]entity.CollatedRow, error) {
	var rows []*CollatedCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collated csv: %w", err)
	}
	out := make([]entity.CollatedRow, 0, len(rows))
	for i, row := range rows {
		total, err := decimal.NewFromString(strings.TrimSpace(row.TotalCost))
		if err != nil {
			return nil, RowError{Row: i + 2, Err: fmt.Errorf("%w: total_cost %q", common.ErrInvalidInput, row.TotalCost)}
		}
		out = append(out, entity.CollatedRow{Item: row.Item, Quantity: row.Quantity, TotalCost: total})
	}
	return out, nil
}

// WriteIntermediateFile creates path (and its directory) and writes records.
func WriteIntermediateFile(path string, records []entity.ItemRecord) error {
	return writeFile(path, func(w io.Writer) error { return WriteIntermediate(w, records) })
}

// ReadIntermediateFile reads path, reporting a missing file as MISSING_INPUT.
func ReadIntermediateFile(path string, store constants.Store) ([]entity.ItemRecord, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, common.MissingInputError(path)
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadIntermediate(f, store)
}

func WriteCollatedFile(path string, rows []entity.CollatedRow) error {
	return writeFile(path, func(w io.Writer) error { return WriteCollated(w, rows) })
}

// writeFile writes through a temp file in the target directory and renames
// it into place, so readers never see a partial file.
func writeFile(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
