package transactions

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// PosRow is one row of a point-of-sale transactions export.
type PosRow struct {
	Date           string `csv:"Date"`
	Time           string `csv:"Time"`
	Description    string `csv:"Description"`
	TransactionID  string `csv:"Transaction ID"`
	GrossSales     string `csv:"Gross Sales"`
	Discounts      string `csv:"Discounts"`
	NetSales       string `csv:"Net Sales"`
	Fees           string `csv:"Fees"`
	NetTotal       string `csv:"Net Total"`
	TotalCollected string `csv:"Total Collected"`
	Card           string `csv:"Card"`
	Cash           string `csv:"Cash"`
	Tip            string `csv:"Tip"`
}

// RowError describes a skipped row. Row is 1-based and counts the header.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

var (
	dateLayouts = []string{time.DateOnly, "01/02/2006", "1/2/2006", "1/2/06", "Jan 2, 2006"}
	timeLayouts = []string{time.TimeOnly, "15:04", "3:04 PM", "3:04:05 PM", "3:04PM"}
)

// CleanCurrency parses "$1,234.56", "-$3.10" or "" (zero).
func CleanCurrency(v string) (decimal.Decimal, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg, s = true, s[1:len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if strings.HasPrefix(s, "-") {
		neg, s = !neg, s[1:]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", common.ErrInvalidInput, v)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

func parseWhen(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	var day time.Time
	var err error
	for _, l := range dateLayouts {
		if day, err = time.Parse(l, date); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", common.ErrInvalidInput, date)
	}
	if clock == "" {
		return day, nil
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, strings.ToUpper(clock)); err == nil {
			return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: time %q", common.ErrInvalidInput, clock)
}

func (r PosRow) transaction() (entity.Transaction, error) {
	at, err := parseWhen(r.Date, r.Time)
	if err != nil {
		return entity.Transaction{}, err
	}
	tx := entity.Transaction{
		At:            at,
		Description:   strings.TrimSpace(r.Description),
		TransactionID: strings.TrimSpace(r.TransactionID),
	}
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"Gross Sales", r.GrossSales, &tx.GrossSales},
		{"Discounts", r.Discounts, &tx.Discounts},
		{"Net Sales", r.NetSales, &tx.NetSales},
		{"Fees", r.Fees, &tx.Fees},
		{"Net Total", r.NetTotal, &tx.NetTotal},
		{"Total Collected", r.TotalCollected, &tx.TotalCollected},
		{"Card", r.Card, &tx.Card},
		{"Cash", r.Cash, &tx.Cash},
		{"Tip", r.Tip, &tx.Tip},
	}
	var errs []error
	for _, f := range fields {
		d, err := CleanCurrency(f.raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		*f.dst = d
	}
	if len(errs) > 0 {
		return entity.Transaction{}, errors.Join(errs...)
	}
	return tx, nil
}

// ReadTransactions parses a POS export. Rows with a bad date or amount are
// returned separately and left out.
func ReadTransactions(r io.Reader) ([]entity.Transaction, []RowError, error) {
	var rows []*PosRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read transactions csv: %w", err)
	}
	out := make([]entity.Transaction, 0, len(rows))
	var rowErrs []RowError
	for i, row := range rows {
		tx, err := row.transaction()
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 2, Err: err})
			continue
		}
		out = append(out, tx)
	}
	return out, rowErrs, nil
}

// ReadTransactionsFile opens path and parses it.
func ReadTransactionsFile(path string) ([]entity.Transaction, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, common.NewAppError("NOT_FOUND", path, common.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadTransactions(f)
}
