package transactions

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipts-collator/internal/common"
)

const posCSV = `Date,Time,Description,Transaction ID,Gross Sales,Discounts,Net Sales,Fees,Net Total,Total Collected,Card,Cash,Tip
2025-09-01,08:15:00,"2 x Latte, Croissant",T1,$10.00,$0.00,$10.00,-$0.50,$9.50,$10.00,$10.00,$0.00,$0.00
2025-09-01,14:05:00,Latte (Regular),T2,$5.00,$0.00,$5.00,-$0.25,$4.75,$5.00,$0.00,$5.00,$0.00
2025-09-02,08:45:00,"Bagel - everything, toasted",T3,"$1,000.00",$0.00,"$1,000.00",-$30.00,$970.00,"$1,000.00",$0.00,$0.00,$0.00
bad-date,08:00:00,Latte,T4,$1.00,,,,,,,,
2025-09-02,09:00:00,Latte,T5,abc,,,,,,,,
`

func TestCleanCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$1,234.56", "1234.56"},
		{"-$0.50", "-0.5"},
		{"$-0.50", "-0.5"},
		{"($2.00)", "-2"},
		{"", "0"},
		{"  7 ", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanCurrency(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}

	_, err := CleanCurrency("twelve")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestExtractItems(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"2 x Latte, Croissant", []string{"Latte", "Croissant"}},
		{"Latte (Regular)", []string{"Latte"}},
		{"Bagel - everything, toasted", []string{"Bagel"}},
		{"Muffin, blueberry, 3 x Tea", []string{"Muffin, blueberry", "Tea"}},
		{"OJ", []string{"OJ"}},
		{"Tea, 2 X Scone", []string{"Tea, 2 X Scone"}},
		{"Tea, Éclair", []string{"Tea, Éclair"}},
		{"Tea,2 x Scone", []string{"Tea", "Scone"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractItems(tt.in))
		})
	}
}

func TestReadTransactions(t *testing.T) {
	txs, rowErrs, err := ReadTransactions(strings.NewReader(posCSV))
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Len(t, rowErrs, 2)
	assert.Equal(t, 5, rowErrs[0].Row)
	assert.Equal(t, 6, rowErrs[1].Row)

	assert.Equal(t, 8, txs[0].At.Hour())
	assert.Equal(t, 15, txs[0].At.Minute())
	assert.True(t, txs[0].Fees.Equal(decimal.RequireFromString("-0.50")))
	assert.True(t, txs[2].GrossSales.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Card", txs[0].PaymentMethod())
	assert.Equal(t, "Cash", txs[1].PaymentMethod())
	assert.Equal(t, "Other", txs[2].PaymentMethod())
}

func TestBuild(t *testing.T) {
	txs, _, err := ReadTransactions(strings.NewReader(posCSV))
	require.NoError(t, err)
	rep := Build(txs)

	s := rep.Summary
	assert.Equal(t, 3, s.Transactions)
	assert.Equal(t, "2025-09-01", s.From.Format("2006-01-02"))
	assert.Equal(t, "2025-09-02", s.To.Format("2006-01-02"))
	assert.Equal(t, "1015.00", s.GrossSales.StringFixed(2))
	assert.Equal(t, "30.75", s.Fees.StringFixed(2))
	assert.Equal(t, "984.25", s.NetTotal.StringFixed(2))
	assert.Equal(t, "338.33", s.AvgTransaction.StringFixed(2))
	assert.Equal(t, "10.25", s.AvgFee.StringFixed(2))
	assert.Equal(t, "95.67", s.AvgMarginPct.StringFixed(2))
	assert.Equal(t, "3.03", s.FeeImpactPct.StringFixed(2))

	require.Len(t, rep.Daily, 2)
	assert.Equal(t, 2, rep.Daily[0].Transactions)
	assert.Equal(t, "15.00", rep.Daily[0].GrossSales.StringFixed(2))

	require.Len(t, rep.Hourly, 24)
	assert.Equal(t, 2, rep.Hourly[8].Transactions)
	assert.Equal(t, 1, rep.Hourly[14].Transactions)

	require.Len(t, rep.Items, 3)
	assert.Equal(t, "Bagel", rep.Items[0].Item)
	assert.Equal(t, "Latte", rep.Items[1].Item)
	assert.Equal(t, "10.00", rep.Items[1].GrossSales.StringFixed(2))
	assert.Equal(t, 2, rep.Items[1].Transactions)
	assert.Equal(t, "Croissant", rep.Items[2].Item)

	top := rep.TopItemsByCount(1)
	require.Len(t, top, 1)
	assert.Equal(t, "Latte", top[0].Item)
	assert.Len(t, rep.TopItems(10), 3)

	require.Len(t, rep.Payments, 3)
	assert.Equal(t, []string{"Card", "Cash", "Other"}, []string{rep.Payments[0].Method, rep.Payments[1].Method, rep.Payments[2].Method})
}

func TestBuildEmpty(t *testing.T) {
	rep := Build(nil)
	assert.Zero(t, rep.Summary.Transactions)
	assert.Len(t, rep.Hourly, 24)
	assert.Empty(t, rep.Items)
}

func TestWriteWorkbook(t *testing.T) {
	txs, _, err := ReadTransactions(strings.NewReader(posCSV))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "report", "transactions.xlsx")
	require.NoError(t, WriteWorkbook(path, Build(txs), nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSummary, SheetDaily, SheetHourly, SheetItems, SheetPayments}, f.GetSheetList())
	v, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01 to 2025-09-02", v)
	v, err = f.GetCellValue(SheetItems, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Bagel", v)
	v, err = f.GetCellValue(SheetPayments, "A4")
	require.NoError(t, err)
	assert.Equal(t, "Other", v)
}
