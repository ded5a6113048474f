package transactions

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

var hundred = decimal.NewFromInt(100)

// Summary holds batch-wide totals. Fees are reported as positive amounts.
type Summary struct {
	From, To       time.Time
	Transactions   int
	GrossSales     decimal.Decimal
	Fees           decimal.Decimal
	NetTotal       decimal.Decimal
	AvgTransaction decimal.Decimal
	AvgFee         decimal.Decimal
	AvgMarginPct   decimal.Decimal
	FeeImpactPct   decimal.Decimal
}

type DailyRow struct {
	Date         time.Time
	GrossSales   decimal.Decimal
	NetTotal     decimal.Decimal
	Fees         decimal.Decimal
	Transactions int
	AvgMarginPct decimal.Decimal
}

type HourlyRow struct {
	Hour         int
	GrossSales   decimal.Decimal
	Transactions int
}

type ItemRow struct {
	Item         string
	GrossSales   decimal.Decimal
	NetTotal     decimal.Decimal
	Transactions int
}

type PaymentRow struct {
	Method       string
	GrossSales   decimal.Decimal
	Transactions int
}

// Report is every aggregate the POS workbook shows.
type Report struct {
	Summary  Summary
	Daily    []DailyRow
	Hourly   []HourlyRow // always 24 rows
	Items    []ItemRow   // by gross sales, descending
	Payments []PaymentRow
}

// Margin is net / gross as a percentage, zero when gross is zero.
func Margin(tx entity.Transaction) decimal.Decimal {
	if tx.GrossSales.IsZero() {
		return decimal.Zero
	}
	return tx.NetTotal.Div(tx.GrossSales).Mul(hundred)
}

func mean(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// Build aggregates txs. Items with equal gross keep first-seen order.
func Build(txs []entity.Transaction) Report {
	var rep Report
	rep.Hourly = make([]HourlyRow, 24)
	for h := range rep.Hourly {
		rep.Hourly[h] = HourlyRow{Hour: h, GrossSales: decimal.Zero}
	}
	if len(txs) == 0 {
		return rep
	}

	s := &rep.Summary
	s.Transactions = len(txs)
	s.From, s.To = txs[0].Day(), txs[0].Day()
	s.GrossSales, s.Fees, s.NetTotal = decimal.Zero, decimal.Zero, decimal.Zero
	marginSum := decimal.Zero

	daily := make(map[time.Time]*DailyRow)
	dailyMargin := make(map[time.Time]decimal.Decimal)
	items := make(map[string]*ItemRow)
	var itemOrder []string
	payments := make(map[string]*PaymentRow)
	var paymentOrder []string

	for _, tx := range txs {
		day := tx.Day()
		if day.Before(s.From) {
			s.From = day
		}
		if day.After(s.To) {
			s.To = day
		}
		s.GrossSales = s.GrossSales.Add(tx.GrossSales)
		s.Fees = s.Fees.Add(tx.Fees)
		s.NetTotal = s.NetTotal.Add(tx.NetTotal)
		m := Margin(tx)
		marginSum = marginSum.Add(m)

		d, ok := daily[day]
		if !ok {
			d = &DailyRow{Date: day, GrossSales: decimal.Zero, NetTotal: decimal.Zero, Fees: decimal.Zero}
			daily[day] = d
		}
		d.GrossSales = d.GrossSales.Add(tx.GrossSales)
		d.NetTotal = d.NetTotal.Add(tx.NetTotal)
		d.Fees = d.Fees.Add(tx.Fees)
		d.Transactions++
		dailyMargin[day] = dailyMargin[day].Add(m)

		h := &rep.Hourly[tx.At.Hour()]
		h.GrossSales = h.GrossSales.Add(tx.GrossSales)
		h.Transactions++

		names := ExtractItems(tx.Description)
		if len(names) > 0 {
			n := decimal.NewFromInt(int64(len(names)))
			gross, net := tx.GrossSales.Div(n), tx.NetTotal.Div(n)
			for _, name := range names {
				it, ok := items[name]
				if !ok {
					it = &ItemRow{Item: name, GrossSales: decimal.Zero, NetTotal: decimal.Zero}
					items[name] = it
					itemOrder = append(itemOrder, name)
				}
				it.GrossSales = it.GrossSales.Add(gross)
				it.NetTotal = it.NetTotal.Add(net)
				it.Transactions++
			}
		}

		method := tx.PaymentMethod()
		p, ok := payments[method]
		if !ok {
			p = &PaymentRow{Method: method, GrossSales: decimal.Zero}
			payments[method] = p
			paymentOrder = append(paymentOrder, method)
		}
		p.GrossSales = p.GrossSales.Add(tx.GrossSales)
		p.Transactions++
	}

	s.Fees = s.Fees.Abs()
	s.AvgTransaction = mean(s.GrossSales, s.Transactions)
	s.AvgFee = mean(s.Fees, s.Transactions)
	s.AvgMarginPct = mean(marginSum, s.Transactions)
	if !s.GrossSales.IsZero() {
		s.FeeImpactPct = s.Fees.Div(s.GrossSales).Mul(hundred)
	}

	for day, d := range daily {
		d.AvgMarginPct = mean(dailyMargin[day], d.Transactions)
		rep.Daily = append(rep.Daily, *d)
	}
	sort.Slice(rep.Daily, func(i, j int) bool { return rep.Daily[i].Date.Before(rep.Daily[j].Date) })

	for _, name := range itemOrder {
		rep.Items = append(rep.Items, *items[name])
	}
	sort.SliceStable(rep.Items, func(i, j int) bool {
		return rep.Items[i].GrossSales.GreaterThan(rep.Items[j].GrossSales)
	})

	sort.Strings(paymentOrder)
	for _, m := range paymentOrder {
		rep.Payments = append(rep.Payments, *payments[m])
	}
	return rep
}

// TopItems returns at most n items by gross sales.
func (r Report) TopItems(n int) []ItemRow {
	if n > len(r.Items) {
		n = len(r.Items)
	}
	return r.Items[:n]
}

// TopItemsByCount returns at most n items by transaction count, ties by gross.
func (r Report) TopItemsByCount(n int) []ItemRow {
	out := make([]ItemRow, len(r.Items))
	copy(out, r.Items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Transactions > out[j].Transactions })
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}
