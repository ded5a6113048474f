package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

// ItemRecord is one purchased line extracted from a receipt.
type ItemRecord struct {
	ItemCode      string          `json:"item_code,omitempty"`
	ItemName      string          `json:"item_name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Store         constants.Store `json:"store"`
	ReceiptDate   *time.Time      `json:"receipt_date,omitempty"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
	SourcePath    string          `json:"source_path,omitempty"`
}

// NewItemRecord derives the unit price from total and quantity. Quantities
// below one are treated as one.
func NewItemRecord(store constants.Store, code, name string, quantity int, total decimal.Decimal) ItemRecord {
	if quantity < 1 {
		quantity = 1
	}
	total = total.Round(2)
	return ItemRecord{
		ItemCode:   code,
		ItemName:   name,
		Quantity:   quantity,
		UnitPrice:  total.Div(decimal.NewFromInt(int64(quantity))),
		TotalPrice: total,
		Store:      store,
	}
}

// DateString formats the receipt date as YYYY-MM-DD, or "" when absent.
func (r ItemRecord) DateString() string {
	if r.ReceiptDate == nil {
		return ""
	}
	return r.ReceiptDate.Format(time.DateOnly)
}

// PriceHint is advisory product data obtained for an item code.
type PriceHint struct {
	Name      string
	UnitPrice decimal.NullDecimal
}

// HasPrice reports whether the hint carries a usable positive price.
func (h PriceHint) HasPrice() bool {
	return h.UnitPrice.Valid && h.UnitPrice.Decimal.IsPositive()
}

// Empty reports whether the hint carries nothing usable.
func (h PriceHint) Empty() bool {
	return h.Name == "" && !h.HasPrice()
}

// ItemGroup is the collator's aggregation unit.
type ItemGroup struct {
	Key            string
	Name           string
	OriginalName   string
	Codes          []string
	Store          constants.Store
	TotalCost      decimal.Decimal
	RawQuantity    int
	FirstDate      *time.Time
	ReferencePrice decimal.NullDecimal
}

// CostPerUnit is total / raw quantity, or the total when raw quantity is zero.
func (g *ItemGroup) CostPerUnit() decimal.Decimal {
	if g.RawQuantity == 0 {
		return g.TotalCost
	}
	return g.TotalCost.Div(decimal.NewFromInt(int64(g.RawQuantity)))
}

// CollatedRow is one line of the collated output.
type CollatedRow struct {
	Item      string
	Quantity  int
	TotalCost decimal.Decimal
}
