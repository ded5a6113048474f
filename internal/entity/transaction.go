package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one row of a point-of-sale export.
type Transaction struct {
	At             time.Time
	Description    string
	TransactionID  string
	GrossSales     decimal.Decimal
	Discounts      decimal.Decimal
	NetSales       decimal.Decimal
	Fees           decimal.Decimal
	NetTotal       decimal.Decimal
	TotalCollected decimal.Decimal
	Card           decimal.Decimal
	Cash           decimal.Decimal
	Tip            decimal.Decimal
}

// PaymentMethod classifies the transaction by which tender was used.
func (t Transaction) PaymentMethod() string {
	switch {
	case t.Card.IsPositive():
		return "Card"
	case t.Cash.IsPositive():
		return "Cash"
	default:
		return "Other"
	}
}

// Day is the transaction date truncated to midnight.
func (t Transaction) Day() time.Time {
	return time.Date(t.At.Year(), t.At.Month(), t.At.Day(), 0, 0, 0, 0, t.At.Location())
}
