package receipt

import "github.com/joseph-ayodele/receipts-collator/constants"

// nonItemVocabulary marks receipt boilerplate: totals, tenders, labels.
var nonItemVocabulary = []string{
	"AMOUNT", "TOTAL", "SUBTOTAL", "TAX", "BALANCE", "DUE",
	"CASH", "CARD", "CREDIT", "DEBIT", "PAYMENT", "PAID", "CHANGE", "REFUND",
	"DISCOUNT", "COUPON", "REWARD",
	"RECEIPT", "INVOICE", "DATE", "TIME", "STORE", "WAREHOUSE", "MEMBERSHIP",
	"THANK", "YOU", "VISIT", "AGAIN",
	"ITEM", "DESCRIPTION", "QTY", "QUANTITY", "PRICE",
	"VISA", "MASTERCARD", "AMEX", "DISCOVER", "CHECK", "GIFT", "REMAINING",
	"APPROVED", "PURCHASE", "CHIP", "READ", "INSTANT", "SAVINGS",
}

// online-order boilerplate seen on Sam's Club receipts
var samsClubVocabulary = []string{
	"SHIPPING", "SALES", "ORDER", "AUTHORIZATION", "PENDING", "CHARGE",
	"FUNDS", "AVAILABLE", "CREDIT CARDS",
}

// VocabularyFor returns the non-item vocabulary extension for a store.
func VocabularyFor(s constants.Store) []string {
	if s == constants.SamsClub {
		return samsClubVocabulary
	}
	return nil
}

var (
	costcoLineSkip = []string{
		"SUBTOTAL", "TOTAL", "TAX", "AMOUNT:", "CASH", "CHANGE", "APPROVED",
		"PURCHASE", "CHIP", "READ", "MEMBER", "ORDERS", "PURCHASES",
	}
	samsClubLineSkip = []string{
		"SUBTOTAL", "TOTAL", "TAX", "AMOUNT:", "CASH", "CHANGE", "APPROVED",
		"PURCHASE", "SHIPPING", "SALES", "ORDER", "CREDIT CARDS",
	}
)

var (
	costcoHeaderWords   = []string{"COSTCO", "WAREHOUSE", "MEMBER", "ORDERS", "PURCHASES"}
	samsClubHeaderWords = []string{"SAM'S", "SAM’S", "SAMS", "CLUB", "MEMBERSHIP", "SHIPPING ITEMS", "ORDER"}
	urlMarkers          = []string{"HTTP", "WWW"}
)

// stop tokens for multi-line name stitching
var (
	costcoFragmentStop   = []string{"TOTAL", "SUBTOTAL", "TAX", "CASH", "MEMBER"}
	samsContinuationStop = []string{"TOTAL", "SUBTOTAL", "TAX", "CASH", "SHIPPING"}
)

var roadwayTokens = []string{"BLVD", "ST", "AVE", "RD"}
