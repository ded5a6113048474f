package receipt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// LineContext is the parser's view of one receipt: every line plus the
// position of the line under consideration.
type LineContext struct {
	Lines []string
	Index int
}

// Line returns the current line trimmed.
func (c LineContext) Line() string {
	if c.Index < 0 || c.Index >= len(c.Lines) {
		return ""
	}
	return strings.TrimSpace(c.Lines[c.Index])
}

// At returns the trimmed line at offset from the current one and whether it exists.
func (c LineContext) At(offset int) (string, bool) {
	i := c.Index + offset
	if i < 0 || i >= len(c.Lines) {
		return "", false
	}
	return strings.TrimSpace(c.Lines[i]), true
}

// LineParser turns one candidate line into an item record. A record with an
// empty name means the line carried a code and price only and the caller must
// recover the name from surrounding lines.
type LineParser interface {
	Store() constants.Store
	ParseLine(ctx LineContext) (entity.ItemRecord, bool)
}

// NewLineParser selects the parser for a store's receipt format.
func NewLineParser(store constants.Store, classifier *Classifier) (LineParser, error) {
	if classifier == nil {
		classifier = NewClassifier(VocabularyFor(store)...)
	}
	switch store {
	case constants.Costco:
		return newCostcoParser(classifier), nil
	case constants.SamsClub:
		return newSamsClubParser(classifier), nil
	default:
		return nil, fmt.Errorf("no line parser for store %q", store)
	}
}

// parsePrice accepts a two-decimal amount; anything else or a non-positive
// value is not a price.
func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}
