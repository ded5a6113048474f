package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

var (
	// E 782796 ***KSWTR40PK 11.97 Y
	reCostcoFull = regexp.MustCompile(`^E\s+(\d+)\s+(.+?)\s+(\d+\.\d{2})\s*([YN]?)$`)
	// E 782796 11.97 Y
	reCostcoCodeOnly = regexp.MustCompile(`^E\s+(\d+)\s+(\d+\.\d{2})\s*([YN]?)$`)
	reQtyPrefix      = regexp.MustCompile(`(?i)^(\d+)\s*x\s+`)
)

type costcoParser struct {
	classifier *Classifier
	skip       *tokenSet
}

func newCostcoParser(c *Classifier) *costcoParser {
	return &costcoParser{
		classifier: c,
		skip:       newTokenSet(true, costcoLineSkip...),
	}
}

func (p *costcoParser) Store() constants.Store { return constants.Costco }

func (p *costcoParser) ParseLine(ctx LineContext) (entity.ItemRecord, bool) {
	line := ctx.Line()
	if line == "" || IsDiscount(line) {
		return entity.ItemRecord{}, false
	}
	if p.skip.containsAny(strings.ToUpper(line)) {
		return entity.ItemRecord{}, false
	}

	if m := reCostcoCodeOnly.FindStringSubmatch(line); m != nil {
		price, ok := parsePrice(m[2])
		if !ok {
			return entity.ItemRecord{}, false
		}
		return entity.NewItemRecord(constants.Costco, m[1], "", 1, price), true
	}

	m := reCostcoFull.FindStringSubmatch(line)
	if m == nil {
		return entity.ItemRecord{}, false
	}
	price, ok := parsePrice(m[3])
	if !ok {
		return entity.ItemRecord{}, false
	}
	name := strings.TrimSpace(m[2])
	qty := 1
	if q := reQtyPrefix.FindStringSubmatch(name); q != nil {
		if n, err := strconv.Atoi(q[1]); err == nil && n > 0 {
			qty = n
			name = strings.TrimSpace(name[len(q[0]):])
		}
	}
	name = CollapseSpaces(name)
	if !p.classifier.ValidItemName(name) {
		return entity.ItemRecord{}, false
	}
	return entity.NewItemRecord(constants.Costco, m[1], name, qty, price), true
}

// isCostcoFragment reports whether a neighbouring line can supply part of a
// code-only item's name.
func isCostcoFragment(line string, stop *tokenSet) bool {
	if line == "" || strings.HasPrefix(line, "E ") || rePriceLead.MatchString(line) || IsDiscount(line) {
		return false
	}
	return !stop.containsAny(strings.ToUpper(line))
}

var rePriceLead = regexp.MustCompile(`^\d+\.\d{2}`)
