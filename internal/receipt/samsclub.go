package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

var (
	reQtyPrice      = regexp.MustCompile(`(?i)Qty\s+(\d+)\s+\$(\d+\.\d{2})\s*$`)
	reTrailingPrice = regexp.MustCompile(`\$(\d+\.\d{2})\s*$`)
	reEmbeddedQty   = regexp.MustCompile(`(?i)\s*Qty\s+(\d+)\s*`)
	reAddressLead   = regexp.MustCompile(`^\d+\s+[A-Z]`)
	reQtyDollar     = regexp.MustCompile(`(?i)Qty\s+\d+\s+\$`)
	reAnyPrice      = regexp.MustCompile(`\$\d+\.\d{2}`)
)

// maximum length of a line appended as a name continuation
const continuationMaxLen = 50

type samsClubParser struct {
	classifier *Classifier
	skip       *tokenSet
	roadway    *tokenSet
}

func newSamsClubParser(c *Classifier) *samsClubParser {
	return &samsClubParser{
		classifier: c,
		skip:       newTokenSet(true, samsClubLineSkip...),
		roadway:    newTokenSet(true, roadwayTokens...),
	}
}

func (p *samsClubParser) Store() constants.Store { return constants.SamsClub }

func (p *samsClubParser) ParseLine(ctx LineContext) (entity.ItemRecord, bool) {
	line := ctx.Line()
	if line == "" || IsDiscount(line) {
		return entity.ItemRecord{}, false
	}
	upper := strings.ToUpper(line)
	if p.skip.containsAny(upper) || p.isAddress(line, upper) {
		return entity.ItemRecord{}, false
	}

	var (
		name  string
		qty   = 1
		price string
	)
	if loc := reQtyPrice.FindStringSubmatchIndex(line); loc != nil {
		name = line[:loc[0]]
		n, err := strconv.Atoi(line[loc[2]:loc[3]])
		if err != nil {
			return entity.ItemRecord{}, false
		}
		qty = n
		price = line[loc[4]:loc[5]]
	} else if loc := reTrailingPrice.FindStringSubmatchIndex(line); loc != nil {
		name = line[:loc[0]]
		price = line[loc[2]:loc[3]]
		if q := reEmbeddedQty.FindStringSubmatch(name); q != nil {
			if n, err := strconv.Atoi(q[1]); err == nil {
				qty = n
			}
			name = reEmbeddedQty.ReplaceAllString(name, " ")
		}
	} else {
		return entity.ItemRecord{}, false
	}

	total, ok := parsePrice(price)
	if !ok {
		return entity.ItemRecord{}, false
	}
	name = CollapseSpaces(name)
	if !p.classifier.ValidItemName(name) {
		return entity.ItemRecord{}, false
	}
	return entity.NewItemRecord(constants.SamsClub, "", name, qty, total), true
}

// street addresses: house number, capitalized word, roadway type
func (p *samsClubParser) isAddress(line, upper string) bool {
	return reAddressLead.MatchString(line) && p.roadway.containsAny(upper)
}

// isSamsContinuation reports whether next looks like the tail of the previous
// item's name rather than a new line item.
func isSamsContinuation(next string, stop *tokenSet) bool {
	if next == "" || len(next) >= continuationMaxLen {
		return false
	}
	if reQtyDollar.MatchString(next) || reAnyPrice.MatchString(next) {
		return false
	}
	return !stop.containsAny(strings.ToUpper(next))
}
