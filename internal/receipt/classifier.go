package receipt

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// LineKind is the classification of one raw receipt line.
type LineKind int

const (
	Blank LineKind = iota
	Discount
	Structural
	ItemCandidate
)

func (k LineKind) String() string {
	switch k {
	case Blank:
		return "BLANK"
	case Discount:
		return "DISCOUNT"
	case Structural:
		return "STRUCTURAL"
	case ItemCandidate:
		return "ITEM_CANDIDATE"
	default:
		return "UNKNOWN"
	}
}

var (
	reNumericOnly  = regexp.MustCompile(`^[\d\s#,\-*$]+$`)
	reMaskedNumber = regexp.MustCompile(`^[*#$]+\s*\d+\s*[*#$]*$`)
	reTenderLead   = regexp.MustCompile(`^(CASH|CARD|CREDIT|DEBIT|VISA|MASTERCARD)`)
)

// Classifier sorts lines into items and boilerplate using a fixed
// vocabulary, optionally extended per retailer.
type Classifier struct {
	vocabulary []string
}

func NewClassifier(extra ...string) *Classifier {
	vocab := make([]string, 0, len(nonItemVocabulary)+len(extra))
	vocab = append(vocab, nonItemVocabulary...)
	for _, e := range extra {
		if e = strings.ToUpper(strings.TrimSpace(e)); e != "" {
			vocab = append(vocab, e)
		}
	}
	return &Classifier{vocabulary: vocab}
}

// IsDiscount reports the retailer adjustment notation: a slash somewhere and a
// trailing minus.
func IsDiscount(line string) bool {
	t := strings.TrimSpace(line)
	return strings.Contains(t, "/") && strings.HasSuffix(t, "-")
}

func (c *Classifier) Classify(line string) LineKind {
	t := strings.TrimSpace(line)
	if t == "" {
		return Blank
	}
	if IsDiscount(t) {
		return Discount
	}
	if utf8.RuneCountInString(t) < 2 {
		return Structural
	}
	upper := strings.ToUpper(t)
	for _, kw := range c.vocabulary {
		if upper == kw || strings.HasPrefix(upper, kw+":") || strings.HasPrefix(upper, kw+" ") {
			return Structural
		}
	}
	if reNumericOnly.MatchString(t) || reMaskedNumber.MatchString(t) || reTenderLead.MatchString(upper) {
		return Structural
	}
	return ItemCandidate
}

// ValidItemName is the final gate an assembled name passes before emission.
func (c *Classifier) ValidItemName(name string) bool {
	return c.Classify(name) == ItemCandidate
}
