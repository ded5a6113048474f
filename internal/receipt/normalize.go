package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	rePackToken    = regexp.MustCompile(`(?i)\s*\d+\s*(ct|pk|count|pieces?|pack)\b`)
	reQtyArtifact  = regexp.MustCompile(`(?i)\s*Qty\s+\d+\s*\$?\s*$`)
	reCanceledTail = regexp.MustCompile(`(?i)\s*Canceled\s+items?\s*\(\d+\)\s*$`)
)

// packSizePatterns are tried in order; the first that matches wins.
var packSizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*ct\b`),
	regexp.MustCompile(`(?i)(\d+)\s*pk\b`),
	regexp.MustCompile(`(?i)(\d+)\s*count\b`),
	regexp.MustCompile(`(?i)(\d+)\s*pieces?\b`),
	regexp.MustCompile(`(?i)(\d+)\s*pack\b`),
}

// CollapseSpaces folds whitespace runs to one space and trims.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// Normalizer builds the grouping key for item names.
type Normalizer struct {
	stripPacks bool
}

// NewNormalizer returns the normalizer for a store; pack-count and checkout
// artifacts are only stripped for formats that print them.
func NewNormalizer(store constants.Store) Normalizer {
	return Normalizer{stripPacks: store.HasPackSizes()}
}

// Normalize lower-cases, collapses whitespace and, where enabled, removes pack
// tokens and trailing checkout artifacts. It repeats until nothing changes, so
// Normalize(Normalize(x)) == Normalize(x).
func (n Normalizer) Normalize(name string) string {
	s := name
	for {
		next := n.pass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func (n Normalizer) pass(s string) string {
	s = strings.ToLower(s)
	if n.stripPacks {
		s = rePackToken.ReplaceAllString(s, "")
		s = CollapseSpaces(s)
		s = reQtyArtifact.ReplaceAllString(s, "")
		s = reCanceledTail.ReplaceAllString(s, "")
	}
	return CollapseSpaces(s)
}

// PackSize returns the pack count printed in name ("24 ct" -> 24), or 0.
func PackSize(name string) int {
	for _, re := range packSizePatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}
