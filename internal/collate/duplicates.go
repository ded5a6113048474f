package collate

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

const (
	defaultNearDuplicateDistance = 2
	// shorter keys produce too many accidental neighbours
	minNearDuplicateLen = 6
)

// NearDuplicate is a pair of final group keys that differ by only a few edits.
// They are reported, never merged.
type NearDuplicate struct {
	A, B     string
	Distance int
}

// FindNearDuplicates compares every pair of group keys and returns those
// within maxEdits of each other, in group order. maxEdits <= 0 returns nil.
func FindNearDuplicates(groups []*entity.ItemGroup, maxEdits int) []NearDuplicate {
	if maxEdits <= 0 {
		return nil
	}
	var out []NearDuplicate
	for i := 0; i < len(groups); i++ {
		a := groups[i].Key
		if len(a) < minNearDuplicateLen {
			continue
		}
		for j := i + 1; j < len(groups); j++ {
			b := groups[j].Key
			if len(b) < minNearDuplicateLen || abs(len(a)-len(b)) > maxEdits {
				continue
			}
			if d := fuzzy.LevenshteinDistance(a, b); d > 0 && d <= maxEdits {
				out = append(out, NearDuplicate{A: a, B: b, Distance: d})
			}
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
