package transactions

import (
	"regexp"
	"strings"
)

var (
	reQtyPrefix  = regexp.MustCompile(`(?i)^\d+\s*x\s*`)
	reRegular    = regexp.MustCompile(`(?i)\s*\(Regular\)\s*`)
	reDashSuffix = regexp.MustCompile(`\s*-\s*.*$`)
	reItemStart  = regexp.MustCompile(`^(\d+\s*x|[A-Z])`)
)

// startsItem reports whether a comma-separated part opens a new item: a
// lowercase-x quantity prefix ("2 x") or an ASCII capital letter.
func startsItem(part string) bool {
	return reItemStart.MatchString(part)
}

// ExtractItems splits a POS description such as "2 x Latte, Croissant" into
// item names. Commas followed by lowercase text stay inside the item. When
// nothing usable remains the whole description is the single item.
func ExtractItems(description string) []string {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return nil
	}

	var parts []string
	for i, p := range strings.Split(desc, ",") {
		trimmed := strings.TrimSpace(p)
		if i > 0 && !startsItem(trimmed) {
			parts[len(parts)-1] += "," + p
			continue
		}
		parts = append(parts, p)
	}

	var items []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = reQtyPrefix.ReplaceAllString(p, "")
		p = reRegular.ReplaceAllString(p, "")
		p = reDashSuffix.ReplaceAllString(p, "")
		p = strings.TrimSpace(p)
		if len(p) > 2 {
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return []string{desc}
	}
	return items
}
