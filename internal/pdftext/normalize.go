package pdftext

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reBoxNoise   = regexp.MustCompile(`^[_\-=]{3,}$`)
)

// Normalize cleans raw extractor output and splits it into pages of
// non-blank, trimmed lines. Pages are separated by form feeds.
func Normalize(s string) [][]string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = strings.TrimRight(s, "\f\n ")
	if s == "" {
		return nil
	}

	var pages [][]string
	for _, page := range strings.Split(s, "\f") {
		var lines []string
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(reMultiSpace.ReplaceAllString(line, " "))
			if line == "" || reBoxNoise.MatchString(line) {
				continue
			}
			lines = append(lines, line)
		}
		pages = append(pages, lines)
	}
	return pages
}
