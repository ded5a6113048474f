package receipt

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

var (
	reFilenameDate = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2,4})`)
	reTextDate     = regexp.MustCompile(`(\w+)\s+(\d{1,2}),\s+(\d{4})`)
	reDigits       = regexp.MustCompile(`\d+`)
	reLongDigits   = regexp.MustCompile(`\d{8,}`)
)

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// DateFromFilename reads an M.D.YY or M.D.YYYY date from a file's base name.
func DateFromFilename(path string) *time.Time {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := reFilenameDate.FindStringSubmatch(stem)
	if m == nil {
		return nil
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	yearStr := m[3]
	if len(yearStr) == 2 {
		yearStr = "20" + yearStr
	}
	year, _ := strconv.Atoi(yearStr)
	return makeDate(year, time.Month(month), day)
}

// DateFromText finds the first "Month D, YYYY" expression whose word begins
// with an English month abbreviation.
func DateFromText(lines []string) *time.Time {
	for _, line := range lines {
		for _, m := range reTextDate.FindAllStringSubmatch(line, -1) {
			word := strings.ToUpper(m[1])
			if len(word) < 3 {
				continue
			}
			month, ok := monthAbbrev[word[:3]]
			if !ok {
				continue
			}
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			if d := makeDate(year, month, day); d != nil {
				return d
			}
		}
	}
	return nil
}

// makeDate rejects impossible calendar dates instead of normalizing them.
func makeDate(year int, month time.Month, day int) *time.Time {
	if year < 1900 || month < time.January || month > time.December || day < 1 {
		return nil
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != month || d.Day() != day {
		return nil
	}
	return &d
}

var (
	costcoNumberMarkers   = newTokenSet(false, "RECEIPT", "INVOICE")
	samsClubNumberMarkers = newTokenSet(false, "ORDER", "RECEIPT", "INVOICE", "INV#")
)

// ReceiptNumber finds the receipt/order number. Sam's Club prefers runs of 8+
// digits and only falls back to shorter runs when no long one exists.
func ReceiptNumber(store constants.Store, lines []string) string {
	markers := costcoNumberMarkers
	if store == constants.SamsClub {
		markers = samsClubNumberMarkers
		if n := firstOnMarkedLine(lines, markers, reLongDigits); n != "" {
			return n
		}
	}
	return firstOnMarkedLine(lines, markers, reDigits)
}

func firstOnMarkedLine(lines []string, markers *tokenSet, re *regexp.Regexp) string {
	for _, line := range lines {
		if !markers.containsAny(strings.ToUpper(line)) {
			continue
		}
		if n := re.FindString(line); n != "" {
			return n
		}
	}
	return ""
}
