package lookup

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// names this short are search chrome, not products
const minNameLen = 4

var (
	rePagePrice   = regexp.MustCompile(`\$\s?(\d{1,5}(?:,\d{3})*\.\d{2})`)
	reMetaPrice   = regexp.MustCompile(`(\d+(?:\.\d{2})?)`)
	reTitlePrefix = regexp.MustCompile(`(?i)^.*?costco\s*[-|]?\s*`)
	reTitleSuffix = regexp.MustCompile(`(?i)\s*[-|]\s*(costco|shop).*$`)
	maxPagePrice  = decimal.NewFromInt(10000)
)

// pageFacts is what one pass over the document collects.
type pageFacts struct {
	ogTitle   string
	h1        string
	title     string
	metaPrice string
	text      strings.Builder
}

// ParseProductPage pulls a product name and unit price out of a retailer
// page. Name: og:title, then the first <h1>, then <title> without the
// retailer's branding. Price: a price meta tag, then the first "$d.dd" in the
// visible text. Either may be missing.
func ParseProductPage(raw []byte) entity.PriceHint {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return entity.PriceHint{}
	}
	var f pageFacts
	walk(doc, &f, false)

	var hint entity.PriceHint
	for _, candidate := range []string{f.ogTitle, f.h1, cleanTitle(f.title)} {
		if name := strings.Join(strings.Fields(candidate), " "); len(name) >= minNameLen {
			hint.Name = name
			break
		}
	}

	if p, ok := parseMetaPrice(f.metaPrice); ok {
		hint.UnitPrice = decimal.NewNullDecimal(p)
	} else if m := rePagePrice.FindStringSubmatch(f.text.String()); m != nil {
		if p, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "")); err == nil && validPagePrice(p) {
			hint.UnitPrice = decimal.NewNullDecimal(p)
		}
	}
	return hint
}

func walk(n *html.Node, f *pageFacts, hidden bool) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			hidden = true
		case "meta":
			prop := strings.ToLower(attr(n, "property"))
			if prop == "" {
				prop = strings.ToLower(attr(n, "name"))
			}
			switch {
			case prop == "og:title" && f.ogTitle == "":
				f.ogTitle = attr(n, "content")
			case strings.Contains(prop, "price") && !strings.Contains(prop, "currency") && f.metaPrice == "":
				f.metaPrice = attr(n, "content")
			}
		case "h1":
			if f.h1 == "" {
				f.h1 = textOf(n)
			}
		case "title":
			if f.title == "" {
				f.title = textOf(n)
			}
		}
	case html.TextNode:
		if !hidden {
			f.text.WriteString(n.Data)
			f.text.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, f, hidden)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.TrimSpace(b.String())
}

func cleanTitle(t string) string {
	t = reTitleSuffix.ReplaceAllString(t, "")
	t = reTitlePrefix.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

func parseMetaPrice(v string) (decimal.Decimal, bool) {
	m := reMetaPrice.FindString(v)
	if m == "" {
		return decimal.Decimal{}, false
	}
	p, err := decimal.NewFromString(m)
	if err != nil || !validPagePrice(p) {
		return decimal.Decimal{}, false
	}
	return p, true
}

func validPagePrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(maxPagePrice)
}
