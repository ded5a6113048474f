package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProductPage(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		wantName  string
		wantPrice string
	}{
		{
			name: "og title and meta price",
			page: `<html><head>
				<meta property="og:title" content="Kirkland Signature Bottled Water, 40-count">
				<meta property="product:price:amount" content="4.99">
				<meta property="product:price:currency" content="USD">
				<title>Water | Costco</title></head>
				<body><h1>Something else</h1><p>$9.99</p></body></html>`,
			wantName:  "Kirkland Signature Bottled Water, 40-count",
			wantPrice: "4.99",
		},
		{
			name:      "h1 and first text price",
			page:      `<html><body><h1>  Paper   Towels </h1><div>Was <span>$1,024.50</span></div><div>$3.00</div></body></html>`,
			wantName:  "Paper Towels",
			wantPrice: "1024.50",
		},
		{
			name:     "title with branding removed",
			page:     `<html><head><title>Organic Eggs | Costco</title></head><body></body></html>`,
			wantName: "Organic Eggs",
		},
		{
			name:      "script prices are ignored",
			page:      `<html><head><script>var p = "$99.99";</script></head><body><h1>Rotisserie Chicken</h1><p>$4.99</p></body></html>`,
			wantName:  "Rotisserie Chicken",
			wantPrice: "4.99",
		},
		{
			name:     "short names are rejected",
			page:     `<html><head><title>Costco</title></head><body><h1>Hi</h1></body></html>`,
			wantName: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ParseProductPage([]byte(tt.page))
			assert.Equal(t, tt.wantName, h.Name)
			if tt.wantPrice == "" {
				assert.False(t, h.UnitPrice.Valid)
				return
			}
			assert.True(t, h.HasPrice())
			assert.Equal(t, tt.wantPrice, h.UnitPrice.Decimal.StringFixed(2))
		})
	}
}
