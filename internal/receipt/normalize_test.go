package receipt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

func TestNormalizePackStripping(t *testing.T) {
	n := NewNormalizer(constants.SamsClub)

	want := n.Normalize("Widget")
	assert.Equal(t, "widget", want)
	assert.Equal(t, want, n.Normalize("Widget 24 ct"))
	assert.Equal(t, want, n.Normalize("Widget   24   CT"))
	assert.Equal(t, want, n.Normalize("  WIDGET 12pk "))

	tests := []struct {
		in   string
		want string
	}{
		{"Paper Towels Qty 2 $", "paper towels"},
		{"Paper Towels Canceled items (1)", "paper towels"},
		{"Paper Towels Canceled item (2)", "paper towels"},
		{"Red Bull Energy Sugar-Free 8.4 fl. oz., 24 pk.", "red bull energy sugar-free 8.4 fl. oz.,."},
		{"Eggs 60 count", "eggs"},
		{"Napkins 6 pack Qty 1", "napkins"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeWithoutPackStripping(t *testing.T) {
	n := NewNormalizer(constants.Costco)

	assert.Equal(t, "kswtr40pk", n.Normalize("KSWTR40PK"))
	assert.Equal(t, "widget deluxe", n.Normalize("  Widget   DELUXE "))
	assert.Equal(t, "widget 24 ct", n.Normalize("Widget 24 ct"))
}

func TestNormalizeIdempotent(t *testing.T) {
	faker := gofakeit.New(42)
	units := []string{"ct", "pk", "count", "pieces", "pack", "PK", "Ct"}

	for _, store := range constants.AllStores() {
		n := NewNormalizer(store)
		for i := 0; i < 200; i++ {
			name := fmt.Sprintf("%s  %s %d %s %s",
				strings.ToUpper(faker.Word()),
				faker.Word(),
				faker.Number(1, 96),
				faker.RandomString(units),
				faker.RandomString([]string{"", "Qty 2 $", "Canceled items (3)", "qty 1", "1 ct"}),
			)
			once := n.Normalize(name)
			assert.Equal(t, once, n.Normalize(once), "store=%s name=%q", store, name)
			assert.Equal(t, strings.ToLower(once), once)
		}
	}
}

func TestPackSize(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Widget 24 ct", 24},
		{"Red Bull 8.4 fl. oz., 24 pk.", 24},
		{"Eggs 60 Count", 60},
		{"Batteries 48 pieces", 48},
		{"Napkins 6 pack", 6},
		{"Water 40pk", 40},
		{"Bananas", 0},
		{"12 pack 30 ct", 30},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PackSize(tt.in))
		})
	}
}
