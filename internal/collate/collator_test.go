package collate

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

type fakeLookup struct {
	hints map[string]entity.PriceHint
	calls []string
}

func (f *fakeLookup) Lookup(_ context.Context, code string) (entity.PriceHint, bool) {
	f.calls = append(f.calls, code)
	h, ok := f.hints[code]
	return h, ok
}

func rec(store constants.Store, code, name string, qty int, total string) entity.ItemRecord {
	return entity.NewItemRecord(store, code, name, qty, dec(total))
}

func TestCollateMergesEnrichedNames(t *testing.T) {
	lookup := &fakeLookup{hints: map[string]entity.PriceHint{
		"100": {Name: "Widget Deluxe"},
	}}
	c := New(constants.Costco, WithLookup(lookup), WithNearDuplicateDistance(0))

	res, err := c.Collate(context.Background(), []entity.ItemRecord{
		rec(constants.Costco, "100", "Widget A", 1, "10.00"),
		rec(constants.Costco, "200", "WIDGET  DELUXE", 1, "12.00"),
		rec(constants.Costco, "100", "Widget A", 1, "10.00"),
	})
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Widget Deluxe", res.Rows[0].Item)
	assert.Equal(t, "32.00", res.Rows[0].TotalCost.StringFixed(2))
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "widget deluxe", res.Groups[0].Key)
	assert.Equal(t, []string{"100", "200"}, res.Groups[0].Codes)
	assert.Equal(t, 3, res.Groups[0].RawQuantity)

	assert.Equal(t, []string{"100", "200"}, lookup.calls, "one lookup per distinct code")
	assert.Equal(t, LookupStats{Attempted: 2, Found: 1, Missed: 1}, res.Lookups)
}

func TestCollateReferencePrice(t *testing.T) {
	lookup := &fakeLookup{hints: map[string]entity.PriceHint{
		"300": {UnitPrice: price("4.00")},
	}}
	c := New(constants.Costco, WithLookup(lookup))

	res, err := c.Collate(context.Background(), []entity.ItemRecord{
		rec(constants.Costco, "300", "KS WATER", 1, "12.00"),
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "KS WATER", res.Rows[0].Item)
	assert.Equal(t, 3, res.Rows[0].Quantity)
	assert.Equal(t, 1, res.Policies[PolicyReferencePrice])
}

func TestCollateWithoutLookup(t *testing.T) {
	c := New(constants.Costco)

	d := time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)
	first := rec(constants.Costco, "", "Bananas", 1, "1.49")
	second := rec(constants.Costco, "", "BANANAS", 1, "1.49")
	second.ReceiptDate = &d

	res, err := c.Collate(context.Background(), []entity.ItemRecord{
		first,
		rec(constants.Costco, "10", "Paper Towels", 1, "19.99"),
		second,
		rec(constants.Costco, "11", "Eggs", 2, "9.98"),
	})
	require.NoError(t, err)
	assert.Zero(t, res.Lookups.Attempted)

	require.Len(t, res.Rows, 3)
	assert.Equal(t, "Paper Towels", res.Rows[0].Item)
	assert.Equal(t, "Eggs", res.Rows[1].Item)
	assert.Equal(t, "Bananas", res.Rows[2].Item)
	assert.Equal(t, 2, res.Rows[2].Quantity)
	assert.Equal(t, "2.98", res.Rows[2].TotalCost.StringFixed(2))

	bananas := res.Groups[0]
	require.NotNil(t, bananas.FirstDate)
	assert.True(t, d.Equal(*bananas.FirstDate))

	// cost per unit: 1.49, 19.99, 4.99 -> median 4.99; 19.99 > 1.5*4.99
	assert.Equal(t, "4.99", res.Median.StringFixed(2))
	assert.Equal(t, 4, res.Rows[0].Quantity)
	assert.Equal(t, "32.95", res.TotalCost().StringFixed(2))
	assert.Equal(t, 8, res.TotalQuantity())
}

func TestCollatePackSizes(t *testing.T) {
	c := New(constants.SamsClub)

	res, err := c.Collate(context.Background(), []entity.ItemRecord{
		rec(constants.SamsClub, "", "Widget 24 ct", 1, "34.98"),
		rec(constants.SamsClub, "", "Widget   24   CT Qty 1 $", 1, "34.98"),
		rec(constants.SamsClub, "", "Bananas", 1, "1.48"),
	})
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Widget 24 ct", res.Rows[0].Item)
	assert.Equal(t, 48, res.Rows[0].Quantity)
	assert.True(t, dec("69.96").Equal(res.Rows[0].TotalCost))
	assert.Equal(t, 1, res.Rows[1].Quantity)
}

func TestCollateCostcoIgnoresPackTokens(t *testing.T) {
	c := New(constants.Costco)

	res, err := c.Collate(context.Background(), []entity.ItemRecord{
		rec(constants.Costco, "1", "KS WATER 40PK", 1, "4.99"),
		rec(constants.Costco, "2", "Milk", 1, "4.99"),
	})
	require.NoError(t, err)
	for _, row := range res.Rows {
		assert.Equal(t, 1, row.Quantity)
	}
	assert.Zero(t, res.Policies[PolicyPackSize])
}

func TestCollateSortTiesByName(t *testing.T) {
	c := New(constants.Costco)

	res, err := c.Collate(context.Background(), []entity.ItemRecord{
		rec(constants.Costco, "", "Zucchini", 1, "3.00"),
		rec(constants.Costco, "", "Apples", 1, "3.00"),
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Apples", res.Rows[0].Item)
	assert.Equal(t, "Zucchini", res.Rows[1].Item)
}

func TestCollateCancelledDuringLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(constants.Costco, WithLookup(&fakeLookup{}))
	_, err := c.Collate(ctx, []entity.ItemRecord{rec(constants.Costco, "1", "Milk", 1, "4.99")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollateEmpty(t *testing.T) {
	res, err := New(constants.SamsClub).Collate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.True(t, res.TotalCost().IsZero())
}

func TestFindNearDuplicates(t *testing.T) {
	groups := []*entity.ItemGroup{
		{Key: "paper towels"},
		{Key: "paper towel"},
		{Key: "bananas"},
		{Key: "eggs"},
		{Key: "egg"},
	}

	dups := FindNearDuplicates(groups, 2)
	require.Len(t, dups, 1)
	assert.Equal(t, NearDuplicate{A: "paper towels", B: "paper towel", Distance: 1}, dups[0])
	assert.Nil(t, FindNearDuplicates(groups, 0))
}

func TestCollateRecordsInvariant(t *testing.T) {
	// every row comes back with quantity >= 1 regardless of policy
	c := New(constants.SamsClub, WithThreshold(1.5))
	records := []entity.ItemRecord{
		rec(constants.SamsClub, "", "A thing", 0, "0.01"),
		rec(constants.SamsClub, "", "Another thing 0 ct", 1, "5.00"),
		rec(constants.SamsClub, "", "Big thing", 1, "500.00"),
	}
	res, err := c.Collate(context.Background(), records)
	require.NoError(t, err)
	for _, row := range res.Rows {
		assert.GreaterOrEqual(t, row.Quantity, 1, row.Item)
		assert.True(t, row.TotalCost.GreaterThanOrEqual(decimal.Zero))
	}
}
