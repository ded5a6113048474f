package collate

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultMedianThreshold is the cost-per-unit multiple of the batch median
// above which a group is assumed to hide several units.
const DefaultMedianThreshold = 1.5

// QuantityPolicy names the rule that produced a resolved quantity.
type QuantityPolicy string

const (
	PolicyReferencePrice QuantityPolicy = "reference_price"
	PolicyPackSize       QuantityPolicy = "pack_size"
	PolicyMedian         QuantityPolicy = "median"
	PolicyRaw            QuantityPolicy = "raw"
)

// ResolveInput is what the resolver knows about one final group.
type ResolveInput struct {
	Total          decimal.Decimal
	RawQuantity    int
	PackSize       int
	ReferencePrice decimal.NullDecimal
}

// Resolver estimates how many units a group stands for. The estimate is a
// heuristic: a pack size beats the median rule, a reference price beats both.
type Resolver struct {
	threshold decimal.Decimal
}

func NewResolver(threshold float64) Resolver {
	if threshold <= 0 {
		threshold = DefaultMedianThreshold
	}
	return Resolver{threshold: decimal.NewFromFloat(threshold)}
}

// Resolve returns the quantity (always >= 1) and the policy that decided it.
// median is the batch median cost-per-unit; zero disables the median rule.
func (r Resolver) Resolve(in ResolveInput, median decimal.Decimal) (int, QuantityPolicy) {
	if in.ReferencePrice.Valid && in.ReferencePrice.Decimal.IsPositive() {
		return atLeastOne(roundHalfEven(in.Total.Div(in.ReferencePrice.Decimal))), PolicyReferencePrice
	}
	if in.PackSize > 0 {
		return atLeastOne(in.RawQuantity * in.PackSize), PolicyPackSize
	}

	cpu := costPerUnit(in.Total, in.RawQuantity)
	if median.IsPositive() && cpu.GreaterThan(r.threshold.Mul(median)) {
		return atLeastOne(max(in.RawQuantity, roundHalfEven(in.Total.Div(median)))), PolicyMedian
	}
	return atLeastOne(in.RawQuantity), PolicyRaw
}

// Median is the median of values; the mean of the two middle values for an
// even count, zero for none.
func Median(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

func costPerUnit(total decimal.Decimal, raw int) decimal.Decimal {
	if raw <= 0 {
		return total
	}
	return total.Div(decimal.NewFromInt(int64(raw)))
}

func roundHalfEven(d decimal.Decimal) int {
	return int(d.RoundBank(0).IntPart())
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
