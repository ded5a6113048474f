package collate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
	"github.com/joseph-ayodele/receipts-collator/internal/receipt"
)

// PriceLookup resolves an item code to advisory product data. It never fails:
// a miss and a failure both come back as ok == false.
type PriceLookup interface {
	Lookup(ctx context.Context, code string) (entity.PriceHint, bool)
}

// Collator merges item records into per-product rows.
type Collator struct {
	store      constants.Store
	normalizer receipt.Normalizer
	resolver   Resolver
	lookup     PriceLookup
	maxEdits   int
	logger     *slog.Logger
}

type Option func(*Collator)

// WithLookup enables enrichment of code-keyed groups.
func WithLookup(l PriceLookup) Option {
	return func(c *Collator) { c.lookup = l }
}

func WithThreshold(threshold float64) Option {
	return func(c *Collator) { c.resolver = NewResolver(threshold) }
}

// WithNearDuplicateDistance sets the edit distance under which two final
// names are reported as possible duplicates. Zero disables the report.
func WithNearDuplicateDistance(n int) Option {
	return func(c *Collator) { c.maxEdits = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Collator) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(store constants.Store, opts ...Option) *Collator {
	c := &Collator{
		store:      store,
		normalizer: receipt.NewNormalizer(store),
		resolver:   NewResolver(DefaultMedianThreshold),
		maxEdits:   defaultNearDuplicateDistance,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LookupStats counts enrichment outcomes.
type LookupStats struct {
	Attempted int
	Found     int
	Missed    int
}

// Result is a finished collation.
type Result struct {
	Store          constants.Store
	Rows           []entity.CollatedRow
	Groups         []*entity.ItemGroup
	Policies       map[QuantityPolicy]int
	Median         decimal.Decimal
	Lookups        LookupStats
	NearDuplicates []NearDuplicate
}

// TotalCost sums the emitted rows.
func (r *Result) TotalCost() decimal.Decimal {
	sum := decimal.Zero
	for _, row := range r.Rows {
		sum = sum.Add(row.TotalCost)
	}
	return sum
}

// TotalQuantity sums the resolved quantities.
func (r *Result) TotalQuantity() int {
	n := 0
	for _, row := range r.Rows {
		n += row.Quantity
	}
	return n
}

// groupSet is an insertion-ordered keyed fold.
type groupSet struct {
	keys   []string
	groups map[string]*entity.ItemGroup
}

func newGroupSet() *groupSet {
	return &groupSet{groups: make(map[string]*entity.ItemGroup)}
}

func (s *groupSet) get(key string) (*entity.ItemGroup, bool) {
	g, ok := s.groups[key]
	return g, ok
}

func (s *groupSet) add(g *entity.ItemGroup) {
	s.keys = append(s.keys, g.Key)
	s.groups[g.Key] = g
}

func (s *groupSet) ordered() []*entity.ItemGroup {
	out := make([]*entity.ItemGroup, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.groups[k])
	}
	return out
}

// Collate groups records by code, optionally enriches the code groups,
// regroups by normalized name and resolves quantities. Rows come back sorted
// by total cost descending, ties by item name. It only fails when ctx is
// cancelled during enrichment.
func (c *Collator) Collate(ctx context.Context, records []entity.ItemRecord) (*Result, error) {
	start := time.Now()
	logger := c.logger.With("store", string(c.store))

	byCode := c.groupByCode(records)
	stats, err := c.enrich(ctx, byCode, logger)
	if err != nil {
		return nil, err
	}
	byName := c.groupByName(byCode)

	cpus := make([]decimal.Decimal, 0, len(byName))
	for _, g := range byName {
		cpus = append(cpus, g.CostPerUnit())
	}
	median := Median(cpus)

	res := &Result{
		Store:    c.store,
		Groups:   byName,
		Policies: make(map[QuantityPolicy]int),
		Median:   median,
		Lookups:  stats,
	}
	for _, g := range byName {
		packSize := 0
		if c.store.HasPackSizes() {
			packSize = receipt.PackSize(g.OriginalName)
		}
		qty, policy := c.resolver.Resolve(ResolveInput{
			Total:          g.TotalCost,
			RawQuantity:    g.RawQuantity,
			PackSize:       packSize,
			ReferencePrice: g.ReferencePrice,
		}, median)
		res.Policies[policy]++
		res.Rows = append(res.Rows, entity.CollatedRow{
			Item:      g.Name,
			Quantity:  qty,
			TotalCost: g.TotalCost,
		})
	}
	sort.SliceStable(res.Rows, func(i, j int) bool {
		a, b := res.Rows[i], res.Rows[j]
		if !a.TotalCost.Equal(b.TotalCost) {
			return a.TotalCost.GreaterThan(b.TotalCost)
		}
		return a.Item < b.Item
	})

	res.NearDuplicates = FindNearDuplicates(byName, c.maxEdits)
	for _, d := range res.NearDuplicates {
		logger.Warn("collate.near_duplicate", "a", d.A, "b", d.B, "distance", d.Distance)
	}

	logger.Info("collate.ok",
		"records", len(records),
		"code_groups", len(byCode),
		"rows", len(res.Rows),
		"median_cpu", median.StringFixed(2),
		"lookups", stats.Attempted,
		"lookups_found", stats.Found,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// groupByCode is the first pass: records with a code group by code, the rest
// by normalized name. The first record seen names and dates the group.
func (c *Collator) groupByCode(records []entity.ItemRecord) []*entity.ItemGroup {
	set := newGroupSet()
	for _, r := range records {
		key := "name:" + c.normalizer.Normalize(r.ItemName)
		if r.ItemCode != "" {
			key = "code:" + r.ItemCode
		}
		g, ok := set.get(key)
		if !ok {
			g = &entity.ItemGroup{
				Key:          key,
				Name:         r.ItemName,
				OriginalName: r.ItemName,
				Store:        c.store,
				TotalCost:    decimal.Zero,
				FirstDate:    r.ReceiptDate,
			}
			if r.ItemCode != "" {
				g.Codes = []string{r.ItemCode}
			}
			set.add(g)
		}
		g.TotalCost = g.TotalCost.Add(r.TotalPrice)
		g.RawQuantity += r.Quantity
		if g.FirstDate == nil {
			g.FirstDate = r.ReceiptDate
		}
	}
	return set.ordered()
}

// enrich looks up each code group once, in order. Lookups are sequential;
// pacing is the lookup's concern.
func (c *Collator) enrich(ctx context.Context, groups []*entity.ItemGroup, logger *slog.Logger) (LookupStats, error) {
	var stats LookupStats
	if c.lookup == nil {
		return stats, nil
	}
	for _, g := range groups {
		if len(g.Codes) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		code := g.Codes[0]
		stats.Attempted++
		hint, ok := c.lookup.Lookup(ctx, code)
		if !ok || hint.Empty() {
			stats.Missed++
			logger.Debug("collate.lookup.miss", "code", code, "name", g.Name)
			continue
		}
		stats.Found++
		if hint.Name != "" {
			g.Name = hint.Name
		}
		if hint.HasPrice() {
			g.ReferencePrice = hint.UnitPrice
		}
		logger.Debug("collate.lookup.hit", "code", code, "name", g.Name, "has_price", hint.HasPrice())
	}
	return stats, nil
}

// groupByName is the second pass over the (possibly renamed) first-pass
// groups. The first reference price present wins.
func (c *Collator) groupByName(groups []*entity.ItemGroup) []*entity.ItemGroup {
	set := newGroupSet()
	for _, in := range groups {
		key := c.normalizer.Normalize(in.Name)
		g, ok := set.get(key)
		if !ok {
			g = &entity.ItemGroup{
				Key:            key,
				Name:           in.Name,
				OriginalName:   in.OriginalName,
				Store:          c.store,
				TotalCost:      decimal.Zero,
				FirstDate:      in.FirstDate,
				ReferencePrice: in.ReferencePrice,
			}
			set.add(g)
		}
		g.TotalCost = g.TotalCost.Add(in.TotalCost)
		g.RawQuantity += in.RawQuantity
		g.Codes = append(g.Codes, in.Codes...)
		if g.FirstDate == nil {
			g.FirstDate = in.FirstDate
		}
		if !g.ReferencePrice.Valid && in.ReferencePrice.Valid {
			g.ReferencePrice = in.ReferencePrice
		}
	}
	return set.ordered()
}
