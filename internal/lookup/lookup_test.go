package lookup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// countingSource answers from a fixed table and records every call.
type countingSource struct {
	mu      sync.Mutex
	answers map[string]entity.PriceHint
	failing map[string]bool
	calls   []string
	times   []time.Time
}

func (s *countingSource) Fetch(_ context.Context, code string) (entity.PriceHint, constants.LookupStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, code)
	s.times = append(s.times, time.Now())
	if s.failing[code] {
		return entity.PriceHint{}, constants.LookupStatusFailed
	}
	if h, ok := s.answers[code]; ok {
		return h, constants.LookupStatusFound
	}
	return entity.PriceHint{}, constants.LookupStatusNotFound
}

// memStore is an in-memory HintStore.
type memStore struct {
	rows map[string]entity.HintRecord
}

func newMemStore() *memStore { return &memStore{rows: make(map[string]entity.HintRecord)} }

func (m *memStore) GetHint(_ context.Context, code string) (*entity.HintRecord, error) {
	r, ok := m.rows[code]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) PutHint(_ context.Context, rec entity.HintRecord) error {
	m.rows[rec.Code] = rec
	return nil
}

func named(name string) entity.PriceHint { return entity.PriceHint{Name: name} }

func TestLookupContract(t *testing.T) {
	src := &countingSource{
		answers: map[string]entity.PriceHint{"1": named("Milk")},
		failing: map[string]bool{"2": true},
	}
	l := New(src)
	ctx := context.Background()

	h, ok := l.Lookup(ctx, "1")
	assert.True(t, ok)
	assert.Equal(t, "Milk", h.Name)

	_, ok = l.Lookup(ctx, "2")
	assert.False(t, ok)
	_, ok = l.Lookup(ctx, "3")
	assert.False(t, ok)
	_, ok = l.Lookup(ctx, "")
	assert.False(t, ok)
	assert.Equal(t, []string{"1", "2", "3"}, src.calls)

	var nilLookup *Lookup
	_, ok = nilLookup.Lookup(ctx, "1")
	assert.False(t, ok)
}

func TestChain(t *testing.T) {
	first := &countingSource{answers: map[string]entity.PriceHint{"1": named("From hints")}}
	second := &countingSource{
		answers: map[string]entity.PriceHint{"1": named("From web"), "2": named("Web only")},
		failing: map[string]bool{"3": true},
	}
	chain := Chain(first, nil, second)
	ctx := context.Background()

	h, st := chain.Fetch(ctx, "1")
	assert.Equal(t, constants.LookupStatusFound, st)
	assert.Equal(t, "From hints", h.Name)
	assert.Empty(t, second.calls)

	h, st = chain.Fetch(ctx, "2")
	assert.Equal(t, constants.LookupStatusFound, st)
	assert.Equal(t, "Web only", h.Name)

	_, st = chain.Fetch(ctx, "3")
	assert.Equal(t, constants.LookupStatusFailed, st)

	_, st = chain.Fetch(ctx, "4")
	assert.Equal(t, constants.LookupStatusNotFound, st)
}

func TestCachedReusesOutcomesWithinTTL(t *testing.T) {
	src := &countingSource{
		answers: map[string]entity.PriceHint{"1": {Name: "Milk", UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("3.49"))}},
		failing: map[string]bool{"9": true},
	}
	store := newMemStore()
	c := NewCached(store, src, "test", time.Hour, nil)
	now := time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		h, st := c.Fetch(ctx, "1")
		require.Equal(t, constants.LookupStatusFound, st)
		assert.Equal(t, "Milk", h.Name)
		assert.Equal(t, "3.49", h.UnitPrice.Decimal.StringFixed(2))

		_, st = c.Fetch(ctx, "2")
		assert.Equal(t, constants.LookupStatusNotFound, st)
	}
	assert.Equal(t, []string{"1", "2"}, src.calls, "found and not-found answers are cached")
	assert.Equal(t, "test", store.rows["1"].Source)

	// failures are never stored
	c.Fetch(ctx, "9")
	c.Fetch(ctx, "9")
	assert.Equal(t, []string{"1", "2", "9", "9"}, src.calls)
	_, stored := store.rows["9"]
	assert.False(t, stored)

	// expiry sends the next call back to the source
	now = now.Add(2 * time.Hour)
	c.Fetch(ctx, "1")
	assert.Equal(t, []string{"1", "2", "9", "9", "1"}, src.calls)
}

func TestThrottledSpacesCalls(t *testing.T) {
	src := &countingSource{}
	const delay = 60 * time.Millisecond
	th := NewThrottled(src, delay, nil)
	ctx := context.Background()

	for _, code := range []string{"1", "2", "3"} {
		th.Fetch(ctx, code)
	}
	require.Len(t, src.times, 3)
	for i := 1; i < len(src.times); i++ {
		// allow for timer granularity
		assert.GreaterOrEqual(t, src.times[i].Sub(src.times[i-1]), delay-5*time.Millisecond)
	}
}

// slowSource takes a fixed time per call and records when each call ran.
type slowSource struct {
	took   time.Duration
	starts []time.Time
	ends   []time.Time
}

func (s *slowSource) Fetch(_ context.Context, _ string) (entity.PriceHint, constants.LookupStatus) {
	s.starts = append(s.starts, time.Now())
	time.Sleep(s.took)
	s.ends = append(s.ends, time.Now())
	return entity.PriceHint{}, constants.LookupStatusNotFound
}

func TestThrottledPausesAfterSlowCall(t *testing.T) {
	const delay = 60 * time.Millisecond
	src := &slowSource{took: 2 * delay}
	th := NewThrottled(src, delay, nil)
	ctx := context.Background()

	for _, code := range []string{"1", "2", "3"} {
		th.Fetch(ctx, code)
	}
	require.Len(t, src.starts, 3)
	for i := 1; i < len(src.starts); i++ {
		assert.GreaterOrEqual(t, src.starts[i].Sub(src.ends[i-1]), delay-5*time.Millisecond)
	}
}

func TestThrottledCancelled(t *testing.T) {
	src := &countingSource{}
	th := NewThrottled(src, time.Hour, nil)

	th.Fetch(context.Background(), "1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, st := th.Fetch(ctx, "2")
	assert.Equal(t, constants.LookupStatusFailed, st)
	assert.Equal(t, []string{"1"}, src.calls)
}

func TestCacheHitsSkipThrottle(t *testing.T) {
	src := &countingSource{answers: map[string]entity.PriceHint{"1": named("Milk")}}
	store := newMemStore()
	c := NewCached(store, NewThrottled(src, time.Hour, nil), "http", time.Hour, nil)
	ctx := context.Background()

	c.Fetch(ctx, "1")
	start := time.Now()
	h, st := c.Fetch(ctx, "1")
	assert.Equal(t, constants.LookupStatusFound, st)
	assert.Equal(t, "Milk", h.Name)
	assert.Less(t, time.Since(start), time.Second)
}
