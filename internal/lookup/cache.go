package lookup

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// HintStore persists lookup outcomes by item code.
type HintStore interface {
	GetHint(ctx context.Context, code string) (*entity.HintRecord, error)
	PutHint(ctx context.Context, rec entity.HintRecord) error
}

// Cached answers from store while an outcome is fresh and otherwise asks the
// wrapped source, remembering FOUND and NOT_FOUND answers. Store errors are
// logged and treated as a miss.
type Cached struct {
	store  HintStore
	src    Source
	source string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCached wraps src. name is recorded with each stored outcome.
func NewCached(store HintStore, src Source, name string, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{store: store, src: src, source: name, ttl: ttl, now: time.Now, logger: logger}
}

func (c *Cached) Fetch(ctx context.Context, code string) (entity.PriceHint, constants.LookupStatus) {
	rec, err := c.store.GetHint(ctx, code)
	switch {
	case err != nil:
		c.logger.Warn("lookup.cache.get_error", "code", code, "error", err)
	case rec != nil && rec.Status.Cacheable() && rec.Fresh(c.now(), c.ttl):
		c.logger.Debug("lookup.cache.hit", "code", code, "status", string(rec.Status))
		return rec.Hint, rec.Status
	}

	hint, status := c.src.Fetch(ctx, code)
	if !status.Cacheable() {
		return hint, status
	}
	err = c.store.PutHint(ctx, entity.HintRecord{
		Code:      code,
		Hint:      hint,
		Status:    status,
		Source:    c.source,
		FetchedAt: c.now().UTC(),
	})
	if err != nil {
		c.logger.Warn("lookup.cache.put_error", "code", code, "error", err)
	}
	return hint, status
}
