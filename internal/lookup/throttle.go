package lookup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// Throttled serializes calls to the wrapped source and waits at least delay
// between the end of one call and the start of the next. The first call goes
// through immediately.
type Throttled struct {
	src    Source
	limit  rate.Limit
	logger *slog.Logger

	mu      sync.Mutex
	limiter *rate.Limiter
}

func NewThrottled(src Source, delay time.Duration, logger *slog.Logger) *Throttled {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Throttled{src: src, limit: limit, limiter: rate.NewLimiter(limit, 1), logger: logger}
}

func (t *Throttled) Fetch(ctx context.Context, code string) (entity.PriceHint, constants.LookupStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.limiter.Wait(ctx); err != nil {
		t.logger.Warn("lookup.throttle.wait_error", "code", code, "error", err)
		return entity.PriceHint{}, constants.LookupStatusFailed
	}
	hint, status := t.src.Fetch(ctx, code)

	// the pause runs from the end of this call, however long it took
	t.limiter = rate.NewLimiter(t.limit, 1)
	t.limiter.AllowN(time.Now(), 1)
	return hint, status
}
