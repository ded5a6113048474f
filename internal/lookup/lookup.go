// Package lookup resolves retailer item codes to advisory product names and
// unit prices. Every backend is best effort: nothing here returns an error to
// the collator, failures surface as "no hint".
package lookup

import (
	"context"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// Source is a lookup backend. Unlike the collator-facing contract it tells a
// definitive miss (NOT_FOUND) apart from a failure (FAILED), so callers can
// decide what is worth remembering.
type Source interface {
	Fetch(ctx context.Context, code string) (entity.PriceHint, constants.LookupStatus)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, code string) (entity.PriceHint, constants.LookupStatus)

func (f SourceFunc) Fetch(ctx context.Context, code string) (entity.PriceHint, constants.LookupStatus) {
	return f(ctx, code)
}

// Lookup exposes a Source through the collator's (hint, ok) contract.
type Lookup struct {
	src Source
}

func New(src Source) *Lookup {
	return &Lookup{src: src}
}

func (l *Lookup) Lookup(ctx context.Context, code string) (entity.PriceHint, bool) {
	if l == nil || l.src == nil || code == "" {
		return entity.PriceHint{}, false
	}
	hint, status := l.src.Fetch(ctx, code)
	if status != constants.LookupStatusFound || hint.Empty() {
		return entity.PriceHint{}, false
	}
	return hint, true
}

// Chain asks each source in turn and returns the first FOUND answer. The
// result is FAILED if any source failed and none found anything.
func Chain(sources ...Source) Source {
	return SourceFunc(func(ctx context.Context, code string) (entity.PriceHint, constants.LookupStatus) {
		status := constants.LookupStatusNotFound
		for _, s := range sources {
			if s == nil {
				continue
			}
			hint, st := s.Fetch(ctx, code)
			if st == constants.LookupStatusFound {
				return hint, st
			}
			if st == constants.LookupStatusFailed {
				status = st
			}
		}
		return entity.PriceHint{}, status
	})
}
