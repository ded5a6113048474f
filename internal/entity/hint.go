package entity

import (
	"time"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

// HintRecord is a stored lookup outcome for one item code.
type HintRecord struct {
	Code      string
	Hint      PriceHint
	Status    constants.LookupStatus
	Source    string
	FetchedAt time.Time
}

// Fresh reports whether the record is younger than ttl at now. A zero ttl
// never expires.
func (r HintRecord) Fresh(now time.Time, ttl time.Duration) bool {
	return ttl <= 0 || now.Sub(r.FetchedAt) < ttl
}
