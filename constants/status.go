package constants

// LookupStatus is the outcome recorded for an item-code lookup in the hint cache.
type LookupStatus string

// Stable values (stored in the cache table).
const (
	LookupStatusFound    LookupStatus = "FOUND"     // name and/or price recovered
	LookupStatusNotFound LookupStatus = "NOT_FOUND" // remote answered, nothing usable
	LookupStatusFailed   LookupStatus = "FAILED"    // transport or timeout; never cached
)

// Cacheable reports whether an outcome may be reused on later runs.
func (s LookupStatus) Cacheable() bool {
	return s == LookupStatusFound || s == LookupStatusNotFound
}
