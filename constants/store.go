package constants

import (
	"fmt"
	"strings"
)

// Store identifies which receipt format produced a record.
type Store string

const (
	Costco   Store = "costco"
	SamsClub Store = "sams_club"
)

var allStores = []Store{Costco, SamsClub}

// AllStores returns the supported stores in processing order.
func AllStores() []Store {
	out := make([]Store, len(allStores))
	copy(out, allStores)
	return out
}

// DisplayName is the human-readable retailer name used in reports.
func (s Store) DisplayName() string {
	switch s {
	case Costco:
		return "Costco"
	case SamsClub:
		return "Sam's Club"
	default:
		return string(s)
	}
}

// DefaultPrefix is the filename prefix that routes a PDF to this store.
func (s Store) DefaultPrefix() string {
	switch s {
	case Costco:
		return "Costco"
	case SamsClub:
		return "SC"
	default:
		return ""
	}
}

// HasPackSizes reports whether item names of this format carry pack counts
// ("24 ct", "12 pk") that multiply the purchased quantity.
func (s Store) HasPackSizes() bool {
	return s == SamsClub
}

// HasItemCodes reports whether the format prints a retailer item code per line.
func (s Store) HasItemCodes() bool {
	return s == Costco
}

// FileStem is the base name used for the per-store CSV and XLSX files.
func (s Store) FileStem() string {
	return string(s)
}

// ParseStore accepts the canonical value or a loose spelling ("Costco", "sams", "SC").
func ParseStore(v string) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(v))
	key = strings.NewReplacer("'", "", "-", "_", " ", "_").Replace(key)
	switch key {
	case "costco", "a":
		return Costco, nil
	case "sams_club", "samsclub", "sams", "sc", "b":
		return SamsClub, nil
	}
	return "", fmt.Errorf("unknown store %q", v)
}
