package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}

// StoreForFile picks the store whose prefix starts the base name of path.
// Matching is case-insensitive and the longest prefix wins.
func StoreForFile(path string, prefixes map[constants.Store]string) (constants.Store, bool) {
	base := strings.ToLower(filepath.Base(path))
	var (
		best    constants.Store
		bestLen int
	)
	for _, s := range constants.AllStores() {
		p := strings.ToLower(strings.TrimSpace(prefixes[s]))
		if p == "" || !strings.HasPrefix(base, p) {
			continue
		}
		if len(p) > bestLen {
			best, bestLen = s, len(p)
		}
	}
	return best, bestLen > 0
}
