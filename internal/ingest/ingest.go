package ingest

import (
	"context"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

// ScannedReceipt is one PDF selected for parsing.
type ScannedReceipt struct {
	Path   string
	Store  constants.Store
	SHA256 string
	Size   int64
}

// ScanResult is the per-file scan outcome.
type ScanResult struct {
	Path         string
	Store        constants.Store
	Deduplicated bool
	DuplicateOf  string
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Skipped      uint32 // PDFs with no retailer prefix
	Failed       uint32
}

// Scanner is the behavior the pipeline depends on.
type Scanner interface {
	// ScanDirectory returns the receipts under root in walk order.
	ScanDirectory(ctx context.Context, root string) ([]ScannedReceipt, []ScanResult, DirStats, error)
}
