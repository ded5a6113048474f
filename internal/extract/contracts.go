package extract

import (
	"context"

	"github.com/joseph-ayodele/receipts-collator/internal/entity"
	"github.com/joseph-ayodele/receipts-collator/internal/pdftext"
	"github.com/joseph-ayodele/receipts-collator/internal/receipt"
)

// TextExtractor is Stage 1: file -> lines.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (pdftext.Result, error)
}

// RecordExtractor is Stage 2: lines -> item records.
type RecordExtractor interface {
	ExtractRecords(doc receipt.Document) ([]entity.ItemRecord, error)
}
