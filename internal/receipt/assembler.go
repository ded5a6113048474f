package receipt

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// stitchWindow bounds how far the assembler looks for name fragments.
const stitchWindow = 2

// Document is one receipt's extracted text.
type Document struct {
	Path  string
	Store constants.Store
	Lines []string
}

// Assembler drives a store's line parser over a whole receipt.
type Assembler struct {
	store      constants.Store
	parser     LineParser
	classifier *Classifier
	headers    *tokenSet
	urls       *tokenSet
	stop       *tokenSet
	logger     *slog.Logger
}

type AssemblerOption func(*Assembler)

// WithHeaderTokens adds whole-word header tokens (local street names, the
// account holder's name) that mark boilerplate lines for this store.
func WithHeaderTokens(tokens ...string) AssemblerOption {
	return func(a *Assembler) {
		if len(tokens) > 0 {
			a.headers = newTokenSet(true, append(append([]string{}, a.headers.tokens...), tokens...)...)
		}
	}
}

func WithLogger(l *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAssembler(store constants.Store, opts ...AssemblerOption) (*Assembler, error) {
	classifier := NewClassifier(VocabularyFor(store)...)
	parser, err := NewLineParser(store, classifier)
	if err != nil {
		return nil, err
	}
	a := &Assembler{
		store:      store,
		parser:     parser,
		classifier: classifier,
		urls:       newTokenSet(false, urlMarkers...),
		logger:     slog.Default(),
	}
	switch store {
	case constants.Costco:
		a.headers = newTokenSet(true, costcoHeaderWords...)
		a.stop = newTokenSet(true, costcoFragmentStop...)
	case constants.SamsClub:
		a.headers = newTokenSet(true, samsClubHeaderWords...)
		a.stop = newTokenSet(true, samsContinuationStop...)
	default:
		return nil, fmt.Errorf("no assembler for store %q", store)
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

func (a *Assembler) Store() constants.Store { return a.store }

// Assemble extracts every item record from one receipt. Records share the
// receipt's store, date and number.
func (a *Assembler) Assemble(doc Document) []entity.ItemRecord {
	start := time.Now()
	lines := doc.Lines

	date := DateFromFilename(doc.Path)
	if date == nil {
		date = DateFromText(lines)
	}
	number := ReceiptNumber(a.store, lines)

	var out []entity.ItemRecord
	dropped := 0
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || a.isHeader(line) {
			continue
		}
		rec, ok := a.parser.ParseLine(LineContext{Lines: lines, Index: i})
		if !ok {
			continue
		}

		switch {
		case rec.ItemName == "":
			name, next := a.stitchName(lines, i)
			rec.ItemName = name
			i = next
		case a.store == constants.SamsClub && i+1 < len(lines):
			if next := strings.TrimSpace(lines[i+1]); a.isContinuation(next) {
				rec.ItemName = CollapseSpaces(rec.ItemName + " " + next)
				i++
			}
		}

		if !a.classifier.ValidItemName(rec.ItemName) {
			dropped++
			continue
		}
		rec.Store = a.store
		rec.ReceiptDate = date
		rec.ReceiptNumber = number
		rec.SourcePath = doc.Path
		out = append(out, rec)
	}

	a.logger.Debug("receipt.assemble.ok",
		"path", doc.Path,
		"store", string(a.store),
		"lines", len(lines),
		"items", len(out),
		"dropped", dropped,
		"receipt_number", number,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}

func (a *Assembler) isHeader(line string) bool {
	upper := strings.ToUpper(line)
	return a.headers.containsAny(upper) || a.urls.containsAny(upper)
}

// stitchName recovers a code-only item's name: every usable fragment in the
// preceding window, in document order, then the first usable fragment in the
// following window. It returns the name and the index of the last line
// consumed.
func (a *Assembler) stitchName(lines []string, i int) (string, int) {
	var parts []string
	for j := max(0, i-stitchWindow); j < i; j++ {
		if prev := strings.TrimSpace(lines[j]); a.isFragment(prev) {
			parts = append(parts, prev)
		}
	}
	consumed := i
	for j := i + 1; j < len(lines) && j <= i+stitchWindow; j++ {
		if next := strings.TrimSpace(lines[j]); a.isFragment(next) {
			parts = append(parts, next)
			consumed = j
			break
		}
	}
	return CollapseSpaces(strings.Join(parts, " ")), consumed
}

// isContinuation reports a Sam's Club name tail: a short unpriced line that still reads as an item.
func (a *Assembler) isContinuation(line string) bool {
	if !isSamsContinuation(line, a.stop) || a.isHeader(line) {
		return false
	}
	return a.classifier.Classify(line) == ItemCandidate
}

func (a *Assembler) isFragment(line string) bool {
	if !isCostcoFragment(line, a.stop) || a.isHeader(line) {
		return false
	}
	return a.classifier.Classify(line) == ItemCandidate
}
