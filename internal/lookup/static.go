package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
	"github.com/joseph-ayodele/receipts-collator/internal/entity"
)

// hintsSchema constrains a hints file: an object keyed by item code whose
// values carry a name, a price, or both.
const hintsSchema = `{
  "type": "object",
  "propertyNames": {"pattern": "^[0-9A-Za-z-]+$"},
  "additionalProperties": {
    "type": "object",
    "additionalProperties": false,
    "properties": {
      "name":  {"type": "string", "minLength": 1},
      "price": {"type": "string", "pattern": "^\\d+(\\.\\d{1,2})?$"}
    },
    "anyOf": [{"required": ["name"]}, {"required": ["price"]}]
  }
}`

var compiledHintsSchema = mustCompileSchema(hintsSchema)

func mustCompileSchema(src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("hints.json", strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("add hints schema: %v", err))
	}
	return compiler.MustCompile("hints.json")
}

type hintEntry struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// StaticSource answers from a hand-maintained hints file.
type StaticSource struct {
	hints map[string]entity.PriceHint
}

// LoadStaticSource reads and validates a hints file.
func LoadStaticSource(path string) (*StaticSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hints file: %w", err)
	}
	return ParseStaticHints(raw)
}

// ParseStaticHints validates raw against the hints schema and builds a source.
func ParseStaticHints(raw []byte) (*StaticSource, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, common.NewAppError("INVALID_HINTS", "hints file is not JSON", errors.Join(common.ErrInvalidInput, err))
	}
	if err := compiledHintsSchema.Validate(doc); err != nil {
		return nil, common.NewAppError("INVALID_HINTS", "hints file does not match schema", errors.Join(common.ErrInvalidInput, err))
	}

	var entries map[string]hintEntry
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode hints: %w", err)
	}
	s := &StaticSource{hints: make(map[string]entity.PriceHint, len(entries))}
	for code, e := range entries {
		h := entity.PriceHint{Name: strings.TrimSpace(e.Name)}
		if e.Price != "" {
			p, err := decimal.NewFromString(e.Price)
			if err != nil {
				return nil, fmt.Errorf("hint %s price: %w", code, err)
			}
			h.UnitPrice = decimal.NewNullDecimal(p)
		}
		s.hints[code] = h
	}
	return s, nil
}

func (s *StaticSource) Len() int { return len(s.hints) }

func (s *StaticSource) Fetch(_ context.Context, code string) (entity.PriceHint, constants.LookupStatus) {
	if h, ok := s.hints[code]; ok && !h.Empty() {
		return h, constants.LookupStatusFound
	}
	return entity.PriceHint{}, constants.LookupStatusNotFound
}
